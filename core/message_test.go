package core

import (
	"testing"
)

func TestMessage_Channel(t *testing.T) {
	s := newTestServer(t, nil)
	peer := s.peer(t, "hub.test.net", "1HB")
	fish := s.connect(t, "fish")
	bird := s.connect(t, "bird")
	cod := s.connect(t, "cod")
	s.remoteUser(t, peer, "crab", "1HBAAAAAA")

	s.d.Invoke(fish, "JOIN #sea")
	s.d.Invoke(bird, "JOIN #sea")
	c := s.state.Channel("#sea")
	s.d.Invoke(peer, ":1HBAAAAAA JOIN "+itoa(c.TS)+" #sea +")
	fish.Drain()
	bird.Drain()
	peer.Drain()

	s.d.Invoke(fish, "PRIVMSG #sea :hello there")
	expectLines(t, fish)
	expectLines(t, bird, ":fish!fish@127.0.0.1 PRIVMSG #sea :hello there")
	expectLines(t, peer, ":0AAAAAAAA PRIVMSG #sea :hello there")

	s.d.Invoke(peer, ":1HBAAAAAA NOTICE #sea :from afar")
	expectLines(t, fish, ":crab!crab@remote.host NOTICE #sea :from afar")
	expectLines(t, bird, ":crab!crab@remote.host NOTICE #sea :from afar")
	expectLines(t, peer)

	s.d.Invoke(cod, "PRIVMSG #sea :let me in")
	s.d.Invoke(cod, "NOTICE #sea :let me in")
	s.d.Invoke(cod, "PRIVMSG #nope :anyone")
	expectLines(t, cod,
		":irc.test.net 404 cod #sea :Cannot send to channel",
		":irc.test.net 401 cod #nope :No such nick/channel",
	)

	s.d.Invoke(fish, "MODE #sea -n")
	fish.Drain()
	bird.Drain()
	s.d.Invoke(cod, "PRIVMSG #sea hi")
	expectLines(t, bird, ":cod!cod@127.0.0.1 PRIVMSG #sea hi")
}

func TestMessage_Muted(t *testing.T) {
	s := newTestServer(t, nil)
	fish := s.connect(t, "fish")
	bird := s.connect(t, "bird")

	s.d.Invoke(fish, "JOIN #sea")
	s.d.Invoke(bird, "JOIN #sea")

	tests := []struct {
		Modes string
		Muted bool
	}{
		{"", false},
		{"+m", true},
		{"+v bird", false},
		{"-m+q bird!*@*", false},
		{"-v bird", true},
		{"+e bird!*@*", false},
		{"-eq bird!*@* bird!*@*", false},
		{"+b bird!*@*", true},
	}

	for _, test := range tests {
		if len(test.Modes) > 0 {
			s.d.Invoke(fish, "MODE #sea "+test.Modes)
		}
		fish.Drain()
		bird.Drain()

		s.d.Invoke(bird, "PRIVMSG #sea :blub")
		if test.Muted {
			expectLines(t, bird, ":irc.test.net 404 bird #sea :Cannot send to channel")
			expectLines(t, fish)
		} else {
			expectLines(t, bird)
			expectLines(t, fish, ":bird!bird@127.0.0.1 PRIVMSG #sea blub")
		}
	}

	// Ops are never muted.
	s.d.Invoke(fish, "MODE #sea +m")
	bird.Drain()
	s.d.Invoke(fish, "PRIVMSG #sea :still here")
	expectLines(t, bird, ":fish!fish@127.0.0.1 PRIVMSG #sea :still here")
}

func TestMessage_MutedAfterNickChange(t *testing.T) {
	s := newTestServer(t, nil)
	fish := s.connect(t, "fish")
	bird := s.connect(t, "bird")

	s.d.Invoke(fish, "JOIN #sea")
	s.d.Invoke(bird, "JOIN #sea")
	s.d.Invoke(fish, "MODE #sea +q crow!*@*")

	s.d.Invoke(bird, "PRIVMSG #sea :caw")
	s.d.Invoke(bird, "NICK crow")
	bird.Drain()
	s.d.Invoke(bird, "PRIVMSG #sea :caw")
	expectLines(t, bird, ":irc.test.net 404 crow #sea :Cannot send to channel")
}

func TestMessage_User(t *testing.T) {
	s := newTestServer(t, nil)
	peer := s.peer(t, "hub.test.net", "1HB")
	fish := s.connect(t, "fish")
	bird := s.connect(t, "bird")
	s.remoteUser(t, peer, "crab", "1HBAAAAAA")
	peer.Drain()

	s.d.Invoke(fish, "PRIVMSG bird,crab,nobody :hi")
	expectLines(t, bird, ":fish!fish@127.0.0.1 PRIVMSG bird hi")
	expectLines(t, peer, ":0AAAAAAAA PRIVMSG 1HBAAAAAA hi")
	expectLines(t, fish, ":irc.test.net 401 fish nobody :No such nick/channel")

	s.d.Invoke(fish, "NOTICE nobody :hi")
	expectLines(t, fish)

	s.d.Invoke(peer, ":1HBAAAAAA PRIVMSG 0AAAAAAAA :yo")
	expectLines(t, fish, ":crab!crab@remote.host PRIVMSG fish yo")
	expectLines(t, peer)
}
