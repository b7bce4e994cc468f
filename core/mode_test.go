package core

import (
	"testing"

	"github.com/aarondl/uqircd/config"
)

func TestMode_ChannelQuery(t *testing.T) {
	s := newTestServer(t, nil)
	fish := s.connect(t, "fish")
	bird := s.connect(t, "bird")

	s.d.Invoke(fish, "JOIN #sea")
	s.d.Invoke(fish, "MODE #sea")
	expectLines(t, fish,
		":fish!fish@127.0.0.1 JOIN #sea",
		":irc.test.net 324 fish #sea +nt",
	)

	s.d.Invoke(fish, "MODE #sea +kl secret 10")
	fish.Drain()

	s.d.Invoke(fish, "MODE #sea")
	expectLines(t, fish, ":irc.test.net 324 fish #sea +ntkl secret 10")
	s.d.Invoke(bird, "MODE #sea")
	expectLines(t, bird, ":irc.test.net 324 bird #sea +ntkl * 10")

	s.d.Invoke(bird, "MODE #nope")
	expectLines(t, bird, ":irc.test.net 403 bird #nope :No such channel")
}

func TestMode_ChannelChange(t *testing.T) {
	s := newTestServer(t, nil)
	fish := s.connect(t, "fish")
	bird := s.connect(t, "bird")
	peer := s.peer(t, "hub.test.net", "1HB")

	s.d.Invoke(fish, "JOIN #sea")
	s.d.Invoke(bird, "JOIN #sea")
	fish.Drain()
	bird.Drain()
	peer.Drain()
	ts := itoa(s.state.Channel("#sea").TS)

	s.d.Invoke(fish, "MODE #sea +m-t+o bird")
	expectLines(t, fish, ":fish!fish@127.0.0.1 MODE #sea +m-t+o bird")
	expectLines(t, bird, ":fish!fish@127.0.0.1 MODE #sea +m-t+o bird")
	expectLines(t, peer, ":0AAAAAAAA TMODE "+ts+" #sea +m-t+o 0AAAAAAAB")

	// Nothing changes, nothing is sent.
	s.d.Invoke(fish, "MODE #sea +m")
	expectLines(t, fish)
	expectLines(t, peer)
}

func TestMode_ChannelErrors(t *testing.T) {
	s := newTestServer(t, nil)
	peer := s.peer(t, "hub.test.net", "1HB")
	fish := s.connect(t, "fish")
	bird := s.connect(t, "bird")
	s.remoteUser(t, peer, "crab", "1HBAAAAAA")

	s.d.Invoke(fish, "JOIN #sea")
	s.d.Invoke(bird, "JOIN #sea")
	fish.Drain()
	bird.Drain()

	s.d.Invoke(bird, "MODE #sea +m")
	expectLines(t, bird, ":irc.test.net 482 bird #sea :You're not channel operator")

	s.d.Invoke(fish, "MODE #sea +X")
	expectLines(t, fish, ":irc.test.net 472 fish X :is unknown mode char to me")

	s.d.Invoke(fish, "MODE #sea +oo nobody crab")
	expectLines(t, fish,
		":irc.test.net 401 fish nobody :No such nick/channel",
		":irc.test.net 441 fish crab #sea :They aren't on that channel",
	)
}

func TestMode_ChannelParams(t *testing.T) {
	s := newTestServer(t, nil)
	fish := s.connect(t, "fish")
	s.d.Invoke(fish, "JOIN #sea,#lagoon")
	fish.Drain()

	c := s.state.Channel("#sea")
	tests := []struct {
		Modes string
		Want  []string
	}{
		{"+k secret", []string{":fish!fish@127.0.0.1 MODE #sea +k secret"}},
		{"-k whatever", []string{":fish!fish@127.0.0.1 MODE #sea -k *"}},
		{"-k", nil},
		{"+l 0", nil},
		{"+l 5", []string{":fish!fish@127.0.0.1 MODE #sea +l 5"}},
		// -l takes no argument, so x belongs to +k.
		{"-l+k x", []string{":fish!fish@127.0.0.1 MODE #sea -l+k x"}},
		{"+j bad", nil},
		{"+j 3:10", []string{":fish!fish@127.0.0.1 MODE #sea +j 3:10"}},
		{"+f #sea", nil},
		{"+f #lagoon", []string{":fish!fish@127.0.0.1 MODE #sea +f #lagoon"}},
		{"-fj", []string{":fish!fish@127.0.0.1 MODE #sea -fj"}},
	}

	for _, test := range tests {
		s.d.Invoke(fish, "MODE #sea "+test.Modes)
		expectLines(t, fish, test.Want...)
	}

	if c.Key != "x" || c.Limit != 0 || c.JoinThrottle != "" || c.Forward != "" {
		t.Errorf("unexpected state: %q %d %q %q", c.Key, c.Limit, c.JoinThrottle, c.Forward)
	}
}

func TestMode_ForwardTarget(t *testing.T) {
	s := newTestServer(t, nil)
	fish := s.connect(t, "fish")
	bird := s.connect(t, "bird")
	peer := s.peer(t, "hub.test.net", "1HB")

	s.d.Invoke(bird, "JOIN #reef")
	s.d.Invoke(fish, "JOIN #sea,#reef")
	fish.Drain()
	bird.Drain()

	c := s.state.Channel("#sea")

	s.d.Invoke(fish, "MODE #sea +f #nowhere")
	expectLines(t, fish, ":irc.test.net 403 fish #nowhere :No such channel")

	s.d.Invoke(fish, "MODE #sea +f #reef")
	expectLines(t, fish, ":irc.test.net 482 fish #reef :You're not channel operator")

	if c.Forward != "" {
		t.Errorf("forward was set: %q", c.Forward)
	}
	peer.Drain()

	// Servers are not held to either check.
	s.d.Invoke(peer, ":1HB TMODE "+itoa(c.TS)+" #sea +f #nowhere")
	if c.Forward != "#nowhere" {
		t.Errorf("want: #nowhere, got: %q", c.Forward)
	}
}

func TestMode_ChannelStacking(t *testing.T) {
	s := newTestServer(t, nil)
	fish := s.connect(t, "fish")
	s.d.Invoke(fish, "JOIN #sea")
	fish.Drain()

	s.d.Invoke(fish, "MODE #sea +bbbbb 1!*@* 2!*@* 3!*@* 4!*@* 5!*@*")
	expectLines(t, fish,
		":fish!fish@127.0.0.1 MODE #sea +bbbb 1!*@* 2!*@* 3!*@* 4!*@*",
		":fish!fish@127.0.0.1 MODE #sea +b 5!*@*",
	)
}

func TestMode_ChannelLists(t *testing.T) {
	cfg := config.New()
	cfg.Limits.MaxList = 1

	s := newTestServer(t, cfg)
	fish := s.connect(t, "fish")
	s.d.Invoke(fish, "JOIN #sea")
	fish.Drain()

	s.d.Invoke(fish, "MODE #sea +bb a!*@* b!*@*")
	expectLines(t, fish,
		":fish!fish@127.0.0.1 MODE #sea +b a!*@*",
		":irc.test.net 478 fish #sea b :Channel list is full",
	)

	s.d.Invoke(fish, "MODE #sea bq")
	expectPrefixes(t, fish,
		":irc.test.net 367 fish #sea a!*@* fish!fish@127.0.0.1 ",
		":irc.test.net 368 fish #sea :End of Channel Ban List",
		":irc.test.net 729 fish #sea q :End of Channel Quiet List",
	)

	s.d.Invoke(fish, "MODE #sea -b A!*@*")
	expectLines(t, fish, ":fish!fish@127.0.0.1 MODE #sea -b A!*@*")
	if s.state.Channel("#sea").List('b').Len() != 0 {
		t.Error("ban should be gone")
	}
}

func TestMode_User(t *testing.T) {
	s := newTestServer(t, nil)
	peer := s.peer(t, "hub.test.net", "1HB")
	fish := s.connect(t, "fish")
	s.connect(t, "bird")
	peer.Drain()

	s.d.Invoke(fish, "MODE fish")
	expectLines(t, fish, ":irc.test.net 221 fish +")

	s.d.Invoke(fish, "MODE fish +iwo")
	expectLines(t, fish, ":fish MODE fish +iw")
	expectLines(t, peer, ":0AAAAAAAA MODE 0AAAAAAAA +iw")
	if fish.User.Oper {
		t.Error("+o must not be settable")
	}

	s.d.Invoke(fish, "MODE fish -i+X")
	expectLines(t, fish,
		":fish MODE fish -i",
		":irc.test.net 501 fish :Unknown MODE flag",
	)

	s.d.Invoke(fish, "MODE bird +i")
	expectLines(t, fish, ":irc.test.net 502 fish :Can't change mode for other users")
	s.d.Invoke(fish, "MODE nobody")
	expectLines(t, fish, ":irc.test.net 401 fish nobody :No such nick/channel")
}

func TestMode_RemoteUser(t *testing.T) {
	s := newTestServer(t, nil)
	peer := s.peer(t, "hub.test.net", "1HB")
	other := s.peer(t, "leaf.test.net", "2LF")
	crab := s.remoteUser(t, peer, "crab", "1HBAAAAAA")
	other.Drain()

	s.d.Invoke(peer, ":1HBAAAAAA MODE 1HBAAAAAA :+oi")
	if !crab.Oper {
		t.Error("servers may grant +o")
	}
	expectLines(t, other, ":1HBAAAAAA MODE 1HBAAAAAA :+oi")

	s.d.Invoke(peer, ":1HBAAAAAA MODE 1HBAAAAAA :-o")
	if crab.Oper {
		t.Error("crab should no longer be an oper")
	}
}

func TestMode_TMODE(t *testing.T) {
	s := newTestServer(t, nil)
	peer := s.peer(t, "hub.test.net", "1HB")
	fish := s.connect(t, "fish")
	s.d.Invoke(fish, "JOIN #sea")
	fish.Drain()

	c := s.state.Channel("#sea")
	s.d.Invoke(peer, ":1HB TMODE "+itoa(c.TS)+" #sea +m-n")
	expectLines(t, fish, ":hub.test.net MODE #sea +m-n")

	s.d.Invoke(peer, ":1HB TMODE "+itoa(c.TS+1)+" #sea +s")
	expectLines(t, fish)
	if got := s.env.ChanModes.FlagString(c.Modes); got != "+mt" {
		t.Errorf("want: +mt, got: %s", got)
	}
}
