package core

import (
	"testing"
)

func TestJoin_Create(t *testing.T) {
	s := newTestServer(t, nil)
	peer := s.peer(t, "hub.test.net", "1HB")
	fish := s.connect(t, "fish")
	peer.Drain()

	s.d.Invoke(fish, "JOIN #sea")
	expectLines(t, fish, ":fish!fish@127.0.0.1 JOIN #sea")

	c := s.state.Channel("#SEA")
	if c == nil {
		t.Fatal("channel was not created")
	}
	if got := s.env.ChanModes.FlagString(c.Modes); got != DefaultChannelModes {
		t.Errorf("want: %s, got: %s", DefaultChannelModes, got)
	}
	if !c.Members[fish.User].Has(modeBit(s.env.ChanModes, 'o')) {
		t.Error("creator should be opped")
	}

	expectLines(t, peer, ":0AA SJOIN "+itoa(c.TS)+" #sea +nt @0AAAAAAAA")
}

func TestJoin_Existing(t *testing.T) {
	s := newTestServer(t, nil)
	fish := s.connect(t, "fish")
	bird := s.connect(t, "bird")
	peer := s.peer(t, "hub.test.net", "1HB")

	s.d.Invoke(fish, "JOIN #sea")
	fish.Drain()
	peer.Drain()

	s.d.Invoke(bird, "JOIN #sea,nope")
	expectLines(t, bird,
		":bird!bird@127.0.0.1 JOIN #sea",
		":irc.test.net 403 bird nope :No such channel",
	)
	expectLines(t, fish, ":bird!bird@127.0.0.1 JOIN #sea")

	c := s.state.Channel("#sea")
	expectLines(t, peer, ":0AAAAAAAB JOIN "+itoa(c.TS)+" #sea +")
	if c.Members[bird.User].Status != 0 {
		t.Error("bird should not have status")
	}

	s.d.Invoke(bird, "JOIN #sea")
	expectLines(t, bird)
}

func TestJoin_Restrictions(t *testing.T) {
	s := newTestServer(t, nil)
	fish := s.connect(t, "fish")
	bird := s.connect(t, "bird")

	s.d.Invoke(fish, "JOIN #sea")
	fish.Drain()

	tests := []struct {
		Modes string
		Join  string
		Want  string
	}{
		{"+k secret", "JOIN #sea", ":irc.test.net 475 bird #sea :Cannot join channel (+k)"},
		{"+i", "JOIN #sea", ":irc.test.net 473 bird #sea :Cannot join channel (+i)"},
		{"+b bird!*@*", "JOIN #sea", ":irc.test.net 474 bird #sea :Cannot join channel (+b)"},
		{"+l 1", "JOIN #sea", ":irc.test.net 471 bird #sea :Cannot join channel (+l)"},
	}

	for _, test := range tests {
		s.d.Invoke(fish, "MODE #sea "+test.Modes)
		s.d.Invoke(bird, test.Join)
		expectLines(t, bird, test.Want)

		// Start over with a fresh channel.
		s.d.Invoke(fish, "PART #sea")
		s.d.Invoke(fish, "JOIN #sea")
		fish.Drain()
	}

	s.d.Invoke(fish, "MODE #sea +k secret")
	s.d.Invoke(bird, "JOIN #sea secret")
	expectLines(t, bird, ":bird!bird@127.0.0.1 JOIN #sea")
}

func TestJoin_Forward(t *testing.T) {
	s := newTestServer(t, nil)
	fish := s.connect(t, "fish")
	bird := s.connect(t, "bird")

	s.d.Invoke(fish, "JOIN #sea,#lagoon")
	s.d.Invoke(fish, "MODE #sea +if #lagoon")
	fish.Drain()

	s.d.Invoke(bird, "JOIN #sea")
	expectLines(t, bird,
		":irc.test.net 470 bird #sea #lagoon :Forwarding to another channel",
		":bird!bird@127.0.0.1 JOIN #lagoon",
	)
}

func TestPart(t *testing.T) {
	s := newTestServer(t, nil)
	fish := s.connect(t, "fish")
	bird := s.connect(t, "bird")
	peer := s.peer(t, "hub.test.net", "1HB")

	s.d.Invoke(fish, "JOIN #sea")
	s.d.Invoke(bird, "JOIN #sea")
	fish.Drain()
	bird.Drain()
	peer.Drain()

	s.d.Invoke(bird, "PART #sea,#nope :bye now")
	expectLines(t, bird,
		":bird!bird@127.0.0.1 PART #sea :bye now",
		":irc.test.net 403 bird #nope :No such channel",
	)
	expectLines(t, fish, ":bird!bird@127.0.0.1 PART #sea :bye now")
	expectLines(t, peer, ":0AAAAAAAB PART #sea :bye now")

	s.d.Invoke(bird, "PART #sea")
	expectLines(t, bird, ":irc.test.net 442 bird #sea :You're not on that channel")

	s.d.Invoke(fish, "PART #sea")
	if s.state.Channel("#sea") != nil {
		t.Error("empty channel should be destroyed")
	}
}

func TestRemoteJoinPart(t *testing.T) {
	s := newTestServer(t, nil)
	peer := s.peer(t, "hub.test.net", "1HB")
	fish := s.connect(t, "fish")
	crab := s.remoteUser(t, peer, "crab", "1HBAAAAAA")

	s.d.Invoke(fish, "JOIN #sea")
	fish.Drain()
	peer.Drain()

	c := s.state.Channel("#sea")
	s.d.Invoke(peer, ":1HBAAAAAA JOIN "+itoa(c.TS)+" #sea +")
	expectLines(t, fish, ":crab!crab@remote.host JOIN #sea")
	if _, ok := c.Members[crab]; !ok {
		t.Error("crab should be on #sea")
	}

	s.d.Invoke(peer, ":1HBAAAAAA PART #sea :later")
	expectLines(t, fish, ":crab!crab@remote.host PART #sea later")
	if _, ok := c.Members[crab]; ok {
		t.Error("crab should have left #sea")
	}
	expectLines(t, peer)
}

func TestSJOIN(t *testing.T) {
	s := newTestServer(t, nil)
	peer := s.peer(t, "hub.test.net", "1HB")
	other := s.peer(t, "leaf.test.net", "2LF")
	fish := s.connect(t, "fish")
	crab := s.remoteUser(t, peer, "crab", "1HBAAAAAA")
	s.remoteUser(t, peer, "clam", "1HBAAAAAB")

	s.d.Invoke(fish, "JOIN #sea")
	s.d.Invoke(fish, "MODE #sea +m")
	fish.Drain()
	other.Drain()

	c := s.state.Channel("#sea")
	older := itoa(c.TS - 100)

	s.d.Invoke(peer, ":1HB SJOIN "+older+" #sea +sk key :@1HBAAAAAA +1HBAAAAAB")
	expectLines(t, fish,
		":crab!crab@remote.host JOIN #sea",
		":clam!clam@remote.host JOIN #sea",
	)
	expectLines(t, other, ":1HB SJOIN "+older+" #sea +sk key :@1HBAAAAAA +1HBAAAAAB")

	if itoa(c.TS) != older {
		t.Errorf("want: %s, got: %d", older, c.TS)
	}
	table := s.env.ChanModes
	if got := table.FlagString(c.Modes); got != "+s" || c.Key != "key" {
		t.Errorf("want: +s key, got: %s %s", got, c.Key)
	}
	if c.Members[fish.User].Has(modeBit(table, 'o')) {
		t.Error("fish lost the timestamp race and should be deopped")
	}
	if !c.Members[crab].Has(modeBit(table, 'o')) {
		t.Error("crab should be opped")
	}

	// A younger SJOIN only adds members.
	s.remoteUser(t, peer, "eel", "1HBAAAAAC")
	s.d.Invoke(peer, ":1HB SJOIN "+itoa(c.TS+50)+" #sea +i :@1HBAAAAAC")
	if c.Modes&modeBit(table, 'i') != 0 {
		t.Error("younger modes should be ignored")
	}
	eel := s.state.UserByUID("1HBAAAAAC")
	if cu, ok := c.Members[eel]; !ok || cu.Status != 0 {
		t.Error("eel should be an ordinary member")
	}
}
