package dispatch

import (
	"testing"

	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/irc"
)

const testServerName = "irc.test.net"

func newTestDispatcher() (*Dispatcher, *data.State) {
	state := data.NewState(testServerName, "0AA", "test server")
	return NewDispatcher(NewRegistry(), state, nil), state
}

func newLink(state *data.State) *data.Link {
	l := data.NewLink("127.0.0.1")
	state.AddLink(l)
	return l
}

// localUser registers a user directly connected to state.
func localUser(state *data.State, nick string, oper bool) *data.User {
	l := newLink(state)
	u := state.NewLocalUser(l)
	if err := state.SetNick(u, nick); err != nil {
		panic(err)
	}
	u.Ident, u.Host = "user", "host.test"
	u.Oper = oper
	l.Registered = true
	return u
}

// localServer registers a directly linked server.
func localServer(state *data.State, name, sid string) *data.Server {
	l := newLink(state)
	sv := state.NewPendingServer(l)
	sv.Name, sv.SID = name, sid
	l.Registered = true
	if err := state.AddServer(sv); err != nil {
		panic(err)
	}
	return sv
}

// remoteServer registers a server behind via.
func remoteServer(state *data.State, via *data.Server, name, sid string) *data.Server {
	sv := &data.Server{SID: sid, Name: name, Hops: via.Hops + 1, Link: via.Link, Parent: via}
	if err := state.AddServer(sv); err != nil {
		panic(err)
	}
	return sv
}

// remoteUser registers a user on a remote server.
func remoteUser(state *data.State, on *data.Server, uid, nick string, oper bool) *data.User {
	u := &data.User{UID: uid, Nick: nick, Ident: "remote", Host: "remote.test", Server: on, Oper: oper}
	if err := state.AddRemoteUser(u); err != nil {
		panic(err)
	}
	return u
}

// counter is a handler that remembers what it was called with.
type counter struct {
	calls int
	si    *SourceInfo
	msg   *irc.Message
	err   error
	then  func(si *SourceInfo, msg *irc.Message)
}

func (c *counter) Handle(si *SourceInfo, msg *irc.Message) error {
	c.calls++
	c.si = si
	c.msg = msg
	if c.then != nil {
		c.then(si, msg)
	}
	return c.err
}

func mustRegister(t *testing.T, r *Registry, c *Command) *Command {
	t.Helper()
	if err := r.Register(c); err != nil {
		t.Fatalf("register %v: %v", c, err)
	}
	return c
}

func drain(l *data.Link) []string {
	return l.Drain()
}

func expectLines(t *testing.T, l *data.Link, want ...string) {
	t.Helper()

	got := drain(l)
	if len(got) != len(want) {
		t.Fatalf("want: %q, got: %q", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d want: %q, got: %q", i, want[i], got[i])
		}
	}
}
