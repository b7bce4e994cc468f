package core

import (
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/registrar"
)

func init() {
	m := module("core/realhost", "ENCAP REALHOST", nil)
	m.Commands = []*dispatch.Command{
		{Name: irc.REALHOST, Caps: dispatch.CapEncapUser, NArgs: 1, Handler: dispatch.HandlerFunc(realhost)},
	}
	registrar.Register(m)
}

// realhost is ":uid ENCAP * REALHOST host", it records the host a remote
// user really connected from.
func realhost(si *dispatch.SourceInfo, msg *irc.Message) error {
	if si.User == nil {
		return nil
	}
	si.User.RealHost = msg.Args[0]
	return nil
}
