package core

import (
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/registrar"
)

func init() {
	m := module("core/ping", "PING and PONG", nil)
	m.Commands = []*dispatch.Command{
		{Name: irc.PING, Caps: dispatch.CapUser | dispatch.CapUnregisteredUser | dispatch.CapLocalServer, NArgs: 1, Handler: dispatch.HandlerFunc(ping)},
		{Name: irc.PONG, Caps: dispatch.CapAll.Without(dispatch.CapEncap), Handler: dispatch.HandlerFunc(pong)},
	}
	registrar.Register(m)
}

// ping answers with the token, "PING token" becomes
// ":me PONG me :token".
func ping(si *dispatch.SourceInfo, msg *irc.Message) error {
	me := si.State().Me
	source := me.Name
	if si.IsServer() {
		source = me.SID
	}
	si.Source.Send(irc.Line(source, irc.PONG, me.Name, msg.Args[0]))
	return nil
}

// pong is accepted from anyone and ignored, the link already noticed the
// traffic.
func pong(si *dispatch.SourceInfo, msg *irc.Message) error {
	return nil
}
