package core

import (
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/registrar"
)

func init() {
	m := module("core/numeric", "Relays numerics between servers", nil)
	m.Commands = []*dispatch.Command{
		{Name: irc.NumericCommand, Caps: dispatch.CapServer, NArgs: 1, Propagation: dispatch.PropOneToOne, Handler: dispatch.HandlerFunc(numeric)},
	}
	registrar.Register(m)
}

// numeric is ":sid 401 uid ..." and is meant for the user named by the
// first argument. Local users get it rewritten to names, anyone else is
// further along the network.
func numeric(si *dispatch.SourceInfo, msg *irc.Message) error {
	target := si.State().UserByNickOrUID(msg.Args[0])
	if target == nil {
		return nil
	}

	if !target.IsLocal() {
		msg.Propagate = target.UID
		return nil
	}

	args := append([]string{target.Nick}, msg.Args[1:]...)
	target.Link.Send(irc.Line(si.Name, msg.Command, args...))
	return nil
}
