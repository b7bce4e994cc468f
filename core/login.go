package core

import (
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/registrar"
)

func init() {
	m := module("core/login", "ENCAP LOGIN", nil)
	m.Commands = []*dispatch.Command{
		{Name: irc.LOGIN, Caps: dispatch.CapEncapUser, NArgs: 1, Handler: dispatch.HandlerFunc(login)},
	}
	registrar.Register(m)
}

// login is ":uid ENCAP * LOGIN account", services telling the network a
// user identified. An account of "*" logs the user out.
func login(si *dispatch.SourceInfo, msg *irc.Message) error {
	u := si.User
	if u == nil {
		return nil
	}

	account := msg.Args[0]
	if account == "*" {
		account = ""
	}
	if u.Account != account {
		u.Account = account
		u.InvalidateMemberships()
	}
	return nil
}
