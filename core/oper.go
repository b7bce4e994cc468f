package core

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/aarondl/uqircd/config"
	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/modes"
	"github.com/aarondl/uqircd/registrar"
)

func init() {
	registrar.Register(module("core/oper", "OPER command", initOper))
}

type operCmd struct {
	h *registrar.Handle
}

func initOper(h *registrar.Handle) error {
	o := &operCmd{h: h}
	return registerCommands(h,
		&dispatch.Command{Name: irc.OPER, Caps: dispatch.CapLocalUser, NArgs: 2, Rate: 5, Handler: dispatch.HandlerFunc(o.oper)},
	)
}

// oper is "OPER name password". The password is checked against the
// bcrypt hash of the oper block whose hosts match the user.
func (o *operCmd) oper(si *dispatch.SourceInfo, msg *irc.Message) error {
	u := si.User
	if u.Oper {
		si.Num(irc.RPL_YOUREOPER)
		return nil
	}

	var block *config.Oper
	if o.h.Config != nil {
		block = o.h.Config.Oper(msg.Args[0])
	}
	if block == nil || !operHostMatches(block, u) {
		si.Num(irc.ERR_NOOPERHOST)
		o.h.Logger.Warn("Failed OPER, no matching block", "nick", u.Nick, "name", msg.Args[0])
		return nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(block.Password), []byte(msg.Args[1])); err != nil {
		si.Num(irc.ERR_PASSWDMISMATCH)
		o.h.Logger.Warn("Failed OPER, bad password", "nick", u.Nick, "name", block.Name)
		return nil
	}

	state := si.State()
	buf := modes.NewBuffer(maxModeLen, 0, func(changes string, _ []string) {
		u.Link.Send(irc.Line(u.Nick, irc.MODE, u.Nick, changes))
		state.SendToServers(nil, irc.Line(u.UID, irc.MODE, u.UID, changes))
	})
	p := newPass(o.h.UserModes, u, si, buf)
	p.Force = true
	p.Run("+o")
	buf.Done()

	if !u.Oper {
		// No usermodes module to carry the flag.
		setOper(u, true)
	}
	si.Num(irc.RPL_YOUREOPER)
	o.h.Logger.Info("OPER", "nick", u.Nick, "name", block.Name)
	return nil
}

// operHostMatches checks ident@host and ident@ip against the block's
// hosts, a block without hosts matches anyone.
func operHostMatches(block *config.Oper, u *data.User) bool {
	if len(block.Hosts) == 0 {
		return true
	}
	byHost := u.Ident + "@" + u.RealHost
	byIP := u.Ident + "@" + u.IP
	for _, h := range block.Hosts {
		if irc.Match(h, byHost) || irc.Match(h, byIP) {
			return true
		}
	}
	return false
}
