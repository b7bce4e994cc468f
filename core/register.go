package core

import (
	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/registrar"
)

func init() {
	registrar.Register(module("core/register", "Connection registration and NICK", initRegister))
}

type registration struct {
	h *registrar.Handle
}

func initRegister(h *registrar.Handle) error {
	r := &registration{h: h}
	asUser := dispatch.HandlerFunc(r.firstUser)
	asServer := dispatch.HandlerFunc(r.firstServer)

	return registerCommands(h,
		// First contact decides what the link is and runs the line again.
		&dispatch.Command{Name: irc.NICK, Caps: dispatch.CapFirst, Handler: asUser},
		&dispatch.Command{Name: irc.USER, Caps: dispatch.CapFirst, Handler: asUser},
		&dispatch.Command{Name: irc.SERVER, Caps: dispatch.CapFirst, Handler: asServer},
		&dispatch.Command{Name: irc.CAPAB, Caps: dispatch.CapFirst, Handler: asServer},
		&dispatch.Command{Name: irc.PASS, Caps: dispatch.CapFirst, NArgs: 1, Handler: dispatch.HandlerFunc(r.firstPass)},

		&dispatch.Command{Name: irc.PASS, Caps: dispatch.CapUnregisteredUser, NArgs: 1, Handler: dispatch.HandlerFunc(r.userPass)},
		&dispatch.Command{Name: irc.NICK, Caps: dispatch.CapUnregisteredUser, Handler: dispatch.HandlerFunc(r.unregisteredNick)},
		&dispatch.Command{Name: irc.USER, Caps: dispatch.CapUnregisteredUser, NArgs: 4, Handler: dispatch.HandlerFunc(r.unregisteredUser)},

		&dispatch.Command{Name: irc.NICK, Caps: dispatch.CapLocalUser, Rate: 2, Handler: dispatch.HandlerFunc(r.localNick)},
		&dispatch.Command{Name: irc.NICK, Caps: dispatch.CapRemoteUser, NArgs: 2, Propagation: dispatch.PropBroadcast, Handler: dispatch.HandlerFunc(r.remoteNick)},
	)
}

func (r *registration) firstUser(si *dispatch.SourceInfo, msg *irc.Message) error {
	si.RepeatAsUser(msg)
	return nil
}

func (r *registration) firstServer(si *dispatch.SourceInfo, msg *irc.Message) error {
	si.RepeatAsServer(msg)
	return nil
}

// firstPass is a server's PASS when it carries the TS6 version, otherwise
// a client password that is kept until the link says what it is.
func (r *registration) firstPass(si *dispatch.SourceInfo, msg *irc.Message) error {
	if len(msg.Args) >= 4 && msg.Args[1] == "TS" {
		si.RepeatAsServer(msg)
		return nil
	}
	si.Source.Pass = msg.Args[0]
	return nil
}

func (r *registration) userPass(si *dispatch.SourceInfo, msg *irc.Message) error {
	si.Source.Pass = msg.Args[0]
	return nil
}

// checkNick sends the numeric explaining why a NICK argument is unusable.
func checkNick(si *dispatch.SourceInfo, msg *irc.Message) (string, bool) {
	if len(msg.Args) == 0 || len(msg.Args[0]) == 0 {
		si.Num(irc.ERR_NONICKNAMEGIVEN)
		return "", false
	}
	nick := msg.Args[0]
	if !validNick(nick) {
		si.Num(irc.ERR_ERRONEUSNICKNAME, nick)
		return "", false
	}
	return nick, true
}

func (r *registration) unregisteredNick(si *dispatch.SourceInfo, msg *irc.Message) error {
	nick, ok := checkNick(si, msg)
	if !ok {
		return nil
	}
	if err := si.State().SetNick(si.User, nick); err != nil {
		si.Num(irc.ERR_NICKNAMEINUSE, nick)
		return nil
	}

	r.tryRegister(si)
	return nil
}

func (r *registration) unregisteredUser(si *dispatch.SourceInfo, msg *irc.Message) error {
	ident := msg.Args[0]
	if len(ident) > maxIdentLen {
		ident = ident[:maxIdentLen]
	}
	si.User.Ident = ident
	si.User.Gecos = msg.Args[3]

	r.tryRegister(si)
	return nil
}

// tryRegister completes registration once both NICK and USER were seen and
// introduces the user to the network.
func (r *registration) tryRegister(si *dispatch.SourceInfo) {
	u := si.User
	if len(u.Nick) == 0 || len(u.Ident) == 0 {
		return
	}

	state := si.State()
	l := si.Source
	l.Registered = true
	u.TS = now()

	me := state.Me.Name
	l.Num(me, irc.RPL_WELCOME, string(u.Mask()))
	l.Num(me, irc.RPL_YOURHOST, me, Version)

	state.SendToServers(nil, uidLine(state, r.h.UserModes, u))
	r.h.Logger.Info("Client registered", "nick", u.Nick, "uid", u.UID, "ip", u.IP)
}

func (r *registration) localNick(si *dispatch.SourceInfo, msg *irc.Message) error {
	nick, ok := checkNick(si, msg)
	if !ok {
		return nil
	}
	u := si.User
	if nick == u.Nick {
		return nil
	}

	old := string(u.Mask())
	if err := si.State().SetNick(u, nick); err != nil {
		si.Num(irc.ERR_NICKNAMEINUSE, nick)
		return nil
	}
	u.TS = now()

	line := irc.Line(old, irc.NICK, nick)
	u.Link.Send(line)
	r.renamed(u, line)
	si.State().SendToServers(nil, irc.Line(u.UID, irc.NICK, nick, itoa(u.TS)))
	return nil
}

// remoteNick is ":uid NICK newnick ts".
func (r *registration) remoteNick(si *dispatch.SourceInfo, msg *irc.Message) error {
	u := si.User
	if u == nil {
		r.h.Logger.Warn("NICK from unknown user", "id", si.ID)
		return nil
	}

	old := string(u.Mask())
	nick := msg.Args[0]
	if err := si.State().SetNick(u, nick); err != nil {
		r.h.Logger.Warn("Nick collision", "uid", u.UID, "nick", nick)
		return nil
	}
	u.TS = atoi(msg.Args[1])

	r.renamed(u, irc.Line(old, irc.NICK, nick))
	msg.Propagate = irc.PropagateAll
	return nil
}

// renamed tells the channels and invalidates cached membership state, the
// new mask may match different list entries.
func (r *registration) renamed(u *data.User, line string) {
	sendToCommon(u, line)
	for _, cu := range u.Channels {
		cu.Invalidate()
	}
}
