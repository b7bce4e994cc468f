package core

import (
	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/registrar"
)

func init() {
	registrar.Register(module("core/quit", "QUIT command", initQuit))
}

type quitter struct {
	h *registrar.Handle
}

func initQuit(h *registrar.Handle) error {
	q := &quitter{h: h}
	return registerCommands(h,
		&dispatch.Command{Name: irc.QUIT, Caps: dispatch.CapUser, Handler: dispatch.HandlerFunc(q.quit)},
		&dispatch.Command{Name: irc.QUIT, Caps: dispatch.CapUnregistered, Handler: dispatch.HandlerFunc(q.unregistered)},
	)
}

// quit tells everyone who can see the user, the servers and the user
// itself, then forgets the user.
func (q *quitter) quit(si *dispatch.SourceInfo, msg *irc.Message) error {
	u := si.User
	if u == nil {
		q.h.Logger.Error("QUIT from nonexistent user", "id", si.ID)
		return nil
	}

	// Links the server already closed keep the reason they were given.
	reason := msg.Arg(0)
	if si.Local != nil && !isClosed(si.Local) {
		if len(msg.Args) > 0 {
			reason = "Quit: " + reason
		} else {
			reason = "Client Quit"
		}
	}

	line := irc.Line(string(u.Mask()), irc.QUIT, reason)
	sendToCommon(u, line)
	if si.Local != nil {
		si.Local.Send(line)
	}

	state := si.State()
	state.SendToServers(si.Source, irc.Line(u.UID, irc.QUIT, reason))

	if u.IsLocal() {
		u.Link.Close(reason)
		if q.h.Limiter != nil {
			q.h.Limiter.Forget(u.UID)
		}
	}
	state.RemoveUser(u)
	return nil
}

func (q *quitter) unregistered(si *dispatch.SourceInfo, msg *irc.Message) error {
	si.Source.Close("Client Quit")
	return nil
}

func isClosed(l *data.Link) bool {
	closed, _ := l.Closed()
	return closed
}
