package core

import (
	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/registrar"
)

func init() {
	registrar.Register(module("core/message", "PRIVMSG and NOTICE", initMessage))
}

type messages struct {
	h *registrar.Handle
}

func initMessage(h *registrar.Handle) error {
	m := &messages{h: h}
	return registerCommands(h,
		&dispatch.Command{Name: irc.PRIVMSG, Caps: dispatch.CapUser, NArgs: 2, Rate: 1, Handler: dispatch.HandlerFunc(m.message)},
		&dispatch.Command{Name: irc.NOTICE, Caps: dispatch.CapUser, NArgs: 2, Rate: 1, Handler: dispatch.HandlerFunc(m.message)},
	)
}

// message delivers to a channel or a user. Errors are only reported for
// PRIVMSG from local users, NOTICE never generates replies.
func (m *messages) message(si *dispatch.SourceInfo, msg *irc.Message) error {
	u := si.User
	if u == nil {
		m.h.Logger.Warn("Message from unknown user", "id", si.ID, "command", msg.Command)
		return nil
	}

	state := si.State()
	reply := msg.Command == irc.PRIVMSG && u.IsLocal()
	text := msg.Args[1]

	for _, target := range msg.SplitArgs(0) {
		if data.IsChannelName(target) {
			c := state.Channel(target)
			if c == nil {
				if reply {
					si.Num(irc.ERR_NOSUCHNICK, target)
				}
				continue
			}
			if !m.maySpeak(c, u) {
				if reply {
					si.Num(irc.ERR_CANNOTSENDTOCHAN, c.Name)
				}
				continue
			}

			state.SendToChannel(c, u, irc.Line(string(u.Mask()), msg.Command, c.Name, text))
			state.SendToChannelServers(c, si.Source, irc.Line(u.UID, msg.Command, c.Name, text))
			continue
		}

		to := state.UserByNickOrUID(target)
		if to == nil {
			if reply {
				si.Num(irc.ERR_NOSUCHNICK, target)
			}
			continue
		}
		if to.IsLocal() {
			to.Link.Send(irc.Line(string(u.Mask()), msg.Command, to.Nick, text))
		} else if to.Link != si.Source {
			to.Link.Send(irc.Line(u.UID, msg.Command, to.UID, text))
		}
	}
	return nil
}

// maySpeak applies +n and the cached muted state of members.
func (m *messages) maySpeak(c *data.Channel, u *data.User) bool {
	cu, ok := c.Members[u]
	if !ok {
		return c.Modes&modeBit(m.h.ChanModes, 'n') == 0 && !IsBanned(c, u)
	}
	return !IsMuted(m.h.ChanModes, cu)
}
