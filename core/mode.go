package core

import (
	"strings"

	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/modes"
	"github.com/aarondl/uqircd/registrar"
)

const (
	// maxModeLen bounds the mode string and parameters of one MODE line.
	maxModeLen      = 400
	defaultMaxModes = 4
)

// listNumerics are the entry and end-of-list replies of each list mode.
var listNumerics = map[byte][2]int{
	'b': {irc.RPL_BANLIST, irc.RPL_ENDOFBANLIST},
	'e': {irc.RPL_EXCEPTLIST, irc.RPL_ENDOFEXCEPTLIST},
	'I': {irc.RPL_INVITELIST, irc.RPL_ENDOFINVITELIST},
	'q': {irc.RPL_QUIETLIST, irc.RPL_ENDOFQUIETLIST},
}

func init() {
	registrar.Register(module("core/mode", "MODE and TMODE", initMode))
}

type modeCmds struct {
	h *registrar.Handle
}

func initMode(h *registrar.Handle) error {
	m := &modeCmds{h: h}
	return registerCommands(h,
		&dispatch.Command{Name: irc.MODE, Caps: dispatch.CapLocalUser, NArgs: 1, Rate: 1, Handler: dispatch.HandlerFunc(m.mode)},
		&dispatch.Command{Name: irc.MODE, Caps: dispatch.CapRemoteUser, NArgs: 2, Propagation: dispatch.PropBroadcast, Handler: dispatch.HandlerFunc(m.remoteUserMode)},
		&dispatch.Command{Name: irc.TMODE, Caps: dispatch.CapServer | dispatch.CapRemoteUser, NArgs: 3, Propagation: dispatch.PropBroadcast, Handler: dispatch.HandlerFunc(m.tmode)},
	)
}

func (m *modeCmds) maxModes() int {
	if cfg := m.h.Config; cfg != nil && cfg.Limits.MaxModes > 0 {
		return cfg.Limits.MaxModes
	}
	return defaultMaxModes
}

func (m *modeCmds) mode(si *dispatch.SourceInfo, msg *irc.Message) error {
	if data.IsChannelName(msg.Args[0]) {
		m.channelMode(si, msg)
	} else {
		m.userMode(si, msg)
	}
	return nil
}

func (m *modeCmds) channelMode(si *dispatch.SourceInfo, msg *irc.Message) {
	state := si.State()
	t := m.h.ChanModes
	u := si.User

	c := state.Channel(msg.Args[0])
	if c == nil {
		si.Num(irc.ERR_NOSUCHCHANNEL, msg.Args[0])
		return
	}
	cu := c.Members[u]

	if len(msg.Args) == 1 {
		flags, params := channelParams(t, c, cu != nil)
		si.Num(irc.RPL_CHANNELMODEIS, c.Name, strings.Join(append([]string{flags}, params...), " "))
		return
	}

	source := string(u.Mask())
	clients := modes.NewBuffer(maxModeLen, m.maxModes(), func(changes string, params []string) {
		state.SendToChannel(c, nil, irc.Line(source, irc.MODE, append([]string{c.Name, changes}, params...)...))
	})
	servers := modes.NewBuffer(maxModeLen, m.maxModes(), func(changes string, params []string) {
		state.SendToServers(nil, irc.Line(u.UID, irc.TMODE, append([]string{itoa(c.TS), c.Name, changes}, params...)...))
	})
	servers.UseIDs = true

	p := newPass(t, c, si, modes.Multi{clients, servers})
	p.Access = func() bool {
		return cu != nil && cu.Has(modeBit(t, 'o'))
	}
	p.Run(msg.Args[1], msg.Args[2:]...)
	clients.Done()
	servers.Done()

	m.report(si, c, p)
}

// report turns the errors of a channel pass into numerics and answers list
// requests.
func (m *modeCmds) report(si *dispatch.SourceInfo, c *data.Channel, p *modes.Pass) {
	for _, ch := range p.Unknown {
		si.Num(irc.ERR_UNKNOWNMODE, ch)
	}
	if p.Errors.Has(modes.ErrNoAccess) {
		si.Num(irc.ERR_CHANOPRIVSNEEDED, c.Name)
	}
	if p.Errors.Has(modes.ErrNotOper) {
		si.Num(irc.ERR_NOPRIVILEGES)
	}
	for _, ch := range p.Full {
		si.Num(irc.ERR_BANLISTFULL, c.Name, ch)
	}
	for _, name := range p.Missing {
		if si.State().UserByNickOrUID(name) == nil {
			si.Num(irc.ERR_NOSUCHNICK, name)
		} else {
			si.Num(irc.ERR_USERNOTINCHANNEL, name, c.Name)
		}
	}
	for _, info := range p.Requests {
		m.sendList(si, c, info.Char)
	}
}

func (m *modeCmds) sendList(si *dispatch.SourceInfo, c *data.Channel, ch byte) {
	nums, ok := listNumerics[ch]
	if !ok {
		return
	}
	for _, e := range c.List(ch).Entries {
		si.Num(nums[0], c.Name, e.Mask, e.Setter, e.Time.Unix())
	}
	si.Num(nums[1], c.Name)
}

func (m *modeCmds) userMode(si *dispatch.SourceInfo, msg *irc.Message) {
	state := si.State()
	u := si.User

	target := state.UserByNick(msg.Args[0])
	if target == nil {
		si.Num(irc.ERR_NOSUCHNICK, msg.Args[0])
		return
	}
	if target != u {
		si.Num(irc.ERR_USERSDONTMATCH)
		return
	}

	if len(msg.Args) == 1 {
		si.Num(irc.RPL_UMODEIS, m.h.UserModes.FlagString(u.Modes))
		return
	}

	buf := modes.NewBuffer(maxModeLen, 0, func(changes string, _ []string) {
		u.Link.Send(irc.Line(u.Nick, irc.MODE, u.Nick, changes))
		state.SendToServers(nil, irc.Line(u.UID, irc.MODE, u.UID, changes))
	})
	p := newPass(m.h.UserModes, u, si, buf)
	p.Access = func() bool { return true }
	p.Run(msg.Args[1], msg.Args[2:]...)
	buf.Done()

	if p.Errors.Has(modes.ErrUnknownChar) {
		si.Num(irc.ERR_UMODEUNKNOWNFLAG)
	}
}

// remoteUserMode is ":uid MODE uid :+modes", servers only ever relay a
// user's changes to its own modes.
func (m *modeCmds) remoteUserMode(si *dispatch.SourceInfo, msg *irc.Message) error {
	u := si.User
	target := si.State().UserByNickOrUID(msg.Args[0])
	if u == nil || target != u {
		m.h.Logger.Warn("MODE for another user", "source", si.Name, "target", msg.Args[0])
		return nil
	}

	p := newPass(m.h.UserModes, u, si, nil)
	p.Force = true
	p.Run(msg.Args[1], msg.Args[2:]...)

	msg.Propagate = irc.PropagateAll
	return nil
}

// tmode is ":source TMODE ts #channel modes [params...]". Changes for a
// younger incarnation of the channel are dropped.
func (m *modeCmds) tmode(si *dispatch.SourceInfo, msg *irc.Message) error {
	state := si.State()
	c := state.Channel(msg.Args[1])
	if c == nil {
		m.h.Logger.Warn("TMODE for nonexistent channel", "source", si.Name, "channel", msg.Args[1])
		return nil
	}
	if atoi(msg.Args[0]) > c.TS {
		return nil
	}

	source := si.SetterName()
	clients := modes.NewBuffer(maxModeLen, m.maxModes(), func(changes string, params []string) {
		state.SendToChannel(c, nil, irc.Line(source, irc.MODE, append([]string{c.Name, changes}, params...)...))
	})

	p := newPass(m.h.ChanModes, c, si, clients)
	p.Force = true
	p.Run(msg.Args[2], msg.Args[3:]...)
	clients.Done()

	msg.Propagate = irc.PropagateAll
	return nil
}
