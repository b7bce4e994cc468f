package core

import (
	"strings"

	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/modes"
	"github.com/aarondl/uqircd/registrar"
)

func init() {
	registrar.Register(module("core/channel", "JOIN, PART and SJOIN", initChannel))
}

type channels struct {
	h *registrar.Handle
}

func initChannel(h *registrar.Handle) error {
	c := &channels{h: h}
	return registerCommands(h,
		&dispatch.Command{Name: irc.JOIN, Caps: dispatch.CapLocalUser, NArgs: 1, Rate: 1, Handler: dispatch.HandlerFunc(c.join)},
		&dispatch.Command{Name: irc.JOIN, Caps: dispatch.CapRemoteUser, NArgs: 2, Propagation: dispatch.PropBroadcast, Handler: dispatch.HandlerFunc(c.remoteJoin)},
		&dispatch.Command{Name: irc.PART, Caps: dispatch.CapLocalUser, NArgs: 1, Rate: 1, Handler: dispatch.HandlerFunc(c.part)},
		&dispatch.Command{Name: irc.PART, Caps: dispatch.CapRemoteUser, NArgs: 1, Propagation: dispatch.PropBroadcast, Handler: dispatch.HandlerFunc(c.remotePart)},
		&dispatch.Command{Name: irc.SJOIN, Caps: dispatch.CapServer, NArgs: 4, Propagation: dispatch.PropBroadcast, Handler: dispatch.HandlerFunc(c.sjoin)},
	)
}

// join is "JOIN #a,#b [key,key]".
func (c *channels) join(si *dispatch.SourceInfo, msg *irc.Message) error {
	keys := msg.SplitArgs(1)
	for i, name := range msg.SplitArgs(0) {
		key := ""
		if i < len(keys) {
			key = keys[i]
		}
		c.joinOne(si, name, key)
	}
	return nil
}

func (c *channels) joinOne(si *dispatch.SourceInfo, name, key string) {
	state := si.State()
	u := si.User

	if !data.IsChannelName(name) {
		si.Num(irc.ERR_NOSUCHCHANNEL, name)
		return
	}

	ch := state.Channel(name)
	if ch != nil {
		if _, ok := ch.Members[u]; ok {
			return
		}
		if num, ok := c.mayJoin(ch, u, key); !ok {
			if len(ch.Forward) > 0 && num != irc.ERR_BANNEDFROMCHAN && num != irc.ERR_BADCHANNELKEY {
				if fwd := state.Channel(ch.Forward); fwd != nil {
					if _, ok := c.mayJoin(fwd, u, ""); ok {
						si.Num(irc.ERR_LINKCHANNEL, ch.Name, fwd.Name)
						c.enter(si, fwd, false)
						return
					}
				}
			}
			si.Num(num, ch.Name)
			return
		}
		c.enter(si, ch, false)
		return
	}

	ch = state.NewChannel(name, now())
	p := newPass(c.h.ChanModes, ch, si, nil)
	p.Force = true
	p.Run(DefaultChannelModes)
	c.enter(si, ch, true)
}

// mayJoin checks the restrictions of a channel, returning the numeric
// explaining a refusal.
func (c *channels) mayJoin(ch *data.Channel, u *data.User, key string) (int, bool) {
	t := c.h.ChanModes
	switch {
	case IsBanned(ch, u):
		return irc.ERR_BANNEDFROMCHAN, false
	case len(ch.Key) > 0 && key != ch.Key:
		return irc.ERR_BADCHANNELKEY, false
	case ch.Modes&modeBit(t, 'i') != 0 && !ch.List('I').MatchesWith(u.Mask(), extBans(u)):
		return irc.ERR_INVITEONLYCHAN, false
	case ch.Limit > 0 && len(ch.Members) >= ch.Limit:
		return irc.ERR_CHANNELISFULL, false
	}
	return 0, true
}

// enter joins a local user and tells the channel, the user and the
// network. The creator of a channel is opped.
func (c *channels) enter(si *dispatch.SourceInfo, ch *data.Channel, created bool) {
	state := si.State()
	u := si.User
	cu := state.Join(ch, u)

	state.SendToChannel(ch, nil, irc.Line(string(u.Mask()), irc.JOIN, ch.Name))
	if len(ch.Topic) > 0 {
		si.Num(irc.RPL_TOPIC, ch.Name, ch.Topic)
	}

	if created {
		if op := c.h.ChanModes.Lookup('o'); op != nil {
			cu.Status |= op.Bit
			ch.Sync()
		}
		state.SendToServers(nil, sjoinLine(state, c.h.ChanModes, ch))
		return
	}
	state.SendToServers(nil, irc.Line(u.UID, irc.JOIN, itoa(ch.TS), ch.Name, "+"))
}

// remoteJoin is ":uid JOIN ts #channel +".
func (c *channels) remoteJoin(si *dispatch.SourceInfo, msg *irc.Message) error {
	u := si.User
	if u == nil {
		c.h.Logger.Warn("JOIN from unknown user", "id", si.ID)
		return nil
	}

	state := si.State()
	name := msg.Args[1]
	ch := state.Channel(name)
	if ch == nil {
		ch = state.NewChannel(name, atoi(msg.Args[0]))
	}
	if _, ok := ch.Members[u]; !ok {
		state.Join(ch, u)
		state.SendToChannel(ch, nil, irc.Line(string(u.Mask()), irc.JOIN, ch.Name))
	}

	msg.Propagate = irc.PropagateAll
	return nil
}

func (c *channels) part(si *dispatch.SourceInfo, msg *irc.Message) error {
	state := si.State()
	u := si.User
	reason := msg.Arg(1)

	for _, name := range msg.SplitArgs(0) {
		ch := state.Channel(name)
		if ch == nil {
			si.Num(irc.ERR_NOSUCHCHANNEL, name)
			continue
		}
		if _, ok := ch.Members[u]; !ok {
			si.Num(irc.ERR_NOTONCHANNEL, ch.Name)
			continue
		}

		state.SendToChannel(ch, nil, partLine(string(u.Mask()), ch.Name, reason))
		state.SendToServers(nil, partLine(u.UID, ch.Name, reason))
		state.Part(ch, u)
	}
	return nil
}

// remotePart is ":uid PART #channel [:reason]".
func (c *channels) remotePart(si *dispatch.SourceInfo, msg *irc.Message) error {
	u := si.User
	if u == nil {
		c.h.Logger.Warn("PART from unknown user", "id", si.ID)
		return nil
	}

	state := si.State()
	for _, name := range msg.SplitArgs(0) {
		ch := state.Channel(name)
		if ch == nil {
			continue
		}
		if _, ok := ch.Members[u]; !ok {
			continue
		}
		state.SendToChannel(ch, u, partLine(string(u.Mask()), ch.Name, msg.Arg(1)))
		state.Part(ch, u)
	}

	msg.Propagate = irc.PropagateAll
	return nil
}

func partLine(source, channel, reason string) string {
	if len(reason) == 0 {
		return irc.Line(source, irc.PART, channel)
	}
	return irc.Line(source, irc.PART, channel, reason)
}

// sjoin is ":sid SJOIN ts #channel +modes [params...] :[prefixes]uid ...".
// The older timestamp wins: a peer with an older channel resets our modes,
// a peer with a newer one loses its modes and prefixes.
func (c *channels) sjoin(si *dispatch.SourceInfo, msg *irc.Message) error {
	state := si.State()
	t := c.h.ChanModes
	a := msg.Args
	ts := atoi(a[0])
	name := a[1]

	ch := state.Channel(name)
	if ch == nil {
		ch = state.NewChannel(name, ts)
	}

	keepTheirs := ts <= ch.TS
	if ts < ch.TS {
		ch.TS = ts
		c.resetModes(ch)
	}

	if keepTheirs {
		p := newPass(t, ch, si, nil)
		p.Force = true
		p.Run(a[2], a[3:len(a)-1]...)
	}

	for _, member := range strings.Fields(a[len(a)-1]) {
		uid := strings.TrimLeft(member, "@+")
		prefixes := member[:len(member)-len(uid)]

		u := state.UserByUID(uid)
		if u == nil {
			c.h.Logger.Warn("SJOIN for unknown user", "uid", uid, "channel", name)
			continue
		}

		_, already := ch.Members[u]
		cu := state.Join(ch, u)
		if keepTheirs {
			cu.Status |= prefixStatus(t, prefixes)
		}
		if !already {
			state.SendToChannel(ch, nil, irc.Line(string(u.Mask()), irc.JOIN, ch.Name))
		}
	}
	ch.Sync()

	msg.Propagate = irc.PropagateAll
	return nil
}

// resetModes clears everything a younger channel set, its creator lost the
// timestamp race.
func (c *channels) resetModes(ch *data.Channel) {
	ch.Modes = 0
	ch.Key, ch.Limit, ch.Forward, ch.JoinThrottle = "", 0, "", ""
	for _, cu := range ch.Members {
		cu.Status &^= statusBits(c.h.ChanModes)
	}
	ch.Sync()
}

// prefixStatus maps membership prefixes such as "@+" to status bits.
func prefixStatus(t *modes.Table, prefixes string) uint64 {
	var bits uint64
	for _, info := range t.Statuses() {
		if info.Prefix != 0 && strings.IndexByte(prefixes, info.Prefix) >= 0 {
			bits |= info.Bit
		}
	}
	return bits
}

func statusBits(t *modes.Table) uint64 {
	var bits uint64
	for _, info := range t.Statuses() {
		bits |= info.Bit
	}
	return bits
}
