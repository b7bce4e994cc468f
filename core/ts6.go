package core

import (
	"sort"
	"strconv"
	"strings"

	"github.com/aarondl/uqircd/config"
	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/modes"
	"github.com/aarondl/uqircd/registrar"
)

const (
	tsVersion = 6
	// A peer whose clock is further off than maxTSDelta seconds is
	// dropped, warnTSDelta only gets logged.
	warnTSDelta = 10
	maxTSDelta  = 60
)

func init() {
	registrar.Register(module("core/ts6init",
		"Initial TS6 commands, PASS CAPAB SERVER and SVINFO, and network introductions",
		initTS6))
}

type ts6 struct {
	h *registrar.Handle
}

func initTS6(h *registrar.Handle) error {
	t := &ts6{h: h}
	return registerCommands(h,
		&dispatch.Command{Name: irc.PASS, Caps: dispatch.CapUnregisteredServer, NArgs: 4, Handler: dispatch.HandlerFunc(t.pass)},
		&dispatch.Command{Name: irc.CAPAB, Caps: dispatch.CapUnregisteredServer, NArgs: 1, Handler: dispatch.HandlerFunc(t.capab)},
		&dispatch.Command{Name: irc.SERVER, Caps: dispatch.CapUnregisteredServer, NArgs: 3, Handler: dispatch.HandlerFunc(t.server)},
		&dispatch.Command{Name: irc.SVINFO, Caps: dispatch.CapLocalServer, NArgs: 4, Handler: dispatch.HandlerFunc(t.svinfo)},
		&dispatch.Command{Name: irc.SID, Caps: dispatch.CapServer, NArgs: 4, Propagation: dispatch.PropBroadcast, Handler: dispatch.HandlerFunc(t.sid)},
		&dispatch.Command{Name: irc.UID, Caps: dispatch.CapServer, NArgs: 9, Propagation: dispatch.PropBroadcast, Handler: dispatch.HandlerFunc(t.uid)},
	)
}

// pass is "PASS password TS 6 :sid".
func (t *ts6) pass(si *dispatch.SourceInfo, msg *irc.Message) error {
	if msg.Args[1] != "TS" || msg.Args[2] != strconv.Itoa(tsVersion) {
		si.Source.Close("Invalid TS version")
		return nil
	}

	si.Source.Pass = msg.Args[0]
	si.Server.SID = msg.Args[3]
	return nil
}

func (t *ts6) capab(si *dispatch.SourceInfo, msg *irc.Message) error {
	si.Server.AddCapabs(msg.Args[0])
	return nil
}

// verifyLink finds the link block for sv and checks the password and the
// address it connected from.
func verifyLink(cfg *config.Config, sv *data.Server, l *data.Link) *config.Link {
	if cfg == nil {
		return nil
	}
	block := cfg.Link(sv.Name)
	if block == nil {
		return nil
	}
	if len(l.Pass) == 0 || l.Pass != block.RecvPassword {
		return nil
	}
	if len(block.Host) > 0 && block.Host != l.IP {
		return nil
	}
	return block
}

// server is "SERVER name hops :description", the last line of a peer's
// credentials. On success the peer is registered, introduced to the rest
// of the network and sent our burst.
func (t *ts6) server(si *dispatch.SourceInfo, msg *irc.Message) error {
	sv := si.Server
	l := si.Source
	sv.Name = msg.Args[0]
	sv.Desc = msg.Args[len(msg.Args)-1]

	if !sv.HasCapabs(irc.RequiredCapabs...) {
		l.Close("Don't have all needed CAPABs!")
		return nil
	}

	block := verifyLink(t.h.Config, sv, l)
	if block == nil {
		l.Close("No link blocks for your host")
		return nil
	}
	if len(sv.SID) != data.SIDLength {
		l.Close("No SID given")
		return nil
	}

	state := si.State()
	if err := state.AddServer(sv); err != nil {
		l.Close("Server exists")
		return nil
	}
	l.Registered = true

	me := state.Me
	state.SendToServers(l, irc.Line(me.SID, irc.SID, sv.Name, strconv.Itoa(sv.Hops+1), sv.SID, sv.Desc))

	t.h.Logger.Info("Burst", "server", sv.Name, "sid", sv.SID, "link", block.Name)
	t.credentials(l, block)
	t.burst(l, sv)
	return nil
}

// credentials answers a peer that connected to us with our own handshake.
func (t *ts6) credentials(l *data.Link, block *config.Link) {
	me := t.h.State.Me
	l.Send(irc.Line("", irc.PASS, block.SendPassword, "TS", strconv.Itoa(tsVersion), me.SID))
	l.Send(irc.Line("", irc.CAPAB, strings.Join(irc.RequiredCapabs, " ")))
	l.Send(irc.Line("", irc.SERVER, me.Name, "1", me.Desc))
	l.Send(irc.Line("", irc.SVINFO, strconv.Itoa(tsVersion), strconv.Itoa(tsVersion), "0", itoa(now())))
}

// burst sends every server, user and channel we know of to the new peer.
func (t *ts6) burst(l *data.Link, peer *data.Server) {
	state := t.h.State
	me := state.Me

	var servers []*data.Server
	state.EachServer(func(sv *data.Server) {
		if sv != me && sv != peer {
			servers = append(servers, sv)
		}
	})
	// Parents before children.
	sort.Slice(servers, func(i, j int) bool {
		return servers[i].Hops < servers[j].Hops
	})
	for _, sv := range servers {
		parent := me
		if sv.Parent != nil {
			parent = sv.Parent
		}
		l.Send(irc.Line(parent.SID, irc.SID, sv.Name, strconv.Itoa(sv.Hops+1), sv.SID, sv.Desc))
	}

	state.EachUser(func(u *data.User) {
		if u.Server != peer && u.IsRegistered() && len(u.Nick) > 0 {
			l.Send(uidLine(state, t.h.UserModes, u))
		}
	})

	state.EachChannel(func(c *data.Channel) {
		l.Send(sjoinLine(state, t.h.ChanModes, c))
		if len(c.Topic) > 0 {
			l.Send(irc.Line(me.SID, irc.TB, c.Name, itoa(c.TopicTime), c.TopicSetter, c.Topic))
		}
	})
}

// svinfo is "SVINFO max-version min-version 0 :current-time".
func (t *ts6) svinfo(si *dispatch.SourceInfo, msg *irc.Message) error {
	if v, err := strconv.Atoi(msg.Args[0]); err != nil || v < tsVersion {
		si.Source.Close("Max TS version less than 6!")
		return nil
	}

	delta := atoi(msg.Args[3]) - now()
	if delta < 0 {
		delta = -delta
	}

	if delta > warnTSDelta {
		t.h.Logger.Warn("TS delta", "server", si.Name, "delta", delta)
	}
	if delta > maxTSDelta {
		t.h.Logger.Error("Excessive TS delta, killing", "server", si.Name, "delta", delta)
		si.Source.Close("Excessive TS delta")
	}
	return nil
}

// sid is ":parent SID name hops sid :description".
func (t *ts6) sid(si *dispatch.SourceInfo, msg *irc.Message) error {
	if si.Server == nil {
		t.h.Logger.Warn("SID from unknown server", "id", si.ID)
		return nil
	}

	hops, _ := strconv.Atoi(msg.Args[1])
	sv := &data.Server{
		Name:   msg.Args[0],
		Hops:   hops,
		SID:    msg.Args[2],
		Desc:   msg.Args[3],
		Link:   si.Source,
		Parent: si.Server,
	}
	if err := si.State().AddServer(sv); err != nil {
		t.h.Logger.Error("Server introduced twice", "name", sv.Name, "sid", sv.SID)
		return nil
	}

	msg.Propagate = irc.PropagateAll
	return nil
}

// uid is ":sid UID nick hops ts +modes ident host ip uid :gecos".
func (t *ts6) uid(si *dispatch.SourceInfo, msg *irc.Message) error {
	if si.Server == nil {
		t.h.Logger.Warn("UID from unknown server", "id", si.ID)
		return nil
	}

	a := msg.Args
	u := &data.User{
		Nick:     a[0],
		TS:       atoi(a[2]),
		Ident:    a[4],
		Host:     a[5],
		RealHost: a[5],
		IP:       a[6],
		UID:      a[7],
		Gecos:    a[8],
		Server:   si.Server,
	}
	if err := si.State().AddRemoteUser(u); err != nil {
		t.h.Logger.Error("Nick collision on introduction", "nick", u.Nick, "uid", u.UID)
		return nil
	}

	p := newPass(t.h.UserModes, u, si, nil)
	p.Force = true
	p.Run(a[3])

	msg.Propagate = irc.PropagateAll
	return nil
}

// uidLine introduces a user to a peer.
func uidLine(state *data.State, umodes *modes.Table, u *data.User) string {
	hops := "1"
	if u.Server != nil && u.Server != state.Me {
		hops = strconv.Itoa(u.Server.Hops + 1)
	}
	sid := state.Me.SID
	if u.Server != nil {
		sid = u.Server.SID
	}
	ip := u.IP
	if len(ip) == 0 {
		ip = "0"
	}
	return irc.Line(sid, irc.UID, u.Nick, hops, itoa(u.TS), umodes.FlagString(u.Modes),
		u.Ident, u.Host, ip, u.UID, u.Gecos)
}

// sjoinLine describes a channel, its modes and its members with their
// prefixes.
func sjoinLine(state *data.State, cmodes *modes.Table, c *data.Channel) string {
	flags, params := channelParams(cmodes, c, true)

	members := make([]string, 0, len(c.Members))
	for u, cu := range c.Members {
		members = append(members, cmodes.Prefixes(cu.Status)+u.UID)
	}
	sort.Strings(members)

	args := []string{itoa(c.TS), c.Name, flags}
	args = append(args, params...)
	args = append(args, strings.Join(members, " "))
	return irc.Line(state.Me.SID, irc.SJOIN, args...)
}
