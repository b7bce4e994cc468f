package core

import (
	"sort"
	"strings"

	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/registrar"
)

// whoisWidth bounds the channel list of one RPL_WHOISCHANNELS so the line
// fits with the longest server name and two nicknames around it.
const whoisWidth = 510 - 63 - 2*maxNickLen - 9

func init() {
	registrar.Register(module("core/whois", "WHOIS command", initWhois))
}

type whoisCmd struct {
	h *registrar.Handle
}

func initWhois(h *registrar.Handle) error {
	w := &whoisCmd{h: h}
	return registerCommands(h,
		&dispatch.Command{Name: irc.WHOIS, Caps: dispatch.CapLocalUser, NArgs: 1, Rate: 1, Handler: dispatch.HandlerFunc(w.whois)},
		&dispatch.Command{Name: irc.WHOIS, Caps: dispatch.CapRemoteUser, NArgs: 1, Handler: dispatch.HandlerFunc(w.whois)},
	)
}

// whois is "WHOIS [server] nick". With a server, or the nick given twice,
// the query goes to the server the target is on so it can answer for
// itself. Only the first of a comma separated list of nicks is looked up.
func (w *whoisCmd) whois(si *dispatch.SourceInfo, msg *irc.Message) error {
	if si.User == nil {
		w.h.Logger.Warn("WHOIS from unknown user", "id", si.ID)
		return nil
	}

	state := si.State()
	nick := msg.Args[len(msg.Args)-1]
	if i := strings.IndexByte(nick, ','); i >= 0 {
		nick = nick[:i]
	}

	target := state.UserByNickOrUID(nick)
	if target == nil {
		si.Num(irc.ERR_NOSUCHNICK, nick)
		return nil
	}

	if len(msg.Args) > 1 {
		ref := msg.Args[0]
		sv := serverByRef(state, ref)
		if sv == nil {
			if state.UserByNickOrUID(ref) != target {
				si.Num(irc.ERR_NOSUCHSERVER, ref)
				return nil
			}
			sv = target.Server
		}

		if sv != state.Me {
			if sv.Link != nil && sv.Link != si.Source {
				sv.Link.Send(irc.Line(si.User.UID, irc.WHOIS, sv.SID, nick))
			}
			return nil
		}
	}

	w.reply(si, target)
	return nil
}

func (w *whoisCmd) reply(si *dispatch.SourceInfo, u *data.User) {
	si.Num(irc.RPL_WHOISUSER, u.Nick, u.Ident, u.Host, u.Gecos)

	for _, line := range w.channels(si.User, u) {
		si.Num(irc.RPL_WHOISCHANNELS, u.Nick, line)
	}

	si.Num(irc.RPL_WHOISSERVER, u.Nick, u.Server.Name, u.Server.Desc)
	if u.Oper {
		si.Num(irc.RPL_WHOISOPERATOR, u.Nick, "an IRC operator")
	}
	if len(u.Account) > 0 {
		si.Num(irc.RPL_WHOISLOGGEDIN, u.Nick, u.Account)
	}
	si.Num(irc.RPL_ENDOFWHOIS, u.Nick)
}

// channels lists the prefixed channels of u that asker may see, wrapped
// to whoisWidth. Private and secret channels are only shown to members.
func (w *whoisCmd) channels(asker, u *data.User) []string {
	t := w.h.ChanModes
	hidden := modeBit(t, 'p') | modeBit(t, 's')

	var names []string
	for c, cu := range u.Channels {
		if c.Modes&hidden != 0 {
			if _, ok := c.Members[asker]; !ok {
				continue
			}
		}
		names = append(names, t.Prefixes(cu.Status)+c.Name)
	}
	sort.Strings(names)

	var lines []string
	var b strings.Builder
	for _, name := range names {
		if b.Len() > 0 && b.Len()+1+len(name) > whoisWidth {
			lines = append(lines, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name)
	}
	if b.Len() > 0 {
		lines = append(lines, b.String())
	}
	return lines
}

// serverByRef finds a server by sid or by name.
func serverByRef(state *data.State, ref string) *data.Server {
	if len(ref) == data.SIDLength && isDigitByte(ref[0]) {
		return state.ServerBySID(ref)
	}
	return state.ServerByName(ref)
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}
