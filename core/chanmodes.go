package core

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/modes"
	"github.com/aarondl/uqircd/registrar"
)

const (
	// DefaultChannelModes are applied to every channel a local user
	// creates.
	DefaultChannelModes = "+nt"

	defaultMaxList = 50
	maxKeyLen      = 23
)

// chanFlags are the built-in channel flag modes:
// c no colours, g free invite, i invite only, m moderated,
// n no external messages, p private, s secret, t ops set the topic,
// z ops see messages rejected by +m.
const chanFlags = "cgimnpstz"

// chanLists are the list modes, bans, quiets, exceptions and invite
// exceptions.
const chanLists = "bqeI"

func init() {
	registrar.Register(module("core/chanmodes", "Built-in channel modes", initChanModes))
}

func initChanModes(h *registrar.Handle) error {
	maxList := defaultMaxList
	if h.Config != nil && h.Config.Limits.MaxList > 0 {
		maxList = h.Config.Limits.MaxList
	}
	h.ChanModes.MaxList = maxList

	// Registration order decides prefix rank, o outranks v.
	infos := []modes.Info{
		{Char: 'o', Kind: modes.StatusMode, Prefix: '@'},
		{Char: 'v', Kind: modes.StatusMode, Prefix: '+'},
		{Char: 'k', Kind: modes.ExternalMode, Callback: modeKey},
		{Char: 'l', Kind: modes.ExternalMode, Callback: modeLimit},
		{Char: 'f', Kind: modes.ExternalMode, Callback: paramMode('f', forwardField, cleanForward)},
		{Char: 'j', Kind: modes.ExternalMode, Callback: paramMode('j', throttleField, cleanThrottle)},
	}
	for i := 0; i < len(chanFlags); i++ {
		infos = append(infos, modes.Info{Char: chanFlags[i], Kind: modes.FlagMode})
	}
	for i := 0; i < len(chanLists); i++ {
		infos = append(infos, modes.Info{Char: chanLists[i], Kind: modes.ListMode})
	}

	for _, info := range infos {
		if _, err := h.RegisterMode(h.ChanModes, info); err != nil {
			return errors.Wrapf(err, "chanmodes: registering %c", info.Char)
		}
	}
	return nil
}

func channelOf(p *modes.Pass) *data.Channel {
	c, _ := p.Target.(*data.Channel)
	return c
}

// modeKey sets and clears the channel key. Unsetting accepts any argument
// and always shows the key as "*".
func modeKey(p *modes.Pass, on bool, arg string, hasArg bool) bool {
	c := channelOf(p)
	if c == nil {
		return false
	}
	if on && !hasArg {
		p.Errors |= modes.ErrMissingParam
		return false
	}
	if !p.HasAccess() {
		return hasArg
	}

	if !on {
		if len(c.Key) > 0 {
			c.Key = ""
			p.Put(false, 'k', "*")
		}
		return hasArg
	}

	key := cleanKey(arg)
	if len(key) == 0 || key == c.Key {
		return true
	}
	c.Key = key
	p.Put(true, 'k', key)
	return true
}

func cleanKey(key string) string {
	key = strings.TrimLeft(key, ":")
	key = strings.Map(func(r rune) rune {
		if r == ',' || r <= ' ' {
			return -1
		}
		return r
	}, key)
	if len(key) > maxKeyLen {
		key = key[:maxKeyLen]
	}
	return key
}

// modeLimit sets the member limit. Limits below 1 are ignored, unsetting
// takes no argument.
func modeLimit(p *modes.Pass, on bool, arg string, hasArg bool) bool {
	c := channelOf(p)
	if c == nil {
		return false
	}

	if !on {
		if p.HasAccess() && c.Limit > 0 {
			c.Limit = 0
			p.Put(false, 'l', "")
		}
		return false
	}

	if !hasArg {
		p.Errors |= modes.ErrMissingParam
		return false
	}
	if !p.HasAccess() {
		return true
	}

	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n == c.Limit {
		return true
	}
	c.Limit = n
	p.Put(true, 'l', strconv.Itoa(n))
	return true
}

func forwardField(c *data.Channel) *string  { return &c.Forward }
func throttleField(c *data.Channel) *string { return &c.JoinThrottle }

// paramMode builds the callback of a mode with a string parameter that
// is given when setting and omitted when unsetting. clean validates and
// normalizes the parameter, invalid ones are consumed and ignored.
func paramMode(ch byte, field func(*data.Channel) *string, clean func(p *modes.Pass, c *data.Channel, arg string) (string, bool)) modes.ExternalFunc {
	return func(p *modes.Pass, on bool, arg string, hasArg bool) bool {
		c := channelOf(p)
		if c == nil {
			return false
		}
		value := field(c)

		if !on {
			if p.HasAccess() && len(*value) > 0 {
				*value = ""
				p.Put(false, ch, "")
			}
			return false
		}

		if !hasArg {
			p.Errors |= modes.ErrMissingParam
			return false
		}
		if !p.HasAccess() {
			return true
		}

		v, ok := clean(p, c, arg)
		if !ok || v == *value {
			return true
		}
		*value = v
		p.Put(true, ch, v)
		return true
	}
}

// cleanForward accepts another channel's name. Unless forced the target
// must exist and the setter must be an operator there.
func cleanForward(p *modes.Pass, c *data.Channel, arg string) (string, bool) {
	if !data.IsChannelName(arg) || strings.EqualFold(arg, c.Name) {
		return "", false
	}
	if p.Force {
		return arg, true
	}

	si, ok := p.Setter.(*dispatch.SourceInfo)
	if !ok || si.User == nil {
		return "", false
	}
	target := si.State().Channel(arg)
	if target == nil {
		si.Num(irc.ERR_NOSUCHCHANNEL, arg)
		return "", false
	}
	if cu := target.Members[si.User]; cu == nil || !cu.Has(modeBit(p.Table, 'o')) {
		si.Num(irc.ERR_CHANOPRIVSNEEDED, target.Name)
		return "", false
	}
	return target.Name, true
}

// cleanThrottle accepts joins:seconds with both parts positive.
func cleanThrottle(_ *modes.Pass, _ *data.Channel, arg string) (string, bool) {
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 {
		return "", false
	}
	joins, err1 := strconv.Atoi(parts[0])
	secs, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || joins < 1 || secs < 1 {
		return "", false
	}
	return strconv.Itoa(joins) + ":" + strconv.Itoa(secs), true
}

// IsMuted reports whether a member may not speak on the channel. The
// answer is cached on the membership until the channel's modes change.
func IsMuted(t *modes.Table, cu *data.ChanUser) bool {
	return cu.Cached(MutedBit, func(cu *data.ChanUser) bool {
		if cu.Has(modeBit(t, 'o') | modeBit(t, 'v')) {
			return false
		}

		c := cu.Channel
		if c.Modes&modeBit(t, 'm') != 0 {
			return true
		}

		mask, ext := cu.User.Mask(), extBans(cu.User)
		if c.List('e').MatchesWith(mask, ext) {
			return false
		}
		return c.List('q').MatchesWith(mask, ext) || c.List('b').MatchesWith(mask, ext)
	})
}

// IsBanned reports whether u matches a ban and no exception.
func IsBanned(c *data.Channel, u *data.User) bool {
	mask, ext := u.Mask(), extBans(u)
	return c.List('b').MatchesWith(mask, ext) && !c.List('e').MatchesWith(mask, ext)
}

// extBans decides extended list entries for u:
// $o opers, $a[:account] logged in users, $c:#channel members of a channel
// and $r:gecos users whose real name matches.
func extBans(u *data.User) modes.ExtMatcher {
	return func(x modes.ExtBan) (bool, bool) {
		switch x.Kind {
		case 'o':
			return u.Oper, true
		case 'a':
			if len(u.Account) == 0 {
				return false, true
			}
			return !x.HasData || u.Account == x.Data, true
		case 'c':
			if !x.HasData {
				return false, true
			}
			folded := irc.Fold(x.Data)
			for c := range u.Channels {
				if irc.Fold(c.Name) == folded {
					return true, true
				}
			}
			return false, true
		case 'r':
			return x.HasData && irc.Match(x.Data, u.Gecos), true
		}
		return false, false
	}
}

// channelParams renders the flag string of a channel followed by the
// parameters of the externals that are set. Members see the key.
func channelParams(t *modes.Table, c *data.Channel, member bool) (string, []string) {
	flags := t.FlagString(c.Modes)
	var params []string

	if len(c.Forward) > 0 {
		flags += "f"
		params = append(params, c.Forward)
	}
	if len(c.JoinThrottle) > 0 {
		flags += "j"
		params = append(params, c.JoinThrottle)
	}
	if len(c.Key) > 0 {
		flags += "k"
		if member {
			params = append(params, c.Key)
		} else {
			params = append(params, "*")
		}
	}
	if c.Limit > 0 {
		flags += "l"
		params = append(params, strconv.Itoa(c.Limit))
	}
	return flags, params
}
