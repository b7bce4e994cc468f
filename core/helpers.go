package core

import (
	"strconv"
	"strings"

	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/modes"
)

const (
	maxNickLen  = 30
	maxIdentLen = 10
)

// validNick checks the nickname grammar: a letter or special character
// followed by letters, digits, specials and dashes.
func validNick(nick string) bool {
	if len(nick) == 0 || len(nick) > maxNickLen {
		return false
	}
	for i := 0; i < len(nick); i++ {
		ch := nick[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case strings.IndexByte("[]\\`_^{|}", ch) >= 0:
		case i > 0 && (ch >= '0' && ch <= '9' || ch == '-'):
		default:
			return false
		}
	}
	return true
}

// sendToCommon queues line once for every local user sharing a channel
// with u, never for u itself.
func sendToCommon(u *data.User, line string) {
	seen := map[*data.User]bool{u: true}
	for c := range u.Channels {
		for member := range c.Members {
			if seen[member] || !member.IsLocal() {
				continue
			}
			seen[member] = true
			member.Link.Send(line)
		}
	}
}

// newPass builds a mode pass over target.
func newPass(t *modes.Table, target modes.Target, setter modes.Setter, stacker modes.Stacker) *modes.Pass {
	return &modes.Pass{
		Table:   t,
		Target:  target,
		Setter:  setter,
		Stacker: stacker,
	}
}

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}

func atoi(s string) int64 {
	i, _ := strconv.ParseInt(s, 10, 64)
	return i
}
