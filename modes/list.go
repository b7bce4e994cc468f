package modes

import (
	"strings"
	"time"

	"github.com/aarondl/uqircd/irc"
)

// Entry is one element of a list mode such as a ban.
type Entry struct {
	Mask   string
	Setter string
	Time   time.Time
}

// List is the storage behind one list mode character on one target.
type List struct {
	Entries []Entry
}

// Len of the list.
func (l *List) Len() int {
	return len(l.Entries)
}

// Index finds an entry by mask under irc case mapping, -1 if absent.
func (l *List) Index(mask string) int {
	folded := irc.Fold(mask)
	for i, e := range l.Entries {
		if irc.Fold(e.Mask) == folded {
			return i
		}
	}
	return -1
}

// Add appends an entry.
func (l *List) Add(e Entry) {
	l.Entries = append(l.Entries, e)
}

// Remove deletes the entry with mask and reports whether one existed.
func (l *List) Remove(mask string) bool {
	i := l.Index(mask)
	if i < 0 {
		return false
	}
	l.Entries = append(l.Entries[:i], l.Entries[i+1:]...)
	return true
}

// Matches reports whether any entry's wildcard mask matches the hostmask.
// Extended entries never match, use MatchesWith to decide them.
func (l *List) Matches(m irc.Mask) bool {
	return l.MatchesWith(m, nil)
}

// MatchesWith is Matches with extended entries handed to ext. A nil ext
// or an unknown kind never matches, even when inverted.
func (l *List) MatchesWith(m irc.Mask, ext ExtMatcher) bool {
	for _, e := range l.Entries {
		x, ok := ParseExtBan(e.Mask)
		if !ok {
			if irc.Match(e.Mask, string(m)) {
				return true
			}
			continue
		}

		if ext == nil {
			continue
		}
		matched, known := ext(x)
		if known && matched != x.Invert {
			return true
		}
	}
	return false
}

// ExtBan is an extended list entry, $[~]kind[:data]. It matches on a
// property of the user instead of the hostmask.
type ExtBan struct {
	Kind byte
	// Data follows the first colon, HasData tells "$a" from "$a:".
	Data    string
	HasData bool
	// Invert matches everyone the entry would not.
	Invert bool
}

// ExtMatcher decides an extended entry for one user. known is false for
// kinds it does not understand.
type ExtMatcher func(x ExtBan) (matched, known bool)

// ParseExtBan splits an extended entry, ok is false for ordinary masks.
func ParseExtBan(mask string) (x ExtBan, ok bool) {
	if len(mask) == 0 || mask[0] != '$' {
		return x, false
	}

	if i := strings.IndexByte(mask, ':'); i >= 0 {
		x.Data, x.HasData = mask[i+1:], true
	}

	rest := mask[1:]
	if len(rest) > 0 && rest[0] == '~' {
		x.Invert = true
		rest = rest[1:]
	}
	if len(rest) > 0 && rest[0] != ':' {
		x.Kind = rest[0]
	}
	return x, true
}
