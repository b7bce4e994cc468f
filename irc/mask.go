package irc

import (
	"strings"
)

// Mask is a type that represents an irc hostmask. nickname!username@hostname
type Mask string

// WildMask is a mask or server name that contains the wildcard characters
// ? and *
type WildMask string

// NewMask joins the fragments of a hostmask.
func NewMask(nick, user, host string) Mask {
	return Mask(nick + "!" + user + "@" + host)
}

// Match checks if the WildMask satisfies the given normal mask.
func (w WildMask) Match(m Mask) bool {
	return Match(string(w), string(m))
}

// Match checks if a given wildmask is satisfied by the mask.
func (m Mask) Match(w WildMask) bool {
	return Match(string(w), string(m))
}

// Nick returns the nick of this mask.
func (m Mask) Nick() string {
	nick := string(m)
	index := strings.IndexAny(nick, "!@")
	if index >= 0 {
		return nick[:index]
	}
	return nick
}

// Split splits a mask into it's fragments: nick, user, and host. Missing
// fragments are returned as empty strings.
func (m Mask) Split() (nick, user, host string) {
	s := string(m)
	if at := strings.LastIndexByte(s, '@'); at >= 0 {
		host = s[at+1:]
		s = s[:at]
	}
	if bang := strings.IndexByte(s, '!'); bang >= 0 {
		user = s[bang+1:]
		s = s[:bang]
	}
	return s, user, host
}

// Match reports whether s satisfies the wildcard pattern under irc case
// mapping.
func Match(pattern, s string) bool {
	return isMatch(Fold(s), Fold(pattern))
}

// Fold maps a name to its rfc1459 canonical case. Used for every nickname,
// channel and server directory key.
func Fold(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == '[':
			return '{'
		case r == ']':
			return '}'
		case r == '\\':
			return '|'
		case r == '~':
			return '^'
		}
		return r
	}, s)
}

// isMatch is a matching function for a string, and a string with the wildcards
// * and ? in it. A star remembers where it was seen so a later mismatch can
// retry with the star swallowing one more character.
func isMatch(ms, ws string) bool {
	i, j := 0, 0
	star, mark := -1, 0

	for j < len(ms) {
		switch {
		case i < len(ws) && ws[i] == '*':
			star = i
			mark = j
			i++
		case i < len(ws) && (ws[i] == '?' || ws[i] == ms[j]):
			i++
			j++
		case star >= 0:
			i = star + 1
			mark++
			j = mark
		default:
			return false
		}
	}

	for i < len(ws) && ws[i] == '*' {
		i++
	}

	return i == len(ws)
}
