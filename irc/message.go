/*
Package irc defines the small shared vocabulary of the server: the parsed
message type, command and numeric constants, wildcard masks and a helper to
build outbound protocol lines.
*/
package irc

import (
	"strings"
)

// Message is one parsed protocol line. It lives for exactly one dispatch
// cycle and is never shared between two lines.
type Message struct {
	// Source is the leading :source token without the colon, or empty.
	Source string
	// Command is upper cased. Numerics keep their digits, the registry
	// folds them onto NumericCommand during lookup.
	Command string
	// Args split by space delimiting, the trailing argument may contain
	// spaces.
	Args []string
	// Line is the raw text the message was parsed from, used verbatim
	// when the message is propagated to other servers.
	Line string

	// Propagate is set by a handler to designate the entity (uid, sid,
	// nick or server name) a one-to-one propagation is routed towards.
	// Broadcast handlers set it to any non-empty value, conventionally
	// PropagateAll.
	Propagate string
	// Repeat asks the dispatcher to resolve the source again and re-run
	// the same line.
	Repeat bool
}

// PropagateAll is the conventional Propagate value for broadcast commands.
const PropagateAll = "*"

// NewMessage builds a message by hand, mostly useful for tests and for
// handlers that synthesize sub-messages.
func NewMessage(source, command string, args ...string) *Message {
	var setArgs []string
	if len(args) > 0 {
		setArgs = make([]string, len(args))
		copy(setArgs, args)
	}

	m := &Message{
		Source:  source,
		Command: strings.ToUpper(command),
		Args:    setArgs,
	}
	m.Line = Line(source, m.Command, setArgs...)
	return m
}

// Arg returns the argument at index i or empty string if there is none.
func (m *Message) Arg(i int) string {
	if i < 0 || i >= len(m.Args) {
		return ""
	}
	return m.Args[i]
}

// SplitArgs splits a comma separated argument.
func (m *Message) SplitArgs(index int) []string {
	return strings.Split(m.Arg(index), ",")
}

// String re-serializes the message.
func (m *Message) String() string {
	return Line(m.Source, m.Command, m.Args...)
}

// IsNumeric checks if a command is exactly three digits.
func IsNumeric(command string) bool {
	if len(command) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if command[i] < '0' || command[i] > '9' {
			return false
		}
	}
	return true
}
