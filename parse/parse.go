/*
Package parse turns raw protocol lines into irc.Messages.
*/
package parse

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
	"github.com/pkg/errors"

	"github.com/aarondl/uqircd/irc"
)

// DefaultMaxArgs is the argument bound used by Parse.
const DefaultMaxArgs = 15

var (
	// ErrEmptyLine is returned for lines that carry no command at all.
	ErrEmptyLine = errors.New("parse: empty line")
)

// ParseError is generated when a line cannot be tokenized, it carries the
// offending text.
type ParseError struct {
	// The message
	Msg string
	// The invalid irc encountered.
	Irc string
}

// Error satisfies the Error interface for ParseError.
func (p ParseError) Error() string {
	return p.Msg
}

// Parse produces a Message from a line using DefaultMaxArgs.
func Parse(line string) (*irc.Message, error) {
	return ParseMax(line, DefaultMaxArgs)
}

// ParseMax produces a Message from a line. The line must not contain the
// terminating newline. Surrounding whitespace is ignored, the command is
// upper cased and arguments past max are dropped. Any whitespace separates
// arguments, the trailing argument is kept as sent.
func ParseMax(line string, max int) (*irc.Message, error) {
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return nil, ErrEmptyLine
	}

	raw, err := ircmsg.ParseLine(foldSpace(line))
	if err != nil {
		return nil, ParseError{Msg: "parse: " + err.Error(), Irc: line}
	}
	if len(raw.Command) == 0 {
		return nil, ErrEmptyLine
	}

	args := raw.Params
	if max >= 0 && len(args) > max {
		args = args[:max]
	}

	return &irc.Message{
		Source:  raw.Source,
		Command: strings.ToUpper(raw.Command),
		Args:    args,
		Line:    line,
	}, nil
}

// foldSpace turns each run of whitespace before the trailing argument into a
// single space, ircmsg only splits on spaces.
func foldSpace(line string) string {
	var b strings.Builder
	b.Grow(len(line))

	space := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if isSpace(ch) {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
			if ch == ':' {
				b.WriteString(line[i:])
				return b.String()
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
