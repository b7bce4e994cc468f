package irc

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// Line builds a protocol line without the trailing CRLF. The final argument
// is prefixed with a colon when it needs one.
func Line(source, command string, args ...string) string {
	msg := ircmsg.MakeMessage(nil, source, command, args...)
	line, err := msg.Line()
	if err != nil {
		// Only reachable when a middle argument contains a space, the
		// caller broke the line so hand it back as-is.
		return joinLine(source, command, args)
	}
	return strings.TrimRight(line, "\r\n")
}

func joinLine(source, command string, args []string) string {
	var b strings.Builder
	if len(source) > 0 {
		b.WriteByte(':')
		b.WriteString(source)
		b.WriteByte(' ')
	}
	b.WriteString(command)
	for i, a := range args {
		b.WriteByte(' ')
		if i == len(args)-1 && (len(a) == 0 || a[0] == ':' || strings.IndexByte(a, ' ') >= 0) {
			b.WriteByte(':')
		}
		b.WriteString(a)
	}
	return b.String()
}
