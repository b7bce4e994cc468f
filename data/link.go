package data

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aarondl/uqircd/inet"
	"github.com/aarondl/uqircd/irc"
)

// LinkType is what a connection has declared itself to be.
type LinkType int

// Link types.
const (
	LinkNone LinkType = iota
	LinkUser
	LinkServer
)

// String for logging.
func (t LinkType) String() string {
	switch t {
	case LinkUser:
		return "user"
	case LinkServer:
		return "server"
	}
	return "none"
}

// Link is a single connection to a client or a peer server.
type Link struct {
	// ID uniquely names the connection in logs.
	ID string
	// IP is the remote address without port.
	IP string

	Type       LinkType
	Registered bool
	// Pass is the password given with PASS before registration.
	Pass string

	User   *User
	Server *Server

	// Out holds lines waiting to be written.
	Out *inet.Queue

	closed      bool
	closeReason string
}

// NewLink creates an unregistered link.
func NewLink(ip string) *Link {
	return &Link{
		ID:  uuid.New().String(),
		IP:  ip,
		Out: &inet.Queue{},
	}
}

// Send queues a line. Lines sent after Close are dropped.
func (l *Link) Send(line string) {
	if l.closed {
		return
	}
	l.Out.Enqueue(line)
}

// Sendf formats and queues a line.
func (l *Link) Sendf(format string, args ...interface{}) {
	l.Send(fmt.Sprintf(format, args...))
}

// Num queues a numeric reply from server addressed to this link's user.
func (l *Link) Num(server string, num int, args ...interface{}) {
	l.Send(irc.Numeric(server, l.Name(), num, args...))
}

// Name is the nickname of a user link, the name of a server link, or empty.
func (l *Link) Name() string {
	switch {
	case l.User != nil:
		return l.User.Nick
	case l.Server != nil:
		return l.Server.Name
	}
	return ""
}

// Close sends a final ERROR and marks the link so nothing else is queued.
// The owner of the socket notices through Closed.
func (l *Link) Close(reason string) {
	if l.closed {
		return
	}
	l.Send(irc.Line("", irc.ERROR, "Closing Link: "+reason))
	l.closed = true
	l.closeReason = reason
}

// Closed reports whether Close was called and why.
func (l *Link) Closed() (bool, string) {
	return l.closed, l.closeReason
}

// Drain removes and returns every queued line.
func (l *Link) Drain() []string {
	return l.Out.Dequeue(l.Out.Len())
}
