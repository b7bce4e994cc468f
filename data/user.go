package data

import (
	"github.com/aarondl/uqircd/irc"
)

// User encapsulates all the data associated with a user, local or remote.
type User struct {
	UID      string
	Nick     string
	Ident    string
	Host     string
	RealHost string
	IP       string
	Gecos    string
	// Account is the services account the user is logged in to.
	Account string
	// TS is the nick timestamp.
	TS int64

	// Oper is set once the user has proven operator credentials.
	Oper bool
	// Modes is the field behind the user mode table's flag modes.
	Modes uint64

	// Link is the user's own connection when local, otherwise the link
	// toward the server the user is on.
	Link *Link
	// Server the user is connected to.
	Server *Server
	local  bool

	Channels map[*Channel]*ChanUser
}

// IsLocal reports whether the user is connected to this server.
func (u *User) IsLocal() bool {
	return u.local
}

// IsRegistered reports whether registration has completed.
func (u *User) IsRegistered() bool {
	return !u.local || (u.Link != nil && u.Link.Registered)
}

// Mask returns nick!ident@host.
func (u *User) Mask() irc.Mask {
	return irc.NewMask(u.Nick, u.Ident, u.Host)
}

// String returns the nickname, or the uid while it has none.
func (u *User) String() string {
	if len(u.Nick) == 0 {
		return u.UID
	}
	return u.Nick
}

// Flags implements modes.Target.
func (u *User) Flags() uint64 {
	return u.Modes
}

// SetFlags implements modes.Target.
func (u *User) SetFlags(bits uint64) bool {
	old := u.Modes
	u.Modes |= bits
	return old != u.Modes
}

// ResetFlags implements modes.Target.
func (u *User) ResetFlags(bits uint64) bool {
	old := u.Modes
	u.Modes &^= bits
	return old != u.Modes
}

// InvalidateMemberships makes every membership of the user recompute its
// cached state, for changes to the user that bans can match on.
func (u *User) InvalidateMemberships() {
	for _, cu := range u.Channels {
		cu.Invalidate()
	}
}
