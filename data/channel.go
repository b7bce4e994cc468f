package data

import (
	"github.com/aarondl/uqircd/modes"
)

// Channel encapsulates all the data associated with a channel. It is the
// target of channel mode passes.
type Channel struct {
	Name  string
	TS    int64
	Topic string
	// TopicSetter and TopicTime describe the last topic change.
	TopicSetter string
	TopicTime   int64

	// Modes is the field behind the channel table's flag modes.
	Modes uint64
	// Parameters of the built-in external modes.
	Key          string
	Limit        int
	Forward      string
	JoinThrottle string

	Lists   map[byte]*modes.List
	Members map[*User]*ChanUser

	// Cookie is bumped after every mode pass.
	Cookie Cookie

	state *State
}

// Flags implements modes.Target.
func (c *Channel) Flags() uint64 {
	return c.Modes
}

// SetFlags implements modes.Target.
func (c *Channel) SetFlags(bits uint64) bool {
	old := c.Modes
	c.Modes |= bits
	return old != c.Modes
}

// ResetFlags implements modes.Target.
func (c *Channel) ResetFlags(bits uint64) bool {
	old := c.Modes
	c.Modes &^= bits
	return old != c.Modes
}

// Member resolves a nickname or uid to a membership.
func (c *Channel) Member(name string) (modes.Member, error) {
	u := c.state.UserByNickOrUID(name)
	if u == nil {
		return nil, modes.ErrNoSuchMember
	}
	cu, ok := c.Members[u]
	if !ok {
		return nil, modes.ErrNotAMember
	}
	return cu, nil
}

// SetStatus implements modes.StatusTarget.
func (c *Channel) SetStatus(m modes.Member, bits uint64) bool {
	cu := m.(*ChanUser)
	old := cu.Status
	cu.Status |= bits
	return old != cu.Status
}

// ResetStatus implements modes.StatusTarget.
func (c *Channel) ResetStatus(m modes.Member, bits uint64) bool {
	cu := m.(*ChanUser)
	old := cu.Status
	cu.Status &^= bits
	return old != cu.Status
}

// List returns the list for ch, creating it on first use.
func (c *Channel) List(ch byte) *modes.List {
	l, ok := c.Lists[ch]
	if !ok {
		l = &modes.List{}
		c.Lists[ch] = l
	}
	return l
}

// Sync bumps the cookie so cached views of the channel go stale.
func (c *Channel) Sync() {
	c.Cookie.Inc()
}

// String returns the name.
func (c *Channel) String() string {
	return c.Name
}
