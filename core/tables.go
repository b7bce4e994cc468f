package core

import (
	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/modes"
)

// MutedBit is a membership status bit that caches whether the member may
// not speak. It is reserved in the status allocator and never registered
// as a mode, so it is invisible to MODE and to prefixes.
const MutedBit uint64 = 1 << 63

const allBits = ^uint64(0)

// NewChannelTable creates the channel mode table. Every pass over a channel
// bumps its cookie.
func NewChannelTable(maxList int) *modes.Table {
	status := modes.NewAllocator(allBits)
	status.MarkUsed(MutedBit)

	t := modes.NewTable("channel", modes.NewAllocator(allBits), status, func(target modes.Target) {
		if c, ok := target.(*data.Channel); ok {
			c.Sync()
		}
	})
	t.MaxList = maxList
	return t
}

// NewUserTable creates the user mode table. Passes over a user keep the
// user's operator status in step with the o flag.
func NewUserTable() *modes.Table {
	var t *modes.Table
	t = modes.NewTable("user", modes.NewAllocator(allBits), nil, func(target modes.Target) {
		u, ok := target.(*data.User)
		if !ok {
			return
		}
		if info := t.Lookup('o'); info != nil {
			setOper(u, u.Modes&info.Bit != 0)
		}
	})
	return t
}

// modeBit returns the bit behind ch, 0 if it is not registered.
func modeBit(t *modes.Table, ch byte) uint64 {
	if info := t.Lookup(ch); info != nil {
		return info.Bit
	}
	return 0
}

// setOper changes operator status, $o bans see the change.
func setOper(u *data.User, oper bool) {
	if u.Oper != oper {
		u.Oper = oper
		u.InvalidateMemberships()
	}
}
