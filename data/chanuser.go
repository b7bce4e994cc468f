package data

// ChanUser represents a user that's on a channel.
type ChanUser struct {
	Channel *Channel
	User    *User
	// Status is the field behind the channel table's status modes.
	Status uint64

	muteCookie Cookie
}

// MemberName implements modes.Member.
func (cu *ChanUser) MemberName() string {
	return cu.User.Nick
}

// MemberID implements modes.Member.
func (cu *ChanUser) MemberID() string {
	return cu.User.UID
}

// Has checks for any of the status bits.
func (cu *ChanUser) Has(bits uint64) bool {
	return cu.Status&bits != 0
}

// Cached returns the value of bit, recomputing it with compute when the
// channel changed since the last computation. The result is stored in the
// membership's status field under bit, so bit must be reserved in the
// status allocator.
func (cu *ChanUser) Cached(bit uint64, compute func(*ChanUser) bool) bool {
	if cu.muteCookie.Equal(cu.Channel.Cookie) {
		return cu.Status&bit != 0
	}

	if compute(cu) {
		cu.Status |= bit
	} else {
		cu.Status &^= bit
	}
	cu.muteCookie = cu.Channel.Cookie
	return cu.Status&bit != 0
}

// Invalidate forces the next Cached call to recompute, for changes to the
// member itself rather than the channel.
func (cu *ChanUser) Invalidate() {
	cu.muteCookie.Reset()
}
