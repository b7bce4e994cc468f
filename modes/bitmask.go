package modes

// Allocator hands out single bits from a fixed usable set. Flag modes and
// status modes each get their own allocator.
type Allocator struct {
	usable uint64
	used   uint64
}

// NewAllocator creates an allocator over the usable bits.
func NewAllocator(usable uint64) *Allocator {
	return &Allocator{usable: usable}
}

// Allocate returns the lowest free usable bit and marks it used. It returns
// false when every usable bit is taken.
func (a *Allocator) Allocate() (uint64, bool) {
	free := a.usable &^ a.used
	if free == 0 {
		return 0, false
	}

	bit := free & -free
	a.used |= bit
	return bit, true
}

// Release frees bits. Bits outside the usable set or already free are
// ignored.
func (a *Allocator) Release(bits uint64) {
	a.used &^= bits & a.usable
}

// MarkUsed reserves bits before dynamic allocation starts, typically for
// built-in values that live in the same field.
func (a *Allocator) MarkUsed(bits uint64) {
	a.used |= bits & a.usable
}

// Used returns the set of allocated bits.
func (a *Allocator) Used() uint64 {
	return a.used
}

// Usable returns the set of bits this allocator manages.
func (a *Allocator) Usable() uint64 {
	return a.usable
}
