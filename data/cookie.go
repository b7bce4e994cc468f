package data

import (
	"sync/atomic"
)

// cookieClock is shared by every cookie so any two bumped cookies differ.
var cookieClock uint64

// Cookie is a change-sequence value. A target bumps its cookie whenever its
// modes change, dependents remember the cookie they computed against and
// recompute when it no longer matches.
type Cookie struct {
	v uint64
}

// Inc moves the cookie to a value no other cookie has held.
func (c *Cookie) Inc() {
	c.v = atomic.AddUint64(&cookieClock, 1)
}

// Reset the cookie to the zero value, which never equals a bumped cookie.
func (c *Cookie) Reset() {
	c.v = 0
}

// Equal compares two cookies.
func (c Cookie) Equal(o Cookie) bool {
	return c.v == o.v
}
