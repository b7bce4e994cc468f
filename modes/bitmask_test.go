package modes

import (
	chk "gopkg.in/check.v1"
)

func (s *s) TestAllocator_LowestFirst(c *chk.C) {
	a := NewAllocator(0xB) // bits 1, 2, 8

	for _, want := range []uint64{1, 2, 8} {
		bit, ok := a.Allocate()
		c.Check(ok, chk.Equals, true)
		c.Check(bit, chk.Equals, want)
	}

	_, ok := a.Allocate()
	c.Check(ok, chk.Equals, false)

	a.Release(2)
	bit, ok := a.Allocate()
	c.Check(ok, chk.Equals, true)
	c.Check(bit, chk.Equals, uint64(2))

	_, ok = a.Allocate()
	c.Check(ok, chk.Equals, false)
}

func (s *s) TestAllocator_ReleaseNoop(c *chk.C) {
	a := NewAllocator(0xF)
	bit, _ := a.Allocate()
	c.Check(bit, chk.Equals, uint64(1))

	a.Release(4)
	a.Release(0x100)
	c.Check(a.Used(), chk.Equals, uint64(1))

	a.Release(1)
	a.Release(1)
	c.Check(a.Used(), chk.Equals, uint64(0))
}

func (s *s) TestAllocator_MarkUsed(c *chk.C) {
	a := NewAllocator(0xF)
	a.MarkUsed(1 | 0x100)
	c.Check(a.Used(), chk.Equals, uint64(1))

	bit, ok := a.Allocate()
	c.Check(ok, chk.Equals, true)
	c.Check(bit, chk.Equals, uint64(2))
	c.Check(a.Usable(), chk.Equals, uint64(0xF))
}
