package modes

import (
	chk "gopkg.in/check.v1"
)

func newTestTable() *Table {
	return NewTable("channel", NewAllocator(0xFFFF), NewAllocator(0xFF), nil)
}

func (s *s) TestTable_Register(c *chk.C) {
	t := newTestTable()

	n, err := t.Register(Info{Char: 'n', Kind: FlagMode})
	c.Assert(err, chk.IsNil)
	c.Check(n.Bit, chk.Equals, uint64(1))
	c.Check(t.Lookup('n'), chk.Equals, n)

	o, err := t.Register(Info{Char: 'o', Kind: StatusMode, Prefix: '@'})
	c.Assert(err, chk.IsNil)
	c.Check(o.Bit, chk.Equals, uint64(1))

	b, err := t.Register(Info{Char: 'b', Kind: ListMode})
	c.Assert(err, chk.IsNil)
	c.Check(b.Bit, chk.Equals, uint64(0))
}

func (s *s) TestTable_RegisterConflict(c *chk.C) {
	t := newTestTable()

	n, err := t.Register(Info{Char: 'n', Kind: FlagMode})
	c.Assert(err, chk.IsNil)

	_, err = t.Register(Info{Char: 'n', Kind: ListMode})
	c.Check(err, chk.Equals, ErrCharInUse)
	c.Check(t.Lookup('n'), chk.Equals, n)
	c.Check(t.Lookup('n').Kind, chk.Equals, FlagMode)
	c.Check(t.flags.Used(), chk.Equals, uint64(1))

	c.Check(t.Unregister('n'), chk.Equals, true)
	c.Check(t.Unregister('n'), chk.Equals, false)
	c.Check(t.flags.Used(), chk.Equals, uint64(0))

	l, err := t.Register(Info{Char: 'n', Kind: ListMode})
	c.Assert(err, chk.IsNil)
	c.Check(l.Kind, chk.Equals, ListMode)
}

func (s *s) TestTable_RegisterErrors(c *chk.C) {
	t := NewTable("user", NewAllocator(1), nil, nil)

	for _, ch := range []byte{0, '+', '-', ' ', 200} {
		_, err := t.Register(Info{Char: ch, Kind: FlagMode})
		c.Check(err, chk.Equals, ErrBadChar)
	}

	_, err := t.Register(Info{Char: 'x', Kind: ExternalMode})
	c.Check(err, chk.Equals, ErrNoCallback)

	_, err = t.Register(Info{Char: 'o', Kind: StatusMode})
	c.Check(err, chk.Equals, ErrNoBits)

	_, err = t.Register(Info{Char: 'z', Kind: Kind(42)})
	c.Check(err, chk.Equals, ErrBadKind)

	_, err = t.Register(Info{Char: 'i', Kind: FlagMode})
	c.Check(err, chk.IsNil)
	_, err = t.Register(Info{Char: 'w', Kind: FlagMode})
	c.Check(err, chk.Equals, ErrNoBits)
	c.Check(t.Lookup('w'), chk.IsNil)
}

func (s *s) TestTable_Render(c *chk.C) {
	t := newTestTable()
	t.Register(Info{Char: 't', Kind: FlagMode})
	n, _ := t.Register(Info{Char: 'n', Kind: FlagMode})
	t.Register(Info{Char: 'b', Kind: ListMode})
	t.Register(Info{Char: 'e', Kind: ListMode})
	o, _ := t.Register(Info{Char: 'o', Kind: StatusMode, Prefix: '@'})
	v, _ := t.Register(Info{Char: 'v', Kind: StatusMode, Prefix: '+'})

	c.Check(t.Chars(ListMode), chk.Equals, "be")
	c.Check(t.Chars(FlagMode), chk.Equals, "nt")
	c.Check(t.FlagString(1), chk.Equals, "+t")
	c.Check(t.FlagString(n.Bit), chk.Equals, "+n")
	c.Check(t.FlagString(3), chk.Equals, "+nt")
	c.Check(t.FlagString(0), chk.Equals, "+")
	c.Check(t.Prefixes(o.Bit|v.Bit), chk.Equals, "@+")
	c.Check(t.Prefixes(v.Bit), chk.Equals, "+")
	c.Check(len(t.Statuses()), chk.Equals, 2)
	c.Check(t.Statuses()[0], chk.Equals, o)
}
