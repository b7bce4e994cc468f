package modes

import (
	"strconv"
	"time"

	chk "gopkg.in/check.v1"
)

// limitTable has flags n and t and an external l that needs a parameter
// only when it is set.
func limitTable(limit *int) *Table {
	t := newTestTable()
	t.MaxList = 2
	t.Register(Info{Char: 'n', Kind: FlagMode})
	t.Register(Info{Char: 't', Kind: FlagMode})
	t.Register(Info{Char: 'o', Kind: StatusMode, Prefix: '@'})
	t.Register(Info{Char: 'b', Kind: ListMode})
	t.Register(Info{Char: 'l', Kind: ExternalMode,
		Callback: func(p *Pass, on bool, arg string, hasArg bool) bool {
			if !p.HasAccess() {
				return on && hasArg
			}
			if !on {
				*limit = 0
				p.Put(false, 'l', "")
				return false
			}
			if !hasArg {
				p.Errors |= ErrMissingParam
				return false
			}
			n, err := strconv.Atoi(arg)
			if err == nil && n > 0 {
				*limit = n
				p.Put(true, 'l', arg)
			}
			return true
		},
	})
	return t
}

func allow() bool { return true }

func (s *s) TestPass_FlagsAndExternal(c *chk.C) {
	limit := 10
	table := limitTable(&limit)
	target := newTestTarget()
	var out chunks

	p := &Pass{
		Table:   table,
		Target:  target,
		Setter:  testSetter{},
		Access:  allow,
		Stacker: NewBuffer(0, 0, out.flush),
	}
	errs := p.Run("+nt-l")
	p.Stacker.(*Buffer).Done()

	c.Check(errs, chk.Equals, Err(0))
	c.Check(target.flags, chk.Equals, table.Lookup('n').Bit|table.Lookup('t').Bit)
	c.Check(limit, chk.Equals, 0)
	c.Check(out, chk.DeepEquals, chunks{"+nt-l"})
}

func (s *s) TestPass_MissingParam(c *chk.C) {
	limit := 0
	table := limitTable(&limit)
	target := newTestTarget()

	p := &Pass{Table: table, Target: target, Access: allow}
	errs := p.Run("+ntl")

	c.Check(errs.Has(ErrMissingParam), chk.Equals, true)
	c.Check(target.flags&table.Lookup('n').Bit, chk.Not(chk.Equals), uint64(0))
	c.Check(target.flags&table.Lookup('t').Bit, chk.Not(chk.Equals), uint64(0))
	c.Check(limit, chk.Equals, 0)
}

func (s *s) TestPass_AllFlags(c *chk.C) {
	table := newTestTable()
	n, _ := table.Register(Info{Char: 'n', Kind: FlagMode})
	t, _ := table.Register(Info{Char: 't', Kind: FlagMode})
	l, _ := table.Register(Info{Char: 'l', Kind: FlagMode})
	target := newTestTarget()
	target.flags = l.Bit

	p := &Pass{Table: table, Target: target, Access: allow}
	c.Check(p.Run("+nt-l"), chk.Equals, Err(0))
	c.Check(target.flags, chk.Equals, n.Bit|t.Bit)
}

func (s *s) TestPass_Unknown(c *chk.C) {
	limit := 0
	table := limitTable(&limit)
	target := newTestTarget()

	p := &Pass{Table: table, Target: target, Access: allow}
	errs := p.Run("+nXt-Y", "ignored")

	c.Check(errs, chk.Equals, ErrUnknownChar)
	c.Check(string(p.Unknown), chk.Equals, "XY")
	c.Check(target.flags, chk.Equals, table.Lookup('n').Bit|table.Lookup('t').Bit)
}

func (s *s) TestPass_NoAccess(c *chk.C) {
	limit := 0
	table := limitTable(&limit)
	target := newTestTarget()
	calls := 0

	p := &Pass{
		Table:  table,
		Target: target,
		Access: func() bool { calls++; return false },
	}
	errs := p.Run("+ntl", "5")

	c.Check(errs, chk.Equals, ErrNoAccess)
	c.Check(calls, chk.Equals, 1)
	c.Check(target.flags, chk.Equals, uint64(0))
	c.Check(limit, chk.Equals, 0)
	c.Check(p.next, chk.Equals, 1)
}

func (s *s) TestPass_Force(c *chk.C) {
	table := newTestTable()
	o, _ := table.Register(Info{Char: 'O', Kind: FlagMode, Constraints: OperOnly | NoSet})
	target := newTestTarget()

	p := &Pass{Table: table, Target: target, Force: true}
	c.Check(p.Run("+O"), chk.Equals, Err(0))
	c.Check(target.flags, chk.Equals, o.Bit)
}

func (s *s) TestPass_Constraints(c *chk.C) {
	table := newTestTable()
	o, _ := table.Register(Info{Char: 'o', Kind: FlagMode, Constraints: NoSet})
	x, _ := table.Register(Info{Char: 'x', Kind: FlagMode, Constraints: NoReset})
	O, _ := table.Register(Info{Char: 'O', Kind: FlagMode, Constraints: OperOnly})
	target := newTestTarget()
	target.flags = x.Bit

	p := &Pass{Table: table, Target: target, Setter: testSetter{}, Access: allow}
	errs := p.Run("+oO-x")
	c.Check(errs, chk.Equals, ErrNotOper)
	c.Check(target.flags, chk.Equals, x.Bit)

	target.flags = o.Bit
	p = &Pass{Table: table, Target: target, Setter: testSetter{oper: true}, Access: allow}
	c.Check(p.Run("-o+O"), chk.Equals, Err(0))
	c.Check(target.flags, chk.Equals, O.Bit)
}

func (s *s) TestPass_Status(c *chk.C) {
	limit := 0
	table := limitTable(&limit)
	target := newTestTarget()
	var out chunks
	buf := NewBuffer(0, 0, out.flush)
	ids := NewBuffer(0, 0, out.flush)
	ids.UseIDs = true

	p := &Pass{
		Table:   table,
		Target:  target,
		Access:  allow,
		Stacker: Multi{buf, ids},
	}
	errs := p.Run("+ooo", "alice", "bob", "carol")
	buf.Done()
	ids.Done()

	c.Check(errs, chk.Equals, ErrNotMember|ErrNoSuchTarget)
	c.Check(p.Missing, chk.DeepEquals, []string{"bob", "carol"})
	c.Check(target.members["alice"].bits, chk.Equals, table.Lookup('o').Bit)
	c.Check(out, chk.DeepEquals, chunks{"+o alice", "+o 0AAAAAAAA"})

	p = &Pass{Table: table, Target: target, Access: allow}
	c.Check(p.Run("-oo", "alice"), chk.Equals, ErrMissingParam)
	c.Check(target.members["alice"].bits, chk.Equals, uint64(0))
}

func (s *s) TestPass_List(c *chk.C) {
	limit := 0
	table := limitTable(&limit)
	target := newTestTarget()
	now := time.Unix(1000, 0)
	var out chunks

	p := &Pass{
		Table:   table,
		Target:  target,
		Setter:  testSetter{},
		Access:  allow,
		Now:     func() time.Time { return now },
		Stacker: NewBuffer(0, 0, out.flush),
	}
	errs := p.Run("+bbbb", "a!*@*", "A!*@*", "b!*@*", "c!*@*")
	p.Stacker.(*Buffer).Done()

	c.Check(errs, chk.Equals, ErrListFull)
	c.Check(string(p.Full), chk.Equals, "b")
	c.Check(target.lists['b'].Entries, chk.DeepEquals, []Entry{
		{Mask: "a!*@*", Setter: "nick!user@host", Time: now},
		{Mask: "b!*@*", Setter: "nick!user@host", Time: now},
	})
	c.Check(out, chk.DeepEquals, chunks{"+bb a!*@* b!*@*"})

	out = nil
	p = &Pass{Table: table, Target: target, Access: allow, Stacker: NewBuffer(0, 0, out.flush)}
	c.Check(p.Run("-bb", "nothere", "A!*@*"), chk.Equals, Err(0))
	p.Stacker.(*Buffer).Done()
	c.Check(target.lists['b'].Len(), chk.Equals, 1)
	c.Check(out, chk.DeepEquals, chunks{"-b A!*@*"})
}

func (s *s) TestPass_ListRequest(c *chk.C) {
	limit := 0
	table := limitTable(&limit)
	target := newTestTarget()

	p := &Pass{Table: table, Target: target}
	c.Check(p.Run("bb"), chk.Equals, Err(0))
	c.Check(p.Requests, chk.DeepEquals, []*Info{table.Lookup('b')})
}

func (s *s) TestPass_Sync(c *chk.C) {
	target := newTestTarget()
	table := NewTable("channel", NewAllocator(0xFF), nil, func(t Target) {
		t.(*testTarget).syncs++
	})
	table.Register(Info{Char: 'n', Kind: FlagMode})

	p := &Pass{Table: table, Target: target, Access: allow}
	p.Run("+n-n+nX")
	c.Check(target.syncs, chk.Equals, 1)
}

func (s *s) TestPass_Malformed(c *chk.C) {
	p := &Pass{Target: newTestTarget()}
	c.Check(func() { p.Run("+n") }, chk.PanicMatches, "modes: pass without table or target")

	p = &Pass{Table: newTestTable()}
	c.Check(func() { p.Run("+n") }, chk.PanicMatches, "modes: pass without table or target")
}
