package modes

import (
	chk "gopkg.in/check.v1"
)

func (s *s) TestBuffer_Coalesce(c *chk.C) {
	var out chunks
	b := NewBuffer(0, 0, out.flush)

	b.PutFlag(true, 'n')
	b.PutFlag(true, 't')
	b.PutFlag(false, 'l')
	b.PutExternal(true, 'k', "key")
	b.PutListEntry(false, 'b', "*!*@*")
	b.PutStatus(true, 'o', &testMember{name: "alice", id: "0AAAAAAAA"})

	c.Check(b.String(), chk.Equals, "+nt-l+k-b+o key *!*@* alice")
	c.Check(b.Empty(), chk.Equals, false)

	b.Done()
	c.Check(b.Empty(), chk.Equals, true)
	c.Check(out, chk.DeepEquals, chunks{"+nt-l+k-b+o key *!*@* alice"})

	b.Done()
	c.Check(len(out), chk.Equals, 1)
}

func (s *s) TestBuffer_MaxParams(c *chk.C) {
	var out chunks
	b := NewBuffer(0, 2, out.flush)

	b.PutListEntry(true, 'b', "a")
	b.PutFlag(true, 'n')
	b.PutListEntry(true, 'b', "b")
	b.PutListEntry(true, 'b', "c")
	b.PutFlag(false, 'n')
	b.Done()

	c.Check(out, chk.DeepEquals, chunks{"+bnb a b", "+b-n c"})
}

func (s *s) TestBuffer_MaxLen(c *chk.C) {
	var out chunks
	b := NewBuffer(10, 0, out.flush)

	b.PutListEntry(true, 'b', "abc")
	b.PutListEntry(true, 'b', "defg")
	b.PutExternal(false, 'k', "")
	b.PutFlag(false, 'n')
	b.PutFlag(false, 't')
	b.Done()

	c.Check(out, chk.DeepEquals, chunks{"+b abc", "+b-kn defg", "-t"})
}
