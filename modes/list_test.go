package modes

import (
	chk "gopkg.in/check.v1"

	"github.com/aarondl/uqircd/irc"
)

func (s *s) TestList_AddRemove(c *chk.C) {
	l := &List{}
	l.Add(Entry{Mask: "Fish!*@*"})
	l.Add(Entry{Mask: "bird!*@*"})

	c.Check(l.Len(), chk.Equals, 2)
	c.Check(l.Index("fish!*@*"), chk.Equals, 0)
	c.Check(l.Remove("BIRD!*@*"), chk.Equals, true)
	c.Check(l.Remove("bird!*@*"), chk.Equals, false)
	c.Check(l.Len(), chk.Equals, 1)
}

func (s *s) TestList_ParseExtBan(c *chk.C) {
	tests := []struct {
		Mask string
		Ok   bool
		Want ExtBan
	}{
		{"*!*@*", false, ExtBan{}},
		{"$o", true, ExtBan{Kind: 'o'}},
		{"$~o", true, ExtBan{Kind: 'o', Invert: true}},
		{"$a:fish", true, ExtBan{Kind: 'a', Data: "fish", HasData: true}},
		{"$a:", true, ExtBan{Kind: 'a', HasData: true}},
		{"$~c:#sea", true, ExtBan{Kind: 'c', Data: "#sea", HasData: true, Invert: true}},
		{"$r:*bot*:x", true, ExtBan{Kind: 'r', Data: "*bot*:x", HasData: true}},
		{"$", true, ExtBan{}},
		{"$~", true, ExtBan{Invert: true}},
	}

	for _, test := range tests {
		x, ok := ParseExtBan(test.Mask)
		c.Check(ok, chk.Equals, test.Ok, chk.Commentf(test.Mask))
		c.Check(x, chk.Equals, test.Want, chk.Commentf(test.Mask))
	}
}

func (s *s) TestList_MatchesWith(c *chk.C) {
	fish := irc.NewMask("fish", "f", "sea.net")
	opers := func(x ExtBan) (bool, bool) {
		if x.Kind != 'o' {
			return false, false
		}
		return true, true
	}

	l := &List{}
	l.Add(Entry{Mask: "$o"})
	c.Check(l.Matches(fish), chk.Equals, false)
	c.Check(l.MatchesWith(fish, opers), chk.Equals, true)

	l = &List{Entries: []Entry{{Mask: "$~o"}}}
	c.Check(l.MatchesWith(fish, opers), chk.Equals, false)

	// Unknown kinds match nobody, inverted or not.
	l = &List{Entries: []Entry{{Mask: "$x"}, {Mask: "$~x"}, {Mask: "$"}}}
	c.Check(l.MatchesWith(fish, opers), chk.Equals, false)

	l = &List{Entries: []Entry{{Mask: "$x"}, {Mask: "*!*@*.net"}}}
	c.Check(l.MatchesWith(fish, opers), chk.Equals, true)
	c.Check(l.Matches(irc.NewMask("bird", "b", "sky.org")), chk.Equals, false)
}
