package irc

import "testing"

func TestMask_Split(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Mask             Mask
		Nick, User, Host string
	}{
		{"nick!user@host", "nick", "user", "host"},
		{"nick@host", "nick", "", "host"},
		{"nick", "nick", "", ""},
		{"nick!user@host@more", "nick", "user@host", "more"},
	}

	for _, test := range tests {
		n, u, h := test.Mask.Split()
		if n != test.Nick || u != test.User || h != test.Host {
			t.Errorf("%s: want: %s %s %s, got: %s %s %s",
				test.Mask, test.Nick, test.User, test.Host, n, u, h)
		}
		if nick := test.Mask.Nick(); nick != test.Nick {
			t.Errorf("%s: nick want: %s, got: %s", test.Mask, test.Nick, nick)
		}
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Pattern string
		Value   string
		Want    bool
	}{
		{"*", "irc.example.net", true},
		{"*", "", true},
		{"", "", true},
		{"", "a", false},
		{"irc.example.net", "IRC.Example.NET", true},
		{"*.example.net", "irc.hub.example.net", true},
		{"*.example.net", "example.net", false},
		{"irc.?.net", "irc.a.net", true},
		{"irc.?.net", "irc.ab.net", false},
		{"*!*@*.host", "nick!user@a.b.host", true},
		{"*!*@*.host", "nick!user@a.b.hostx", false},
		{"n[ck]!*@*", "N{CK}!u@h", true},
		{"a*b*c", "aXXbYYc", true},
		{"a*b*c", "aXXbYY", false},
	}

	for _, test := range tests {
		if got := Match(test.Pattern, test.Value); got != test.Want {
			t.Errorf("Match(%q, %q) want: %v, got: %v",
				test.Pattern, test.Value, test.Want, got)
		}
	}
}

func TestMask_WildMatch(t *testing.T) {
	t.Parallel()

	m := NewMask("nick", "user", "host.com")
	if !m.Match("*!user@*") {
		t.Error("should match")
	}
	if WildMask("*!other@*").Match(m) {
		t.Error("should not match")
	}
}
