package data

import (
	"strings"

	"github.com/aarondl/uqircd/irc"
)

// Route resolves an id or a name to the link leading to that entity.
// Ids start with a digit and are 3 (server) or 9 (user) characters, names
// containing a dot are server names, anything else a nickname. It returns
// nil for unknown entities and for this server.
func (s *State) Route(target string) *Link {
	if len(target) > 0 && isDigit(target[0]) {
		switch len(target) {
		case SIDLength:
			if sv := s.servers[target]; sv != nil {
				return sv.Link
			}
			return nil
		case UIDLength:
			if u := s.users[target]; u != nil {
				return u.Link
			}
			return nil
		}
	}

	if strings.IndexByte(target, '.') >= 0 {
		if sv := s.ServerByName(target); sv != nil {
			return sv.Link
		}
		return nil
	}

	if u := s.UserByNick(target); u != nil {
		return u.Link
	}
	return nil
}

// SendTo queues a line on a single link.
func (s *State) SendTo(l *Link, line string) {
	if l != nil {
		l.Send(line)
	}
}

// SendToServers queues a line on every registered server link except
// exclude.
func (s *State) SendToServers(exclude *Link, line string) {
	for l := range s.links {
		if l != exclude && l.Type == LinkServer && l.Registered {
			l.Send(line)
		}
	}
}

// SendToServersMatching queues a line once per server link that leads to
// a server whose name matches mask, never on exclude.
func (s *State) SendToServersMatching(exclude *Link, mask, line string) {
	sent := make(map[*Link]bool)
	for _, sv := range s.servers {
		l := sv.Link
		if sv == s.Me || l == nil || l == exclude || sent[l] || !l.Registered {
			continue
		}
		if !irc.Match(mask, sv.Name) {
			continue
		}
		sent[l] = true
		l.Send(line)
	}
}

// SendToChannel queues a line for every local member of c except exclude.
func (s *State) SendToChannel(c *Channel, exclude *User, line string) {
	for u := range c.Members {
		if u != exclude && u.IsLocal() {
			u.Link.Send(line)
		}
	}
}

// SendToChannelServers queues a line once on every server link that has
// members of c behind it, except exclude.
func (s *State) SendToChannelServers(c *Channel, exclude *Link, line string) {
	sent := make(map[*Link]bool)
	for u := range c.Members {
		if u.IsLocal() || u.Link == nil || u.Link == exclude || sent[u.Link] {
			continue
		}
		sent[u.Link] = true
		u.Link.Send(line)
	}
}
