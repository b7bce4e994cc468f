/*
Package data holds the network state the dispatcher and the mode engine
operate on: links, users, servers, channels and their memberships, plus the
directories used to look them up by id or by name.

Everything here is owned by the single dispatch goroutine and is not safe
for concurrent use.
*/
package data

import (
	"errors"
	"strings"

	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/modes"
)

const (
	// UIDLength and SIDLength are the fixed widths of TS6 ids.
	UIDLength = 9
	SIDLength = 3

	uidAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	// ErrNickInUse is returned when a nickname is already taken.
	ErrNickInUse = errors.New("data: nickname in use")
	// ErrServerExists is returned when a sid or server name is taken.
	ErrServerExists = errors.New("data: server already exists")
)

// State is the main data container.
type State struct {
	// Me is this server.
	Me *Server

	users    map[string]*User
	nicks    map[string]*User
	servers  map[string]*Server
	names    map[string]*Server
	channels map[string]*Channel
	links    map[*Link]struct{}

	uidSeq uint64
}

// NewState creates the state of a server with no users or peers.
func NewState(name, sid, desc string) *State {
	s := &State{
		Me: &Server{SID: sid, Name: name, Desc: desc},

		users:    make(map[string]*User),
		nicks:    make(map[string]*User),
		servers:  make(map[string]*Server),
		names:    make(map[string]*Server),
		channels: make(map[string]*Channel),
		links:    make(map[*Link]struct{}),
	}
	s.servers[sid] = s.Me
	s.names[irc.Fold(name)] = s.Me
	return s
}

// AddLink records a new connection.
func (s *State) AddLink(l *Link) {
	s.links[l] = struct{}{}
}

// RemoveLink forgets a connection and whatever was registered on it.
func (s *State) RemoveLink(l *Link) {
	delete(s.links, l)

	switch {
	case l.User != nil:
		s.RemoveUser(l.User)
	case l.Server != nil:
		s.RemoveServer(l.Server)
	}
}

// Links returns the number of connections.
func (s *State) Links() int {
	return len(s.links)
}

// nextUID hands out the next uid of this server.
func (s *State) nextUID() string {
	n := s.uidSeq
	s.uidSeq++

	var b [UIDLength - SIDLength]byte
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = uidAlphabet[n%36]
		n /= 36
	}
	return s.Me.SID + string(b[:])
}

// NewLocalUser turns an unregistered link into a prospective local user.
func (s *State) NewLocalUser(l *Link) *User {
	u := &User{
		UID:      s.nextUID(),
		Host:     l.IP,
		RealHost: l.IP,
		IP:       l.IP,
		Link:     l,
		Server:   s.Me,
		local:    true,
		Channels: make(map[*Channel]*ChanUser),
	}
	l.Type = LinkUser
	l.User = u
	s.users[u.UID] = u
	return u
}

// AddRemoteUser records a user introduced by a peer server.
func (s *State) AddRemoteUser(u *User) error {
	if u.Channels == nil {
		u.Channels = make(map[*Channel]*ChanUser)
	}
	if u.Server != nil {
		u.Link = u.Server.Link
	}
	if _, ok := s.users[u.UID]; ok {
		return ErrNickInUse
	}
	if len(u.Nick) > 0 {
		if _, ok := s.nicks[irc.Fold(u.Nick)]; ok {
			return ErrNickInUse
		}
		s.nicks[irc.Fold(u.Nick)] = u
	}
	s.users[u.UID] = u
	return nil
}

// SetNick changes a user's nickname, changing case of one's own nickname
// is allowed.
func (s *State) SetNick(u *User, nick string) error {
	key := irc.Fold(nick)
	if other, ok := s.nicks[key]; ok && other != u {
		return ErrNickInUse
	}

	if len(u.Nick) > 0 {
		delete(s.nicks, irc.Fold(u.Nick))
	}
	u.Nick = nick
	s.nicks[key] = u
	return nil
}

// RemoveUser removes a user from every directory and channel.
func (s *State) RemoveUser(u *User) {
	for c := range u.Channels {
		s.Part(c, u)
	}
	delete(s.users, u.UID)
	if len(u.Nick) > 0 && s.nicks[irc.Fold(u.Nick)] == u {
		delete(s.nicks, irc.Fold(u.Nick))
	}
}

// UserByUID looks up a user by id.
func (s *State) UserByUID(uid string) *User {
	return s.users[uid]
}

// UserByNick looks up a user by nickname.
func (s *State) UserByNick(nick string) *User {
	return s.nicks[irc.Fold(nick)]
}

// UserByNickOrUID tries the uid directory for id shaped names and the
// nickname directory otherwise.
func (s *State) UserByNickOrUID(name string) *User {
	if len(name) == UIDLength && isDigit(name[0]) {
		if u := s.users[name]; u != nil {
			return u
		}
	}
	return s.UserByNick(name)
}

// EachUser calls fn for every user, registered or not.
func (s *State) EachUser(fn func(*User)) {
	for _, u := range s.users {
		fn(u)
	}
}

// Users returns the number of users with a nickname.
func (s *State) Users() int {
	return len(s.nicks)
}

// NewPendingServer turns an unregistered link into a prospective server.
// It is not entered in any directory until AddServer.
func (s *State) NewPendingServer(l *Link) *Server {
	sv := &Server{
		Hops:   1,
		Link:   l,
		Parent: s.Me,
	}
	l.Type = LinkServer
	l.Server = sv
	return sv
}

// AddServer enters a server in the sid and name directories.
func (s *State) AddServer(sv *Server) error {
	if _, ok := s.servers[sv.SID]; ok {
		return ErrServerExists
	}
	if _, ok := s.names[irc.Fold(sv.Name)]; ok {
		return ErrServerExists
	}
	s.servers[sv.SID] = sv
	s.names[irc.Fold(sv.Name)] = sv
	return nil
}

// RemoveServer removes a server, every server behind it and all their
// users.
func (s *State) RemoveServer(sv *Server) {
	if sv == s.Me {
		return
	}

	for _, other := range s.servers {
		if other.Parent == sv {
			s.RemoveServer(other)
		}
	}
	for _, u := range s.users {
		if u.Server == sv {
			s.RemoveUser(u)
		}
	}

	if s.servers[sv.SID] == sv {
		delete(s.servers, sv.SID)
	}
	if s.names[irc.Fold(sv.Name)] == sv {
		delete(s.names, irc.Fold(sv.Name))
	}
}

// ServerBySID looks up a server by id.
func (s *State) ServerBySID(sid string) *Server {
	return s.servers[sid]
}

// ServerByName looks up a server by name.
func (s *State) ServerByName(name string) *Server {
	return s.names[irc.Fold(name)]
}

// EachServer calls fn for every known server including this one.
func (s *State) EachServer(fn func(*Server)) {
	for _, sv := range s.servers {
		fn(sv)
	}
}

// Channel looks up a channel by name.
func (s *State) Channel(name string) *Channel {
	return s.channels[irc.Fold(name)]
}

// NewChannel creates a channel, the caller applies default modes.
func (s *State) NewChannel(name string, ts int64) *Channel {
	c := &Channel{
		Name:    name,
		TS:      ts,
		Lists:   make(map[byte]*modes.List),
		Members: make(map[*User]*ChanUser),
		state:   s,
	}
	c.Cookie.Inc()
	s.channels[irc.Fold(name)] = c
	return c
}

// Join adds a membership, returning the existing one if already joined.
func (s *State) Join(c *Channel, u *User) *ChanUser {
	if cu, ok := c.Members[u]; ok {
		return cu
	}
	cu := &ChanUser{Channel: c, User: u}
	c.Members[u] = cu
	u.Channels[c] = cu
	// Channel extbans elsewhere may now match.
	u.InvalidateMemberships()
	return cu
}

// Part removes a membership. Channels are destroyed when their last
// member leaves.
func (s *State) Part(c *Channel, u *User) {
	delete(c.Members, u)
	delete(u.Channels, c)
	u.InvalidateMemberships()
	if len(c.Members) == 0 {
		delete(s.channels, irc.Fold(c.Name))
	}
}

// EachChannel calls fn for every channel.
func (s *State) EachChannel(fn func(*Channel)) {
	for _, c := range s.channels {
		fn(c)
	}
}

// Channels returns the number of channels.
func (s *State) Channels() int {
	return len(s.channels)
}

// IsChannelName checks the channel prefix.
func IsChannelName(name string) bool {
	return len(name) > 1 && strings.IndexByte("#&", name[0]) >= 0
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
