package dispatch

import (
	"fmt"
	"strings"

	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/irc"
)

const (
	errFmtBadLink  = "dispatch: cannot resolve source on %v link %v"
	errFmtBothIDs  = "dispatch: source resolved to both user %v and server %v"
	errFmtNotFirst = "dispatch: %v requires a first contact source, have %v"
)

// SourceInfo is who sent the line being dispatched and what they may do.
// It is built fresh for every dispatch pass.
type SourceInfo struct {
	// Source is the link the line arrived on.
	Source *data.Link
	// Link leads toward the resolved entity, it is Source for anything
	// local.
	Link *data.Link
	// Local is the entity's own connection, nil when it is remote.
	Local *data.Link

	// At most one of User and Server is set.
	User   *data.User
	Server *data.Server

	// Caps only ever shrinks during resolution.
	Caps Caps

	Name string
	ID   string

	state *data.State
}

// narrow removes every capability not in c.
func (si *SourceInfo) narrow(c Caps) {
	si.Caps = si.Caps.Narrow(c)
}

// State the source was resolved against.
func (si *SourceInfo) State() *data.State {
	return si.state
}

// Privileged implements modes.Setter.
func (si *SourceInfo) Privileged() bool {
	return si.Caps.Intersects(CapOper)
}

// SetterName implements modes.Setter, users are nick!ident@host.
func (si *SourceInfo) SetterName() string {
	if si.User != nil {
		return string(si.User.Mask())
	}
	return si.Name
}

// IsUser reports a user source, including unresolved remote users.
func (si *SourceInfo) IsUser() bool {
	return si.User != nil || si.Caps.Intersects(CapUser|CapUnregisteredUser)
}

// IsServer reports a server source, including unresolved remote servers.
func (si *SourceInfo) IsServer() bool {
	return si.Server != nil || si.Caps.Intersects(CapServer|CapUnregisteredServer)
}

// Num sends a numeric reply toward the source. Remote users are addressed
// by id.
func (si *SourceInfo) Num(num int, args ...interface{}) {
	target := si.Name
	if si.User != nil && !si.User.IsLocal() {
		target = si.ID
	}

	l := si.Link
	if l == nil {
		l = si.Source
	}
	l.Send(irc.Numeric(si.state.Me.Name, target, num, args...))
}

// RepeatAsUser turns the first contact link into a prospective local user
// and asks the dispatcher to run the line again.
func (si *SourceInfo) RepeatAsUser(msg *irc.Message) *data.User {
	if !si.Caps.Has(CapFirst) {
		panic(fmt.Sprintf(errFmtNotFirst, "RepeatAsUser", si.Caps))
	}
	msg.Repeat = true
	return si.state.NewLocalUser(si.Source)
}

// RepeatAsServer turns the first contact link into a pending server and
// asks the dispatcher to run the line again.
func (si *SourceInfo) RepeatAsServer(msg *irc.Message) *data.Server {
	if !si.Caps.Has(CapFirst) {
		panic(fmt.Sprintf(errFmtNotFirst, "RepeatAsServer", si.Caps))
	}
	msg.Repeat = true
	return si.state.NewPendingServer(si.Source)
}

// setUser records a user identity and narrows to its locality.
func (si *SourceInfo) setUser(u *data.User) {
	si.User = u
	si.Link = u.Link
	si.Name = u.Nick
	si.ID = u.UID
	if len(si.Name) == 0 {
		si.Name = "*"
	}

	if u.IsLocal() {
		si.Local = u.Link
		si.narrow(CapLocalUser)
	} else {
		si.narrow(CapRemoteUser)
	}
}

// setServer records a server identity and narrows to its locality.
func (si *SourceInfo) setServer(sv *data.Server) {
	si.Server = sv
	si.Link = sv.Link
	si.Name = sv.Name
	si.ID = sv.SID

	if sv.IsLocal() {
		si.Local = sv.Link
		si.narrow(CapLocalServer)
	} else {
		si.narrow(CapRemoteServer)
	}
}

// Resolve builds the SourceInfo of a line from the link it arrived on and
// its source token.
func Resolve(state *data.State, link *data.Link, source string) *SourceInfo {
	si := &SourceInfo{
		Source: link,
		Link:   link,
		Caps:   CapAll,
		Name:   "*",
		state:  state,
	}

	if !link.Registered {
		resolveUnregistered(si, link)
		return si
	}

	switch link.Type {
	case data.LinkUser:
		si.setUser(link.User)
	case data.LinkServer:
		if len(source) == 0 {
			si.setServer(link.Server)
		} else {
			resolveRemote(si, source)
		}
	default:
		panic(fmt.Sprintf(errFmtBadLink, "registered", link.Type))
	}

	if si.User != nil && si.Server != nil {
		panic(fmt.Sprintf(errFmtBothIDs, si.User.UID, si.Server.SID))
	}

	if si.User != nil {
		if si.User.Oper {
			si.narrow(CapOper)
		} else {
			si.narrow(CapUnprivileged)
		}
	}

	return si
}

func resolveUnregistered(si *SourceInfo, link *data.Link) {
	switch link.Type {
	case data.LinkNone:
		si.narrow(CapFirst)
	case data.LinkUser:
		si.narrow(CapUnregisteredUser)
		si.User = link.User
		si.ID = link.User.UID
		if len(link.User.Nick) > 0 {
			si.Name = link.User.Nick
		}
		si.Local = link
	case data.LinkServer:
		si.narrow(CapUnregisteredServer)
		si.Server = link.Server
		si.ID = link.Server.SID
		si.Local = link
	default:
		panic(fmt.Sprintf(errFmtBadLink, "unregistered", link.Type))
	}
}

// resolveRemote tries the id directories, then the name directories, then
// accepts an unknown but well formed id. A token that fails all three
// leaves the source with no capabilities.
func resolveRemote(si *SourceInfo, source string) {
	state := si.state
	idShaped := isDigit(source[0])

	if idShaped {
		switch len(source) {
		case data.SIDLength:
			if sv := state.ServerBySID(source); sv != nil {
				si.setServer(sv)
				return
			}
		case data.UIDLength:
			if u := state.UserByUID(source); u != nil {
				si.setUser(u)
				return
			}
		}
	}

	if strings.IndexByte(source, '.') >= 0 {
		if sv := state.ServerByName(source); sv != nil {
			si.setServer(sv)
			return
		}
	} else if u := state.UserByNick(source); u != nil {
		si.setUser(u)
		return
	}

	if idShaped {
		switch len(source) {
		case data.UIDLength:
			si.narrow(CapRemoteUnprivileged)
			si.Name, si.ID = source, source
			return
		case data.SIDLength:
			si.narrow(CapRemoteServer)
			si.Name, si.ID = source, source
			return
		}
	}

	si.narrow(0)
	si.Name = source
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
