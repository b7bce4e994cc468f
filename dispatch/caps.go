package dispatch

import (
	"strings"
)

// Caps is a set of source capabilities. A SourceInfo starts with CapAll and
// is only ever narrowed; a Command declares the capabilities it accepts.
type Caps uint32

// Atomic capabilities.
const (
	// CapFirst is an unregistered link that has not declared what it is.
	CapFirst Caps = 1 << iota
	CapUnregisteredUser
	CapUnregisteredServer
	CapLocalUnprivileged
	CapLocalOper
	CapRemoteUnprivileged
	CapRemoteOper
	CapLocalServer
	CapRemoteServer
	// CapEncapUser and CapEncapServer are only used to look up ENCAP
	// subcommands, ordinary lookups never carry them.
	CapEncapUser
	CapEncapServer

	capEnd
)

// Composite capabilities.
const (
	CapLocalUser    = CapLocalUnprivileged | CapLocalOper
	CapRemoteUser   = CapRemoteUnprivileged | CapRemoteOper
	CapUser         = CapLocalUser | CapRemoteUser
	CapUnprivileged = CapLocalUnprivileged | CapRemoteUnprivileged
	CapOper         = CapLocalOper | CapRemoteOper
	CapServer       = CapLocalServer | CapRemoteServer
	CapUnregistered = CapFirst | CapUnregisteredUser | CapUnregisteredServer
	CapEncap        = CapEncapUser | CapEncapServer

	CapAll = capEnd - 1
)

var capNames = []string{
	"first", "unregistered-user", "unregistered-server",
	"local-unprivileged", "local-oper", "remote-unprivileged", "remote-oper",
	"local-server", "remote-server", "encap-user", "encap-server",
}

// Has reports whether every capability in o is present.
func (c Caps) Has(o Caps) bool {
	return c&o == o
}

// Intersects reports whether c and o share any capability.
func (c Caps) Intersects(o Caps) bool {
	return c&o != 0
}

// Narrow returns the intersection.
func (c Caps) Narrow(o Caps) Caps {
	return c & o
}

// Without returns c with o removed.
func (c Caps) Without(o Caps) Caps {
	return c &^ o
}

// String lists the atomic capabilities for logging.
func (c Caps) String() string {
	if c == 0 {
		return "none"
	}

	var names []string
	for i, name := range capNames {
		if c&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}
