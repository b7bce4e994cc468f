package data

import (
	"strings"
)

// Server is a server on the network, including this one.
type Server struct {
	SID  string
	Name string
	Desc string
	// Hops is 0 for this server and 1 for directly linked servers.
	Hops int

	// Link toward the server, nil for this server.
	Link   *Link
	Parent *Server

	capabs map[string]bool
}

// IsLocal reports whether the server is directly connected.
func (s *Server) IsLocal() bool {
	return s.Hops == 1
}

// AddCapabs records a space separated CAPAB list.
func (s *Server) AddCapabs(list string) {
	if s.capabs == nil {
		s.capabs = make(map[string]bool)
	}
	for _, c := range strings.Fields(list) {
		s.capabs[strings.ToUpper(c)] = true
	}
}

// HasCapabs checks that every capability was announced.
func (s *Server) HasCapabs(capabs ...string) bool {
	for _, c := range capabs {
		if !s.capabs[c] {
			return false
		}
	}
	return true
}

// String returns the server name, or the sid while it has none.
func (s *Server) String() string {
	if len(s.Name) == 0 {
		return s.SID
	}
	return s.Name
}
