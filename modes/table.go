/*
Package modes implements the generic mode framework: a per-character table
of mode descriptors, the engine that applies a mode change string to a
target, and stackers that re-serialize the changes that took effect.

Channel modes, user modes, membership prefixes and list modes such as bans
are all descriptors in a Table. Modules populate tables at load time.
*/
package modes

import (
	"errors"
	"sort"
)

// Kind decides how the engine treats a mode character.
type Kind int

// The kinds of mode.
const (
	// ExternalMode hands everything to their Callback.
	ExternalMode Kind = iota
	// StatusMode toggles a bit on a member of the target.
	StatusMode
	// FlagMode toggles a bit on the target itself.
	FlagMode
	// ListMode adds and removes entries of a mask list.
	ListMode
)

// String for logging.
func (k Kind) String() string {
	switch k {
	case ExternalMode:
		return "external"
	case StatusMode:
		return "status"
	case FlagMode:
		return "flag"
	case ListMode:
		return "list"
	}
	return "unknown"
}

// Constraint flags limit who may change a mode and in which direction.
type Constraint uint8

// Constraints on descriptors.
const (
	OperOnly Constraint = 1 << iota
	NoReset
	NoSet

	NoChange = NoReset | NoSet
)

// MaxChar bounds the characters a table can hold, they are 7-bit ascii.
const MaxChar = 128

// ExternalFunc is invoked for external modes. arg is only meaningful when
// hasArg is true. It returns whether it consumed the argument.
type ExternalFunc func(p *Pass, on bool, arg string, hasArg bool) (consumed bool)

// Info describes one mode character.
type Info struct {
	Char        byte
	Kind        Kind
	Constraints Constraint

	// Bit is allocated by the table for flag and status modes.
	Bit uint64
	// Prefix is the membership prefix of a status mode, e.g. '@'.
	Prefix byte
	// Callback of an external mode.
	Callback ExternalFunc
}

var (
	// ErrBadChar is returned when registering a character the table cannot
	// hold.
	ErrBadChar = errors.New("modes: invalid mode character")
	// ErrCharInUse is returned when the character is already registered.
	ErrCharInUse = errors.New("modes: mode character already registered")
	// ErrNoBits is returned when the allocator for the mode's kind is
	// exhausted.
	ErrNoBits = errors.New("modes: no free mode bits")
	// ErrNoCallback is returned for external modes without a callback.
	ErrNoCallback = errors.New("modes: external mode without callback")
	// ErrBadKind is returned for unknown kinds.
	ErrBadKind = errors.New("modes: unknown mode kind")
)

// SyncFunc is called once at the end of every engine pass over a target.
type SyncFunc func(target Target)

// Table holds at most one descriptor per character. It is populated and
// depopulated by modules and otherwise only read.
type Table struct {
	// Name of the table for logging, "channel" or "user".
	Name string
	// MaxList bounds every list mode in this table, 0 means unbounded.
	MaxList int

	infos  [MaxChar]*Info
	flags  *Allocator
	status *Allocator
	sync   SyncFunc
}

// NewTable creates a table. flags and status are the allocators for the
// flag and status kinds, status may be nil for tables without membership.
func NewTable(name string, flags, status *Allocator, sync SyncFunc) *Table {
	return &Table{
		Name:   name,
		flags:  flags,
		status: status,
		sync:   sync,
	}
}

// Register a descriptor. For flag and status modes a bit is allocated and
// written to the returned Info. A failed registration leaves the table
// untouched.
func (t *Table) Register(info Info) (*Info, error) {
	ch := info.Char
	if ch == 0 || ch >= MaxChar || ch == '+' || ch == '-' || ch == ' ' {
		return nil, ErrBadChar
	}
	if t.infos[ch] != nil {
		return nil, ErrCharInUse
	}

	var alloc *Allocator
	switch info.Kind {
	case FlagMode:
		alloc = t.flags
	case StatusMode:
		alloc = t.status
	case ExternalMode:
		if info.Callback == nil {
			return nil, ErrNoCallback
		}
	case ListMode:
	default:
		return nil, ErrBadKind
	}

	info.Bit = 0
	if info.Kind == FlagMode || info.Kind == StatusMode {
		if alloc == nil {
			return nil, ErrNoBits
		}
		bit, ok := alloc.Allocate()
		if !ok {
			return nil, ErrNoBits
		}
		info.Bit = bit
	}

	stored := info
	t.infos[ch] = &stored
	return &stored, nil
}

// Unregister removes the descriptor for ch and frees its bit. It returns
// false if nothing was registered.
func (t *Table) Unregister(ch byte) bool {
	if ch >= MaxChar || t.infos[ch] == nil {
		return false
	}

	info := t.infos[ch]
	switch info.Kind {
	case FlagMode:
		t.flags.Release(info.Bit)
	case StatusMode:
		t.status.Release(info.Bit)
	}
	t.infos[ch] = nil
	return true
}

// Lookup the descriptor for ch, nil if there is none.
func (t *Table) Lookup(ch byte) *Info {
	if ch >= MaxChar {
		return nil
	}
	return t.infos[ch]
}

// Chars returns the registered characters of a kind in ascii order.
func (t *Table) Chars(kind Kind) string {
	var b []byte
	for ch := 0; ch < MaxChar; ch++ {
		if info := t.infos[ch]; info != nil && info.Kind == kind {
			b = append(b, byte(ch))
		}
	}
	return string(b)
}

// Statuses returns status descriptors ordered by bit, lowest first. The
// first registered status is the highest ranking prefix.
func (t *Table) Statuses() []*Info {
	var infos []*Info
	for _, info := range t.infos {
		if info != nil && info.Kind == StatusMode {
			infos = append(infos, info)
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Bit < infos[j].Bit
	})
	return infos
}

// FlagString renders the flag bits as "+abc", chars in ascii order.
func (t *Table) FlagString(bits uint64) string {
	b := []byte{'+'}
	for ch := 0; ch < MaxChar; ch++ {
		if info := t.infos[ch]; info != nil && info.Kind == FlagMode && bits&info.Bit != 0 {
			b = append(b, byte(ch))
		}
	}
	return string(b)
}

// Prefixes renders the membership prefixes of the status bits, highest
// ranking first.
func (t *Table) Prefixes(bits uint64) string {
	var b []byte
	for _, info := range t.Statuses() {
		if bits&info.Bit != 0 && info.Prefix != 0 {
			b = append(b, info.Prefix)
		}
	}
	return string(b)
}
