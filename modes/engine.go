package modes

import (
	"errors"
	"time"
)

// Err is the set of problems met during a pass. Errors accumulate, they
// never stop the scan.
type Err uint

// Error bits reported by a pass.
const (
	ErrUnknownChar Err = 1 << iota
	ErrNoAccess
	ErrNotOper
	ErrMissingParam
	ErrListFull
	ErrNoSuchTarget
	ErrNotMember
)

// Has checks for any of the bits in e.
func (e Err) Has(bits Err) bool {
	return e&bits != 0
}

var (
	// ErrNoSuchMember is returned by StatusTarget.Member when the name
	// does not resolve to anyone.
	ErrNoSuchMember = errors.New("modes: no such target")
	// ErrNotAMember is returned by StatusTarget.Member when the name
	// resolves but is not a member of the target.
	ErrNotAMember = errors.New("modes: not a member of the target")
)

// Target is the thing modes are changed on. The engine never looks inside,
// it only uses these accessors. Set and Reset return whether the field
// changed.
type Target interface {
	Flags() uint64
	SetFlags(bits uint64) bool
	ResetFlags(bits uint64) bool
}

// Member of a StatusTarget.
type Member interface {
	// MemberName is shown to clients.
	MemberName() string
	// MemberID is sent to servers.
	MemberID() string
}

// StatusTarget is a Target with members that carry status bits.
type StatusTarget interface {
	Target

	Member(name string) (Member, error)
	SetStatus(m Member, bits uint64) bool
	ResetStatus(m Member, bits uint64) bool
}

// ListTarget is a Target that stores list modes.
type ListTarget interface {
	Target

	// List returns the storage for ch, nil if the target has none.
	List(ch byte) *List
}

// Setter is the acting identity of a pass.
type Setter interface {
	// Privileged reports operator status.
	Privileged() bool
	// SetterName is recorded on list entries.
	SetterName() string
}

// Pass is a single application of a mode change string to one target. It
// is created by the caller, run once and then inspected.
type Pass struct {
	Table   *Table
	Target  Target
	Setter  Setter
	Stacker Stacker

	// Force skips access checks and constraints, used for changes that
	// come from servers.
	Force bool
	// Access decides if Setter may change access controlled modes on
	// Target. It is evaluated at most once per pass. A nil Access denies.
	Access func() bool
	// Now stamps list entries, time.Now when nil.
	Now func() time.Time

	// Errors accumulated during the pass.
	Errors Err
	// Unknown characters in the order they were seen.
	Unknown []byte
	// Missing holds the names status modes failed to resolve.
	Missing []string
	// Full holds the list characters that overflowed.
	Full []byte
	// Requests holds list modes given without an argument, the caller is
	// expected to enumerate them.
	Requests []*Info

	args   []string
	next   int
	access int8
}

// HasAccess evaluates the access predicate once and caches it. A denial
// records ErrNoAccess.
func (p *Pass) HasAccess() bool {
	if p.Force {
		return true
	}

	if p.access == 0 {
		p.access = -1
		if p.Access != nil && p.Access() {
			p.access = 1
		}
	}
	if p.access < 0 {
		p.Errors |= ErrNoAccess
		return false
	}
	return true
}

// IsOper reports whether the setter is privileged, a forced pass always is.
func (p *Pass) IsOper() bool {
	return p.Force || (p.Setter != nil && p.Setter.Privileged())
}

// Put forwards to the stacker if there is one. External callbacks use this.
func (p *Pass) Put(on bool, ch byte, param string) {
	if p.Stacker != nil {
		p.Stacker.PutExternal(on, ch, param)
	}
}

// nextArg returns the next unconsumed argument without consuming it.
func (p *Pass) nextArg() (string, bool) {
	if p.next >= len(p.args) {
		return "", false
	}
	return p.args[p.next], true
}

// Run scans modes left to right applying each character to the target.
// Arguments are pulled from args as characters need them. It returns the
// accumulated error bits, also available in p.Errors.
func (p *Pass) Run(modes string, args ...string) Err {
	if p.Table == nil || p.Target == nil {
		panic("modes: pass without table or target")
	}

	p.args = args
	p.next = 0
	on := true

	for i := 0; i < len(modes); i++ {
		ch := modes[i]
		switch ch {
		case '+':
			on = true
			continue
		case '-':
			on = false
			continue
		}

		info := p.Table.Lookup(ch)
		if info == nil {
			p.Errors |= ErrUnknownChar
			p.Unknown = append(p.Unknown, ch)
			continue
		}

		switch info.Kind {
		case FlagMode:
			p.flag(info, on)
		case StatusMode:
			p.status(info, on)
		case ListMode:
			p.list(info, on)
		case ExternalMode:
			arg, ok := p.nextArg()
			if info.Callback(p, on, arg, ok) && ok {
				p.next++
			}
		}
	}

	if p.Table.sync != nil {
		p.Table.sync(p.Target)
	}

	return p.Errors
}

// allowed checks the constraint flags of a descriptor.
func (p *Pass) allowed(info *Info, on bool) bool {
	if p.Force {
		return true
	}
	if on && info.Constraints&NoSet != 0 {
		return false
	}
	if !on && info.Constraints&NoReset != 0 {
		return false
	}
	if info.Constraints&OperOnly != 0 && !p.IsOper() {
		p.Errors |= ErrNotOper
		return false
	}
	return true
}

func (p *Pass) flag(info *Info, on bool) {
	if !p.allowed(info, on) || !p.HasAccess() {
		return
	}

	var changed bool
	if on {
		changed = p.Target.SetFlags(info.Bit)
	} else {
		changed = p.Target.ResetFlags(info.Bit)
	}

	if changed && p.Stacker != nil {
		p.Stacker.PutFlag(on, info.Char)
	}
}

func (p *Pass) status(info *Info, on bool) {
	name, ok := p.nextArg()
	if !ok {
		p.Errors |= ErrMissingParam
		return
	}
	p.next++

	if !p.allowed(info, on) || !p.HasAccess() {
		return
	}

	st, ok := p.Target.(StatusTarget)
	if !ok {
		return
	}

	m, err := st.Member(name)
	if err != nil {
		if err == ErrNotAMember {
			p.Errors |= ErrNotMember
		} else {
			p.Errors |= ErrNoSuchTarget
		}
		p.Missing = append(p.Missing, name)
		return
	}

	var changed bool
	if on {
		changed = st.SetStatus(m, info.Bit)
	} else {
		changed = st.ResetStatus(m, info.Bit)
	}

	if changed && p.Stacker != nil {
		p.Stacker.PutStatus(on, info.Char, m)
	}
}

func (p *Pass) list(info *Info, on bool) {
	mask, ok := p.nextArg()
	if !ok {
		for _, r := range p.Requests {
			if r == info {
				return
			}
		}
		p.Requests = append(p.Requests, info)
		return
	}
	p.next++

	if !p.allowed(info, on) || !p.HasAccess() {
		return
	}

	lt, ok := p.Target.(ListTarget)
	if !ok {
		return
	}
	list := lt.List(info.Char)
	if list == nil {
		return
	}

	if !on {
		if list.Remove(mask) && p.Stacker != nil {
			p.Stacker.PutListEntry(false, info.Char, mask)
		}
		return
	}

	if list.Index(mask) >= 0 {
		return
	}
	if p.Table.MaxList > 0 && list.Len() >= p.Table.MaxList {
		p.Errors |= ErrListFull
		p.Full = append(p.Full, info.Char)
		return
	}

	setter := ""
	if p.Setter != nil {
		setter = p.Setter.SetterName()
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	list.Add(Entry{Mask: mask, Setter: setter, Time: now()})

	if p.Stacker != nil {
		p.Stacker.PutListEntry(true, info.Char, mask)
	}
}
