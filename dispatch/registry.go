package dispatch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aarondl/uqircd/irc"
)

const (
	// errFmtOverlap is returned when a command's mask intersects another
	// command of the same name.
	errFmtOverlap = "registry: overlap in source mask of %v (%v)"
)

var (
	// ErrDuplicate is returned when the same command is registered twice.
	ErrDuplicate = errors.New("registry: command already registered")
	// ErrInvalidCommand is returned for commands missing a name, a mask or
	// a handler.
	ErrInvalidCommand = errors.New("registry: command needs a name, a mask and a handler")
)

// Handler is the interface every command implements.
type Handler interface {
	Handle(si *SourceInfo, msg *irc.Message) error
}

// HandlerFunc implements the Handler interface
type HandlerFunc func(si *SourceInfo, msg *irc.Message) error

// Handle implements Handler interface
func (h HandlerFunc) Handle(si *SourceInfo, msg *irc.Message) error {
	return h(si, msg)
}

// Propagation is how a server originated command is relayed to the rest
// of the network after it ran.
type Propagation int

// Propagation policies.
const (
	PropNone Propagation = iota
	// PropBroadcast sends the line to every other server link.
	PropBroadcast
	// PropOneToOne sends the line toward the entity named in
	// Message.Propagate.
	PropOneToOne
	// PropHunted is reserved. Commands may declare it but nothing is
	// forwarded.
	PropHunted
)

// String for logging.
func (p Propagation) String() string {
	switch p {
	case PropBroadcast:
		return "broadcast"
	case PropOneToOne:
		return "one-to-one"
	case PropHunted:
		return "hunted"
	}
	return "none"
}

// Command is a handler registered under a name for a set of source
// capabilities.
type Command struct {
	Name string
	// Caps are the sources this handler accepts.
	Caps Caps
	// NArgs is the minimum argument count.
	NArgs int
	Handler     Handler
	Propagation Propagation
	// Rate is the credit cost of one invocation, 0 or less disables rate
	// limiting for the command.
	Rate int
	// Owner names the module that registered the command, used to
	// unregister everything a module registered when it unloads.
	Owner string

	// Runs and Elapsed count invocations and their total duration.
	Runs    uint64
	Elapsed time.Duration
}

// String for logging.
func (c *Command) String() string {
	return fmt.Sprintf("%s[%v]", c.Name, c.Caps)
}

// Registry maps command names to chains of commands with pairwise disjoint
// masks. It is populated during module load and read during dispatch.
type Registry struct {
	chains map[string][]*Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		chains: make(map[string][]*Command),
	}
}

// normalize upper cases a name and folds three digit numerics onto the
// numeric sentinel.
func normalize(name string) string {
	if irc.IsNumeric(name) {
		return irc.NumericCommand
	}
	return strings.ToUpper(name)
}

// Register adds c at the head of its name's chain. It fails without
// changing anything if c's mask intersects a command of the same name.
func (r *Registry) Register(c *Command) error {
	if c == nil || len(c.Name) == 0 || c.Caps == 0 || c.Handler == nil {
		return ErrInvalidCommand
	}

	name := normalize(c.Name)
	chain := r.chains[name]
	for _, other := range chain {
		if other == c {
			return ErrDuplicate
		}
		if other.Caps.Intersects(c.Caps) {
			return fmt.Errorf(errFmtOverlap, name, other.Caps&c.Caps)
		}
	}

	c.Runs = 0
	c.Elapsed = 0

	r.chains[name] = append([]*Command{c}, chain...)
	return nil
}

// Unregister removes c from its chain, the name disappears with its last
// command.
func (r *Registry) Unregister(c *Command) bool {
	name := normalize(c.Name)
	chain := r.chains[name]

	for i, other := range chain {
		if other != c {
			continue
		}

		if len(chain) == 1 {
			delete(r.chains, name)
		} else {
			r.chains[name] = append(chain[:i:i], chain[i+1:]...)
		}
		return true
	}

	return false
}

// UnregisterOwner removes every command registered by owner and returns
// how many there were.
func (r *Registry) UnregisterOwner(owner string) int {
	var doomed []*Command
	for _, chain := range r.chains {
		for _, c := range chain {
			if c.Owner == owner {
				doomed = append(doomed, c)
			}
		}
	}

	for _, c := range doomed {
		r.Unregister(c)
	}
	return len(doomed)
}

// Lookup finds the command for name that accepts any of caps. tested is the
// union of the masks of every command examined, which tells a caller why a
// lookup failed. A literal "###" finds nothing.
func (r *Registry) Lookup(name string, caps Caps) (cmd *Command, tested Caps) {
	if name == irc.NumericCommand {
		return nil, 0
	}

	for _, c := range r.chains[normalize(name)] {
		tested |= c.Caps
		if c.Caps.Intersects(caps) {
			return c, tested
		}
	}

	return nil, tested
}

// Commands returns every registered command sorted by name.
func (r *Registry) Commands() []*Command {
	var all []*Command
	for _, chain := range r.chains {
		all = append(all, chain...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Name < all[j].Name
	})
	return all
}
