/*
Package registrar loads modules. A module is a named descriptor carrying a
command table and init/deinit hooks. Everything a module registers is
recorded against its name so that unloading it removes exactly its
commands and mode characters.
*/
package registrar

import (
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/modes"
)

// Interface is the operations performable by a registrar.
type Interface interface {
	RegisterCommand(c *dispatch.Command) error
	UnregisterCommand(c *dispatch.Command) bool

	RegisterMode(t *modes.Table, info modes.Info) (*modes.Info, error)
	UnregisterMode(t *modes.Table, ch byte) bool
}

// Registrar is the Interface backed by a command registry. Mode tables are
// passed in with every call since a server has several of them.
type Registrar struct {
	Registry *dispatch.Registry
}

// New creates a registrar over reg.
func New(reg *dispatch.Registry) *Registrar {
	return &Registrar{Registry: reg}
}

// RegisterCommand implements Interface.
func (r *Registrar) RegisterCommand(c *dispatch.Command) error {
	return r.Registry.Register(c)
}

// UnregisterCommand implements Interface.
func (r *Registrar) UnregisterCommand(c *dispatch.Command) bool {
	return r.Registry.Unregister(c)
}

// RegisterMode implements Interface.
func (r *Registrar) RegisterMode(t *modes.Table, info modes.Info) (*modes.Info, error) {
	return t.Register(info)
}

// UnregisterMode implements Interface.
func (r *Registrar) UnregisterMode(t *modes.Table, ch byte) bool {
	return t.Unregister(ch)
}
