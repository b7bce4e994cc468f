package registrar

import (
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/modes"
)

type modeKey struct {
	table *modes.Table
	ch    byte
}

// holder stores registrations to an underlying Registrar and has the ability
// to unregister everything.
type holder struct {
	registrar Interface
	owner     string

	commands map[*dispatch.Command]struct{}
	modes    map[modeKey]struct{}
}

func newHolder(registrar Interface, owner string) *holder {
	h := &holder{
		registrar: registrar,
		owner:     owner,
	}
	h.initMaps()

	return h
}

func (h *holder) initMaps() {
	h.commands = make(map[*dispatch.Command]struct{})
	h.modes = make(map[modeKey]struct{})
}

// RegisterCommand tags the command with our owner and remembers it.
func (h *holder) RegisterCommand(c *dispatch.Command) error {
	c.Owner = h.owner
	if err := h.registrar.RegisterCommand(c); err != nil {
		return err
	}

	h.commands[c] = struct{}{}
	return nil
}

// UnregisterCommand and discard our record of its registration.
func (h *holder) UnregisterCommand(c *dispatch.Command) bool {
	ok := h.registrar.UnregisterCommand(c)
	delete(h.commands, c)
	return ok
}

// RegisterMode and save the character for later.
func (h *holder) RegisterMode(t *modes.Table, info modes.Info) (*modes.Info, error) {
	registered, err := h.registrar.RegisterMode(t, info)
	if err != nil {
		return nil, err
	}

	h.modes[modeKey{table: t, ch: info.Char}] = struct{}{}
	return registered, nil
}

// UnregisterMode and discard our record of its registration.
func (h *holder) UnregisterMode(t *modes.Table, ch byte) bool {
	ok := h.registrar.UnregisterMode(t, ch)
	delete(h.modes, modeKey{table: t, ch: ch})
	return ok
}

// count is the number of live registrations.
func (h *holder) count() int {
	return len(h.commands) + len(h.modes)
}

// unregisterAll applies unregister to all known registered things as well
// as empties the maps.
func (h *holder) unregisterAll() {
	for c := range h.commands {
		h.registrar.UnregisterCommand(c)
	}

	for k := range h.modes {
		h.registrar.UnregisterMode(k.table, k.ch)
	}

	h.initMaps()
}
