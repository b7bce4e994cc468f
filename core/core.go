/*
Package core contains the built-in modules of the server: the channel and
user mode sets and the commands needed to register connections, link
servers and move users around channels.

Every module registers itself with the registrar when this package is
imported. Loading the "core" module loads all of them.
*/
package core

import (
	"time"

	"github.com/pkg/errors"

	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/registrar"
)

// Version is reported to clients on registration.
const Version = "uqircd-1.0"

const author = "uqircd"

// Builtin lists the modules loaded by the core module, in load order.
var Builtin = []string{
	"core/chanmodes",
	"core/usermodes",
	"core/register",
	"core/ts6init",
	"core/ping",
	"core/quit",
	"core/channel",
	"core/message",
	"core/mode",
	"core/oper",
	"core/tb",
	"core/numeric",
	"core/realhost",
	"core/login",
	"core/whois",
	"core/info",
}

func init() {
	registrar.Register(&registrar.Module{
		Name:        "core",
		Author:      author,
		Description: "Loads every built-in module",
		ABIMajor:    registrar.ABIMajor,
		ABIMinor:    registrar.ABIMinor,
		Permanent:   true,
		Init: func(h *registrar.Handle) error {
			for _, name := range Builtin {
				if _, err := h.Loader.FindOrLoad(name); err != nil {
					return errors.Wrapf(err, "core: loading %s", name)
				}
			}
			return nil
		},
	})
}

// module fills in the fields every built-in module shares.
func module(name, desc string, init func(h *registrar.Handle) error) *registrar.Module {
	return &registrar.Module{
		Name:        name,
		Author:      author,
		Description: desc,
		ABIMajor:    registrar.ABIMajor,
		ABIMinor:    registrar.ABIMinor,
		Init:        init,
	}
}

// registerCommands registers cmds in order and stops at the first failure,
// the loader removes whatever did get registered.
func registerCommands(h *registrar.Handle, cmds ...*dispatch.Command) error {
	for _, c := range cmds {
		if err := h.RegisterCommand(c); err != nil {
			return err
		}
	}
	return nil
}

// now is the unix time used for timestamps.
func now() int64 {
	return time.Now().Unix()
}
