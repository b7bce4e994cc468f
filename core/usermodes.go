package core

import (
	"github.com/pkg/errors"

	"github.com/aarondl/uqircd/modes"
	"github.com/aarondl/uqircd/registrar"
)

func init() {
	registrar.Register(module("core/usermodes", "Built-in user modes", initUserModes))
}

// User modes: i invisible, w wallops, s server notices. o is only ever
// granted by OPER through a forced pass, users may drop it.
var userModes = []modes.Info{
	{Char: 'i', Kind: modes.FlagMode},
	{Char: 'w', Kind: modes.FlagMode},
	{Char: 's', Kind: modes.FlagMode},
	{Char: 'o', Kind: modes.FlagMode, Constraints: modes.NoSet},
}

func initUserModes(h *registrar.Handle) error {
	for _, info := range userModes {
		if _, err := h.RegisterMode(h.UserModes, info); err != nil {
			return errors.Wrapf(err, "usermodes: registering %c", info.Char)
		}
	}
	return nil
}
