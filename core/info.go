package core

import (
	"strings"

	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/registrar"
)

// versionComment follows the version in RPL_VERSION.
const versionComment = "TS6"

func init() {
	registrar.Register(module("core/info", "VERSION and MOTD", initInfo))
}

type infoCmd struct {
	h *registrar.Handle
}

func initInfo(h *registrar.Handle) error {
	i := &infoCmd{h: h}
	return registerCommands(h,
		&dispatch.Command{Name: irc.VERSION, Caps: dispatch.CapLocalUser, Rate: 1, Handler: dispatch.HandlerFunc(i.version)},
		&dispatch.Command{Name: irc.MOTD, Caps: dispatch.CapLocalUser, Rate: 1, Handler: dispatch.HandlerFunc(i.motd)},
	)
}

func (i *infoCmd) version(si *dispatch.SourceInfo, msg *irc.Message) error {
	si.Num(irc.RPL_VERSION, Version, si.State().Me.Name, versionComment)
	return nil
}

func (i *infoCmd) motd(si *dispatch.SourceInfo, msg *irc.Message) error {
	var text string
	if i.h.Config != nil {
		text = strings.TrimRight(i.h.Config.Server.MOTD, "\r\n")
	}
	if len(text) == 0 {
		si.Num(irc.ERR_NOMOTD)
		return nil
	}

	si.Num(irc.RPL_MOTDSTART, si.State().Me.Name)
	for _, line := range strings.Split(text, "\n") {
		si.Num(irc.RPL_MOTD, strings.TrimRight(line, "\r"))
	}
	si.Num(irc.RPL_ENDOFMOTD)
	return nil
}
