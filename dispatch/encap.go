package dispatch

import (
	"strings"
	"time"

	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/irc"
)

// encap handles ENCAP mask subcommand [args...]. The subcommand runs here
// when the mask matches this server, and the original line always goes on
// to every other server matching the mask.
func (d *Dispatcher) encap(si *SourceInfo, msg *irc.Message) {
	if len(msg.Args) < 2 {
		d.Metrics.failed(FailArgs)
		si.Num(irc.ERR_NEEDMOREPARAMS, irc.ENCAP)
		return
	}

	mask, sub := msg.Args[0], msg.Args[1]
	if mask == "*" || irc.Match(mask, d.State.Me.Name) {
		d.encapLocal(si, msg, sub)
	}

	d.Sender.SendToServersMatching(si.Source, mask, msg.Line)
}

// encapLocal runs an encapsulated subcommand. Subcommands are registered
// under CapEncapUser or CapEncapServer and never match ordinary lookups.
func (d *Dispatcher) encapLocal(si *SourceInfo, msg *irc.Message, sub string) {
	caps := CapEncapServer
	if si.IsUser() {
		caps = CapEncapUser
	}

	cmd, _ := d.Registry.Lookup(sub, caps)
	if cmd == nil {
		d.Logger.Debug("unhandled encap", "source", si.Name, "subcommand", sub)
		return
	}

	subMsg := &irc.Message{
		Source:  msg.Source,
		Command: strings.ToUpper(sub),
		Args:    msg.Args[2:],
		Line:    msg.Line,
	}

	if len(subMsg.Args) < cmd.NArgs {
		d.Metrics.failed(FailArgs)
		d.Logger.Warn("not enough parameters", "source", si.Name,
			"command", "ENCAP "+subMsg.Command, "have", len(subMsg.Args), "want", cmd.NArgs)
		return
	}

	start := time.Now()
	err := cmd.Handler.Handle(si, subMsg)
	elapsed := time.Since(start)

	cmd.Runs++
	cmd.Elapsed += elapsed
	d.Metrics.invoked(cmd.Name, elapsed)

	if err != nil {
		d.Logger.Error("encap handler failed", "subcommand", cmd.Name,
			"source", si.Name, "err", err)
	}
}

var _ Sender = (*data.State)(nil)
