/*
Package dispatch routes parsed lines to command handlers. Every line has its
source resolved into a SourceInfo whose capability set selects one handler
out of the chain registered under the command name. Server originated
commands are propagated to the rest of the network after they run.

The dispatcher is not safe for concurrent use, lines from every link are
funneled into a single goroutine that calls Invoke.
*/
package dispatch

import (
	"fmt"
	"time"

	"gopkg.in/inconshreveable/log15.v2"

	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/parse"
)

const (
	// maxPasses bounds how often one line is dispatched. Only a first
	// contact handler may ask for another pass.
	maxPasses = 2

	errFmtRepeatLoop = "dispatch: %v selected twice for one line, repeat does not converge"
)

// Sender is the broadcast fan out the dispatcher propagates through.
// *data.State implements it.
type Sender interface {
	Route(target string) *data.Link
	SendTo(l *data.Link, line string)
	SendToServers(exclude *data.Link, line string)
	SendToServersMatching(exclude *data.Link, mask, line string)
}

// Dispatcher runs lines against a registry.
type Dispatcher struct {
	Registry *Registry
	State    *data.State
	Sender   Sender
	// Limiter is optional, without it nothing is rate limited.
	Limiter *RateLimiter
	// Metrics is optional.
	Metrics *Metrics
	Logger  log15.Logger
	// MaxArgs bounds the arguments kept from a line.
	MaxArgs int
}

// NewDispatcher creates a dispatcher propagating through state.
func NewDispatcher(reg *Registry, state *data.State, logger log15.Logger) *Dispatcher {
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	return &Dispatcher{
		Registry: reg,
		State:    state,
		Sender:   state,
		Logger:   logger,
		MaxArgs:  parse.DefaultMaxArgs,
	}
}

// Invoke parses a raw line received on link and dispatches it. Lines that
// fail to parse are dropped without a reply.
func (d *Dispatcher) Invoke(link *data.Link, line string) {
	msg, err := parse.ParseMax(line, d.MaxArgs)
	if err != nil {
		d.Logger.Debug("dropped line", "link", link.ID, "err", err)
		return
	}

	d.Dispatch(link, msg)
}

// Dispatch runs an already parsed message. A handler may set msg.Repeat to
// have the line resolved and run once more under the identity it just
// established.
func (d *Dispatcher) Dispatch(link *data.Link, msg *irc.Message) {
	var last *Command

	for pass := 0; pass < maxPasses; pass++ {
		msg.Repeat = false
		msg.Propagate = ""

		si := Resolve(d.State, link, msg.Source)
		if si.Caps == 0 {
			d.Logger.Warn("unresolvable source", "link", link.ID,
				"source", msg.Source, "command", msg.Command)
		}

		if msg.Command == irc.ENCAP && link.Type == data.LinkServer && link.Registered {
			d.encap(si, msg)
			return
		}

		cmd, tested := d.Registry.Lookup(msg.Command, si.Caps)
		if cmd == nil {
			d.reportFailure(si, msg, tested)
			return
		}
		if cmd == last {
			panic(fmt.Sprintf(errFmtRepeatLoop, cmd))
		}
		last = cmd

		if !d.execute(si, cmd, msg) || !msg.Repeat {
			return
		}
	}

	d.Logger.Error("repeat requested on final pass", "link", link.ID, "command", msg.Command)
}

// execute checks the argument count and the rate limit, runs the handler
// and propagates its line. It returns false if the handler did not run or
// failed.
func (d *Dispatcher) execute(si *SourceInfo, cmd *Command, msg *irc.Message) bool {
	if len(msg.Args) < cmd.NArgs {
		d.Metrics.failed(FailArgs)
		if si.IsServer() {
			d.Logger.Warn("not enough parameters", "source", si.Name,
				"command", msg.Command, "have", len(msg.Args), "want", cmd.NArgs)
		} else {
			si.Num(irc.ERR_NEEDMOREPARAMS, msg.Command)
		}
		return false
	}

	if d.Limiter != nil && si.User != nil {
		if !d.Limiter.Allow(si.User.UID, cmd.Name, cmd.Rate) {
			d.Metrics.dropped(cmd.Name)
			d.Logger.Debug("rate limited", "user", si.Name, "command", cmd.Name)
			return false
		}
	}

	start := time.Now()
	err := cmd.Handler.Handle(si, msg)
	elapsed := time.Since(start)

	cmd.Runs++
	cmd.Elapsed += elapsed
	d.Metrics.invoked(cmd.Name, elapsed)

	if err != nil {
		d.Logger.Error("handler failed", "command", cmd.Name, "source", si.Name, "err", err)
		return false
	}

	d.propagate(si, cmd, msg)
	return true
}

// propagate relays the original line of a server originated command
// according to the command's policy.
func (d *Dispatcher) propagate(si *SourceInfo, cmd *Command, msg *irc.Message) {
	if cmd.Propagation == PropNone || len(msg.Propagate) == 0 {
		return
	}
	if si.Source.Type != data.LinkServer || !si.Source.Registered {
		return
	}

	switch cmd.Propagation {
	case PropBroadcast:
		d.Sender.SendToServers(si.Source, msg.Line)
	case PropOneToOne:
		l := d.Sender.Route(msg.Propagate)
		if l == nil || l == si.Source || l.Type != data.LinkServer {
			d.Logger.Debug("nowhere to propagate", "command", cmd.Name, "target", msg.Propagate)
			return
		}
		d.Sender.SendTo(l, msg.Line)
	case PropHunted:
		d.Logger.Warn("hunted propagation is not implemented", "command", cmd.Name,
			"target", msg.Propagate)
	}
}

// reportFailure tells the source the most specific reason no handler
// accepted it. Servers are never sent failure numerics.
func (d *Dispatcher) reportFailure(si *SourceInfo, msg *irc.Message, tested Caps) {
	num, reason := irc.ERR_UNKNOWNCOMMAND, FailUnknown
	switch {
	case tested == 0:
	case tested.Intersects(CapUser) && !si.Caps.Intersects(CapUser):
		num, reason = irc.ERR_NOTREGISTERED, FailNotRegistered
	case tested.Intersects(CapUnregistered) && !si.Caps.Intersects(CapUnregistered):
		num, reason = irc.ERR_ALREADYREGISTERED, FailRegistered
	case tested.Intersects(CapOper) && !si.Caps.Intersects(CapOper):
		num, reason = irc.ERR_NOPRIVILEGES, FailPrivileges
	}

	d.Metrics.failed(reason)

	if si.IsServer() || si.Caps == 0 {
		d.Logger.Warn("no handler for server line", "source", si.Name,
			"command", msg.Command, "reason", reason, "caps", si.Caps)
		return
	}

	if num == irc.ERR_UNKNOWNCOMMAND {
		si.Num(num, msg.Command)
	} else {
		si.Num(num)
	}
}
