package core

import (
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/irc"
	"github.com/aarondl/uqircd/registrar"
)

func init() {
	registrar.Register(module("core/tb", "TB command", initTB))
}

type topicBurst struct {
	h *registrar.Handle
}

func initTB(h *registrar.Handle) error {
	b := &topicBurst{h: h}
	return registerCommands(h,
		&dispatch.Command{Name: irc.TB, Caps: dispatch.CapServer, NArgs: 3, Propagation: dispatch.PropBroadcast, Handler: dispatch.HandlerFunc(b.tb)},
	)
}

// tb is ":sid TB #channel topic-ts [setter] :topic". An older topic
// replaces ours, an existing topic is never replaced by a newer one.
func (b *topicBurst) tb(si *dispatch.SourceInfo, msg *irc.Message) error {
	msg.Propagate = irc.PropagateAll

	c := si.State().Channel(msg.Args[0])
	if c == nil {
		b.h.Logger.Warn("TB for nonexistent channel", "source", si.Name, "channel", msg.Args[0])
		return nil
	}

	ts := atoi(msg.Args[1])
	if len(c.Topic) > 0 && ts >= c.TopicTime {
		return nil
	}
	c.TopicTime = ts

	if len(msg.Args) > 3 {
		c.TopicSetter = msg.Args[2]
	} else {
		c.TopicSetter = si.Name
	}

	topic := msg.Args[len(msg.Args)-1]
	if topic == c.Topic {
		return nil
	}
	c.Topic = topic

	si.State().SendToChannel(c, nil, irc.Line(si.Name, irc.TOPIC, c.Name, c.Topic))
	return nil
}
