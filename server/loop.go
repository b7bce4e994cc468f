package server

import (
	"github.com/pkg/errors"

	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/inet"
	"github.com/aarondl/uqircd/irc"
)

const (
	reasonEOF      = "Remote host closed the connection"
	reasonShutdown = "Server shutting down"
)

type eventKind int

const (
	eventConnect eventKind = iota
	eventLine
	eventClose
)

// event is something a connection goroutine needs the dispatch goroutine
// to do.
type event struct {
	kind eventKind
	link *data.Link
	conn *inet.Conn
	line string
	err  error
}

// loop is the dispatch goroutine. It owns the state, the registries and
// conns, one event is handled to completion before the next.
func (s *Server) loop() {
	defer s.wg.Done()

	for {
		select {
		case ev := <-s.events:
			s.handle(ev)
		case <-s.quit:
			s.shutdown()
			return
		}
	}
}

func (s *Server) handle(ev event) {
	switch ev.kind {
	case eventConnect:
		s.State.AddLink(ev.link)
		s.conns[ev.link] = ev.conn
		s.connections.Inc()
		s.Logger.Info("Connection", "link", ev.link.ID, "ip", ev.link.IP)

	case eventLine:
		if _, ok := s.conns[ev.link]; !ok {
			return
		}
		if closed, _ := ev.link.Closed(); closed {
			return
		}
		s.Dispatcher.Invoke(ev.link, ev.line)
		s.reap(ev.link)

	case eventClose:
		s.drop(ev.link, ev.err)
	}
}

// reap stops the writer of a link a handler closed, it exits once the
// final lines are written and the reader follows with an eventClose.
func (s *Server) reap(l *data.Link) {
	if closed, reason := l.Closed(); closed {
		s.Logger.Debug("Closing link", "link", l.ID, "reason", reason)
		s.conns[l].Close()
	}
}

// drop forgets a link whose reader has ended. Registered users that did not
// QUIT are quit on their behalf so the network hears of it.
func (s *Server) drop(l *data.Link, err error) {
	c, ok := s.conns[l]
	if !ok {
		return
	}
	delete(s.conns, l)
	s.connections.Dec()

	reason := reasonEOF
	if err != nil {
		reason = "Read error: " + errors.Cause(err).Error()
	}

	switch {
	case l.User != nil && l.Registered && s.State.UserByUID(l.User.UID) == l.User:
		l.Close(reason)
		s.Dispatcher.Invoke(l, irc.Line("", irc.QUIT, reason))
	case l.Server != nil && l.Registered:
		s.Logger.Warn("Server link lost", "server", l.Server.Name, "sid", l.Server.SID, "reason", reason)
	}

	s.State.RemoveLink(l)
	c.Close()
	s.Logger.Info("Disconnected", "link", l.ID, "reason", reason)
}

// shutdown closes every connection, including ones whose connect event
// is still waiting.
func (s *Server) shutdown() {
drain:
	for {
		select {
		case ev := <-s.events:
			if ev.kind == eventConnect {
				s.conns[ev.link] = ev.conn
			}
		default:
			break drain
		}
	}

	for l, c := range s.conns {
		l.Close(reasonShutdown)
		c.Close()
	}
	s.Logger.Info("Shut down", "links", len(s.conns))
}
