/*
Package inet moves protocol lines between sockets and the dispatcher: a
siphon reads lines off a connection and a pump drains a link's outbound
queue onto it.
*/
package inet

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/inconshreveable/log15.v2"
)

const (
	// MaxLineLength is the longest line the siphon accepts, message tags
	// included.
	MaxLineLength = 8191 + 512
	// nBatchedWrites is how many queued lines are written per syscall.
	nBatchedWrites = 25
	// writeTimeout bounds a single write.
	writeTimeout = 30 * time.Second
)

// Conn represents one socket. Reads happen in Siphon and writes in Pump,
// each meant to run in its own goroutine.
type Conn struct {
	conn   net.Conn
	queue  *Queue
	logger log15.Logger

	closeOnce sync.Once
	closing   chan struct{}
}

// NewConn wraps a socket, outbound lines are taken from queue.
func NewConn(conn net.Conn, queue *Queue, logger log15.Logger) *Conn {
	return &Conn{
		conn:    conn,
		queue:   queue,
		logger:  logger,
		closing: make(chan struct{}),
	}
}

// RemoteIP returns the peer's address without the port.
func (c *Conn) RemoteIP() string {
	addr := c.conn.RemoteAddr().String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// Siphon reads lines and hands each to fn until the connection fails or
// is closed. Empty lines are skipped.
func (c *Conn) Siphon(fn func(line string)) error {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 4096), MaxLineLength)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		c.logger.Debug("read", "line", line)
		fn(line)
	}

	if err := scanner.Err(); err != nil {
		select {
		case <-c.closing:
			return nil
		default:
		}
		return errors.Wrap(err, "inet: read failed")
	}
	return nil
}

// Pump writes queued lines until Close is called or a write fails. Lines
// queued before Close are still written.
func (c *Conn) Pump() error {
	defer c.conn.Close()

	for {
		if err := c.flush(); err != nil {
			return err
		}

		select {
		case <-c.queue.Ready():
		case <-c.closing:
			return c.flush()
		}
	}
}

func (c *Conn) flush() error {
	for {
		lines := c.queue.Dequeue(nBatchedWrites)
		if len(lines) == 0 {
			return nil
		}

		var b strings.Builder
		for _, l := range lines {
			c.logger.Debug("write", "line", l)
			b.WriteString(l)
			b.WriteString("\r\n")
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := c.conn.Write([]byte(b.String())); err != nil {
			return errors.Wrap(err, "inet: write failed")
		}
	}
}

// Close stops the pump once the queue is drained. Safe to call more than
// once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.closing)
	})
}

// Kill closes the socket immediately, unblocking Siphon.
func (c *Conn) Kill() error {
	c.Close()
	return c.conn.Close()
}
