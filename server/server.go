/*
Package server wires the configuration, the network state, the command and
mode registries and the loaded modules into a running ircd. Connections are
read and written on their own goroutines, every line they produce is
dispatched on a single goroutine so handlers never race each other.
*/
package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/aarondl/uqircd/config"
	"github.com/aarondl/uqircd/core"
	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/inet"
	"github.com/aarondl/uqircd/registrar"
)

const (
	// nEventBuffer is how many events may wait for the dispatch goroutine.
	nEventBuffer = 256
	// acceptBackoff is the pause after a failed Accept.
	acceptBackoff = 100 * time.Millisecond
	// shutdownTimeout bounds the metrics server shutdown.
	shutdownTimeout = 5 * time.Second

	// errFmtListen is when a configured address can't be bound.
	errFmtListen = "server: listening on %v"
	// errFmtModule is when a configured module fails to load.
	errFmtModule = "server: loading module %v"
)

// DefaultModules are loaded when the config names none.
var DefaultModules = []string{"core"}

// Server is a configured ircd. Create it with New, then Start it.
type Server struct {
	Config     *config.Config
	State      *data.State
	Registry   *dispatch.Registry
	Dispatcher *dispatch.Dispatcher
	Loader     *registrar.Loader
	Limiter    *dispatch.RateLimiter
	Metrics    *dispatch.Metrics
	Logger     log15.Logger

	prom        *prometheus.Registry
	connections prometheus.Gauge

	// conns is only touched by the dispatch goroutine.
	conns  map[*data.Link]*inet.Conn
	events chan event

	listeners []net.Listener
	metrics   *http.Server

	wg       sync.WaitGroup
	quit     chan struct{}
	stopOnce sync.Once
}

// New builds the server and loads its modules. Nothing is bound until
// Start.
func New(cfg *config.Config, logger log15.Logger) (*Server, error) {
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	prom := prometheus.NewRegistry()
	prom.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	state := data.NewState(cfg.Server.Name, cfg.Server.SID, cfg.Server.Description)
	reg := dispatch.NewRegistry()
	limiter := dispatch.NewRateLimiter(cfg.Limits.Rate.CreditsPerSecond, cfg.Limits.Rate.Burst)
	metrics := dispatch.NewMetrics(prom)

	env := &registrar.Env{
		State:     state,
		Config:    cfg,
		ChanModes: core.NewChannelTable(cfg.Limits.MaxList),
		UserModes: core.NewUserTable(),
		Limiter:   limiter,
	}

	d := dispatch.NewDispatcher(reg, state, logger.New("component", "dispatch"))
	d.Limiter = limiter
	d.Metrics = metrics
	if cfg.Limits.MaxArgs > 0 {
		d.MaxArgs = cfg.Limits.MaxArgs
	}

	s := &Server{
		Config:     cfg,
		State:      state,
		Registry:   reg,
		Dispatcher: d,
		Loader:     registrar.NewLoader(registrar.New(reg), env, logger.New("component", "loader")),
		Limiter:    limiter,
		Metrics:    metrics,
		Logger:     logger,

		prom: prom,
		connections: promauto.With(prom).NewGauge(prometheus.GaugeOpts{
			Namespace: "uqircd",
			Subsystem: "server",
			Name:      "connections",
			Help:      "Open client and server connections.",
		}),

		conns:  make(map[*data.Link]*inet.Conn),
		events: make(chan event, nEventBuffer),
		quit:   make(chan struct{}),
	}

	modules := cfg.Modules
	if len(modules) == 0 {
		modules = DefaultModules
	}
	for _, name := range modules {
		if err := s.Loader.Load(name); err != nil {
			s.Loader.UnloadAll()
			return nil, errors.Wrapf(err, errFmtModule, name)
		}
	}

	return s, nil
}

// Start binds every listen address and the metrics endpoint and begins
// dispatching. If any address can't be bound nothing is left listening.
func (s *Server) Start() error {
	for _, addr := range s.Config.Server.Listen {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			for _, l := range s.listeners {
				l.Close()
			}
			s.listeners = nil
			return errors.Wrapf(err, errFmtListen, addr)
		}
		s.listeners = append(s.listeners, ln)
		s.Logger.Info("Listening", "addr", ln.Addr())
	}

	if addr := s.Config.Metrics.Listen; len(addr) > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.MetricsHandler())
		s.metrics = &http.Server{Addr: addr, Handler: mux}

		go func() {
			if err := s.metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.Logger.Error("Metrics server died", "addr", addr, "err", err)
			}
		}()
		s.Logger.Info("Serving metrics", "addr", addr)
	}

	s.wg.Add(1 + len(s.listeners))
	go s.loop()
	for _, ln := range s.listeners {
		go s.accept(ln)
	}
	return nil
}

// Addrs are the addresses actually bound, useful with port 0.
func (s *Server) Addrs() []net.Addr {
	addrs := make([]net.Addr, len(s.listeners))
	for i, ln := range s.listeners {
		addrs[i] = ln.Addr()
	}
	return addrs
}

// MetricsHandler serves the prometheus registry of this server.
func (s *Server) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(s.prom, promhttp.HandlerOpts{})
}

// Stop closes the listeners and says goodbye to every connection. Use
// Wait to block until everything has finished.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		for _, ln := range s.listeners {
			ln.Close()
		}

		if s.metrics != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.metrics.Shutdown(ctx); err != nil {
				s.Logger.Error("Metrics server shutdown", "err", err)
			}
		}
	})
}

// Wait blocks until the dispatch goroutine, the listeners and every
// connection have finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) accept(ln net.Listener) {
	defer s.wg.Done()

	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
			}
			s.Logger.Error("Accept failed", "addr", ln.Addr(), "err", err)
			time.Sleep(acceptBackoff)
			continue
		}

		s.serve(nc)
	}
}

// serve hands a new socket to the dispatch goroutine and starts its reader
// and writer.
func (s *Server) serve(nc net.Conn) {
	l := data.NewLink("")
	logger := s.Logger.New("link", l.ID)
	c := inet.NewConn(nc, l.Out, logger)
	l.IP = c.RemoteIP()

	if !s.send(event{kind: eventConnect, link: l, conn: c}) {
		nc.Close()
		return
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := c.Pump(); err != nil {
			logger.Debug("Write failed", "err", err)
			c.Kill()
		}
	}()
	go func() {
		defer s.wg.Done()
		err := c.Siphon(func(line string) {
			s.send(event{kind: eventLine, link: l, line: line})
		})
		s.send(event{kind: eventClose, link: l, err: err})
	}()

	// A connect that raced shutdown may never be seen by the loop.
	select {
	case <-s.quit:
		c.Kill()
	default:
	}
}

// send queues an event for the dispatch goroutine, it gives up once the
// server is stopping.
func (s *Server) send(ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.quit:
		return false
	}
}
