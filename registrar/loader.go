package registrar

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/aarondl/uqircd/config"
	"github.com/aarondl/uqircd/data"
	"github.com/aarondl/uqircd/dispatch"
	"github.com/aarondl/uqircd/modes"
)

// The module ABI this build implements. A module built for another major
// version is refused, another minor version is loaded with a warning.
const (
	ABIMajor = 1
	ABIMinor = 2
)

const (
	errFmtABIMajor = "registrar: %s was built for abi %d.%d, this server is %d.%d"
	errFmtCommand  = "registrar: %s failed to register %v"
	errFmtInit     = "registrar: %s failed to initialize"
)

var (
	// ErrNotFound is returned when no module of that name was registered.
	ErrNotFound = errors.New("registrar: no such module")
	// ErrLoaded is returned when loading a module twice.
	ErrLoaded = errors.New("registrar: module already loaded")
	// ErrNotLoaded is returned when unloading a module that is not loaded.
	ErrNotLoaded = errors.New("registrar: module not loaded")
	// ErrPermanent is returned when unloading a permanent module.
	ErrPermanent = errors.New("registrar: module is permanent")
	// ErrLoading is returned when a module's init tries to load a module
	// that is still initializing.
	ErrLoading = errors.New("registrar: module is already being loaded")
)

// Module describes a loadable unit of functionality.
type Module struct {
	Name        string
	Author      string
	Description string

	ABIMajor int
	ABIMinor int

	// Commands are registered before Init runs.
	Commands []*dispatch.Command

	// Init may register further commands and modes through the handle, or
	// load other modules. An error unloads the module again.
	Init func(h *Handle) error
	// Deinit runs before the module's registrations are removed.
	Deinit func(h *Handle)

	// Permanent modules can be loaded but never unloaded.
	Permanent bool
}

var (
	availableMut sync.Mutex
	available    = make(map[string]*Module)
)

// Register makes a module available for loading. Modules call it from an
// init function. Registering a name twice panics.
func Register(m *Module) {
	availableMut.Lock()
	defer availableMut.Unlock()

	if _, ok := available[m.Name]; ok {
		panic("registrar: module registered twice: " + m.Name)
	}
	available[m.Name] = m
}

// Available returns the names of every registered module.
func Available() []string {
	availableMut.Lock()
	defer availableMut.Unlock()

	names := make([]string, 0, len(available))
	for name := range available {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupAvailable(name string) *Module {
	availableMut.Lock()
	defer availableMut.Unlock()
	return available[name]
}

// Env is what a module gets to work with.
type Env struct {
	State     *data.State
	Config    *config.Config
	ChanModes *modes.Table
	UserModes *modes.Table
	Limiter   *dispatch.RateLimiter
}

// Handle is a module's view of the server while it is loaded. Its
// registrations are recorded against the module.
type Handle struct {
	Interface
	*Env

	Module *Module
	Loader *Loader
	Logger log15.Logger
}

// Loader loads and unloads modules.
type Loader struct {
	Env    *Env
	Logger log15.Logger

	proxy  *Proxy
	loaded map[string]*Handle
	order  []string
	stack  []*Handle

	// find resolves module names, lookupAvailable unless a test swaps it.
	find func(name string) *Module
}

// NewLoader creates a loader registering through registrar.
func NewLoader(registrar Interface, env *Env, logger log15.Logger) *Loader {
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	return &Loader{
		Env:    env,
		Logger: logger,
		proxy:  NewProxy(registrar),
		loaded: make(map[string]*Handle),
		find:   lookupAvailable,
	}
}

// Load loads the named module.
func (l *Loader) Load(name string) error {
	_, err := l.load(name)
	return err
}

func (l *Loader) load(name string) (*Handle, error) {
	if _, ok := l.loaded[name]; ok {
		return nil, ErrLoaded
	}
	for _, h := range l.stack {
		if h.Module.Name == name {
			return nil, ErrLoading
		}
	}

	m := l.find(name)
	if m == nil {
		return nil, errors.Wrap(ErrNotFound, name)
	}

	if m.ABIMajor != ABIMajor {
		return nil, errors.Errorf(errFmtABIMajor, name, m.ABIMajor, m.ABIMinor, ABIMajor, ABIMinor)
	}
	if m.ABIMinor != ABIMinor {
		l.Logger.Warn("module abi minor version differs", "module", name,
			"module_abi", m.ABIMinor, "abi", ABIMinor)
	}

	h := &Handle{
		Interface: l.proxy.Get(name),
		Env:       l.Env,
		Module:    m,
		Loader:    l,
		Logger:    l.Logger.New("module", name),
	}

	l.stack = append(l.stack, h)
	defer func() {
		l.stack = l.stack[:len(l.stack)-1]
	}()

	for _, c := range m.Commands {
		if err := h.RegisterCommand(c); err != nil {
			l.proxy.Unregister(name)
			return nil, errors.Wrapf(err, errFmtCommand, name, c)
		}
	}

	if m.Init != nil {
		if err := m.Init(h); err != nil {
			l.proxy.Unregister(name)
			return nil, errors.Wrapf(err, errFmtInit, name)
		}
	}

	l.loaded[name] = h
	l.order = append(l.order, name)
	l.Logger.Info("module loaded", "module", name, "registrations", l.proxy.Count(name))
	return h, nil
}

// Current is the module whose load is in progress, nil outside a load.
func (l *Loader) Current() *Handle {
	if len(l.stack) == 0 {
		return nil
	}
	return l.stack[len(l.stack)-1]
}

// FindOrLoad returns the handle of a loaded module, loading it first if
// needed.
func (l *Loader) FindOrLoad(name string) (*Handle, error) {
	if h, ok := l.loaded[name]; ok {
		return h, nil
	}
	return l.load(name)
}

// Loaded reports whether name is loaded.
func (l *Loader) Loaded(name string) bool {
	_, ok := l.loaded[name]
	return ok
}

// Modules returns the loaded modules in load order.
func (l *Loader) Modules() []string {
	names := make([]string, len(l.order))
	copy(names, l.order)
	return names
}

// Unload runs the module's deinit and removes everything it registered.
func (l *Loader) Unload(name string) error {
	h, ok := l.loaded[name]
	if !ok {
		return ErrNotLoaded
	}
	if h.Module.Permanent {
		return ErrPermanent
	}

	l.unload(h)
	return nil
}

func (l *Loader) unload(h *Handle) {
	name := h.Module.Name
	if h.Module.Deinit != nil {
		h.Module.Deinit(h)
	}
	l.proxy.Unregister(name)

	delete(l.loaded, name)
	for i, n := range l.order {
		if n == name {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	l.Logger.Info("module unloaded", "module", name)
}

// Reload unloads and loads a module again.
func (l *Loader) Reload(name string) error {
	if err := l.Unload(name); err != nil {
		return err
	}
	return l.Load(name)
}

// UnloadAll unloads every module in reverse load order, permanent modules
// included. It is used at shutdown.
func (l *Loader) UnloadAll() {
	for len(l.order) > 0 {
		l.unload(l.loaded[l.order[len(l.order)-1]])
	}
}
