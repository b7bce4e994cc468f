package registrar

// Proxy all the registrations through a storage mechanism, the important
// thing about proxy is that it adds a "name" layer to each registration
// so everything a module registered can be unregistered by its name.
//
// Proxy is not safe to use from multiple goroutines without additional
// synchronization
type Proxy struct {
	registrar Interface
	holders   map[string]*holder
}

// NewProxy constructor, holds a reference to the interface passed in.
func NewProxy(registrar Interface) *Proxy {
	p := &Proxy{
		registrar: registrar,
		holders:   make(map[string]*holder),
	}

	return p
}

// Get a proxying object for name. Creates a new one if one is not found.
func (p *Proxy) Get(name string) Interface {
	return p.get(name)
}

func (p *Proxy) get(name string) *holder {
	h, ok := p.holders[name]
	if ok {
		return h
	}

	h = newHolder(p.registrar, name)
	p.holders[name] = h
	return h
}

// Count returns how many registrations name holds.
func (p *Proxy) Count(name string) int {
	h, ok := p.holders[name]
	if !ok {
		return 0
	}
	return h.count()
}

// Unregister everything registered to name
func (p *Proxy) Unregister(name string) {
	h, ok := p.holders[name]
	if !ok {
		return
	}
	delete(p.holders, name)

	h.unregisterAll()
}
