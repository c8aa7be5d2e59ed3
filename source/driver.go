package source

import (
	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/status"
)

// Driver owns every registered provider and mounts Source handles onto
// them. Simulation.Initialize calls Prepare before initializing any model;
// Finalize closes files and releases provider resources.
type Driver struct {
	providers *kernel.Arena[Provider]
}

// NewDriver constructs an empty driver with room for capacity providers.
func NewDriver(capacity int) *Driver {
	return &Driver{providers: kernel.NewArena[Provider](capacity)}
}

// Register adds a provider and returns its id for later Mount calls.
func (d *Driver) Register(p Provider) kernel.ID {
	return d.providers.Alloc(p)
}

// Mount binds a new Source to the given provider under the given client
// index (binary-file providers use client to index their per-client
// offset table and the random provider keeps one stream per client; the
// constant and text-file providers ignore it).
func (d *Driver) Mount(kind Kind, providerID kernel.ID, client int) (*Source, *status.Error) {
	p := d.providers.Get(providerID)
	if p == nil {
		return nil, status.New(status.ErrUnknownSource, "")
	}
	return &Source{Kind: kind, Client: client, provider: *p}, nil
}

// Prepare initializes every registered provider; Simulation.Initialize
// calls it before initializing any model. It does not stop at the first error;
// it returns the first one encountered so every provider gets a chance to
// open its resources and report its own failure.
func (d *Driver) Prepare() *status.Error {
	var first *status.Error
	d.providers.Iterate(func(id kernel.ID, p *Provider) bool {
		if err := (*p).Initialize(); err != nil && first == nil {
			first = err
		}
		return true
	})
	return first
}

// Finalize closes every registered provider's resources (files, etc.).
func (d *Driver) Finalize() *status.Error {
	var first *status.Error
	d.providers.Iterate(func(id kernel.ID, p *Provider) bool {
		if err := (*p).Finalize(); err != nil && first == nil {
			first = err
		}
		return true
	})
	return first
}
