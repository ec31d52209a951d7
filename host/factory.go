package host

import (
	"errors"
	"sync"

	"github.com/lixenwraith/scape/manager"
)

// ErrDuplicateInstance is returned when constructing a host while another one from the same factory is live
var ErrDuplicateInstance = errors.New("there is already a live lifecycle host")

// Factory enforces the single live host invariant
// A host occupies the slot from construction until Shutdown
type Factory struct {
	mu   sync.Mutex
	live *Host
}

// NewFactory creates a factory with an empty slot
func NewFactory() *Factory {
	return &Factory{}
}

var defaultFactory = NewFactory()

// New constructs a host from the process-wide factory
func New(opts Options, managers ...manager.Manager) (*Host, error) {
	return defaultFactory.New(opts, managers...)
}

// Live returns the host currently holding the slot
func (f *Factory) Live() (*Host, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live, f.live != nil
}

// claim installs h as the live host
func (f *Factory) claim(h *Host) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.live != nil && f.live != h {
		return ErrDuplicateInstance
	}
	f.live = h
	return nil
}

// release empties the slot if h holds it
func (f *Factory) release(h *Host) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.live == h {
		f.live = nil
	}
}
