package registry

import (
	"sync"

	"github.com/lixenwraith/scape/resource"
)

// Catalog is the explicit registration table of consumer types and their resource requirements
// Implements resource.Universe
type Catalog struct {
	mu           sync.RWMutex
	order        []resource.Consumer
	requirements map[resource.Consumer][]resource.Requirement
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		requirements: make(map[resource.Consumer][]resource.Requirement),
	}
}

// Register appends reqs to consumer's declarations
// Consumers keep the position of their first registration
func (c *Catalog) Register(consumer resource.Consumer, reqs ...resource.Requirement) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.requirements[consumer]; !ok {
		c.order = append(c.order, consumer)
		c.requirements[consumer] = nil
	}
	for _, req := range reqs {
		if req.Type == nil || len(req.Names) == 0 {
			continue
		}
		names := make([]string, len(req.Names))
		copy(names, req.Names)
		c.requirements[consumer] = append(c.requirements[consumer], resource.Requirement{Names: names, Type: req.Type})
	}
}

// Consumers returns registered consumers in registration order
func (c *Catalog) Consumers() []resource.Consumer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]resource.Consumer, len(c.order))
	copy(out, c.order)
	return out
}

// Requirements returns the declarations of consumer
func (c *Catalog) Requirements(consumer resource.Consumer) []resource.Requirement {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reqs := c.requirements[consumer]
	out := make([]resource.Requirement, len(reqs))
	copy(out, reqs)
	return out
}

// Len returns the number of registered consumers
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Clone returns an independent catalog with the same declarations
func (c *Catalog) Clone() *Catalog {
	out := NewCatalog()
	for _, consumer := range c.Consumers() {
		out.Register(consumer, c.Requirements(consumer)...)
	}
	return out
}

var defaultCatalog = NewCatalog()

// Default returns the process-wide catalog filled by Register
func Default() *Catalog {
	return defaultCatalog
}

// Register adds requirements to the process-wide catalog
// Intended for package init functions of consumer types
func Register(consumer resource.Consumer, reqs ...resource.Requirement) {
	defaultCatalog.Register(consumer, reqs...)
}
