package meter

import (
	"sync"

	"github.com/nergy-se/energybridge/pkg/energy"
)

// Cache holds the most recently derived fields for the status endpoint.
type Cache struct {
	data *energy.Fields
	sync.RWMutex
}

func (c *Cache) Get() *energy.Fields {
	c.RLock()
	defer c.RUnlock()
	return c.data
}

func (c *Cache) Set(d *energy.Fields) {
	c.Lock()
	c.data = d
	c.Unlock()
}
