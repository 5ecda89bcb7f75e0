package material

import (
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/df07/go-scatter/pkg/bssrdf"
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
)

// TableCache owns the measured BSDF tables of one render session. Each file
// is read once, however many materials or goroutines ask for it; tables are
// keyed by absolute path so different spellings of one file share a table.
// Failed loads are not cached.
type TableCache struct {
	mu     sync.RWMutex
	tables map[string]*reflection.FourierBSDFTable
	group  singleflight.Group
}

// NewTableCache creates an empty cache
func NewTableCache() *TableCache {
	return &TableCache{tables: make(map[string]*reflection.FourierBSDFTable)}
}

// Get returns the table stored in filename, loading it on first use
func (c *TableCache) Get(filename string) (*reflection.FourierBSDFTable, error) {
	key, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("table cache: %w", err)
	}

	c.mu.RLock()
	table, ok := c.tables[key]
	c.mu.RUnlock()
	if ok {
		return table, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		table, ok := c.tables[key]
		c.mu.RUnlock()
		if ok {
			return table, nil
		}

		table, err := reflection.ReadFourierBSDFTable(key)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.tables[key] = table
		c.mu.Unlock()
		core.Logger().Debug("loaded tabulated BSDF", "file", key, "channels", table.NChannels, "mu", table.NMu())
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*reflection.FourierBSDFTable), nil
}

// Len returns the number of tables held
func (c *TableCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// ProfileCache shares BSSRDF profile tables between subsurface materials
// with the same anisotropy and relative index
type ProfileCache struct {
	mu     sync.RWMutex
	tables map[[2]float64]*bssrdf.BSSRDFTable
	group  singleflight.Group
}

// NewProfileCache creates an empty cache
func NewProfileCache() *ProfileCache {
	return &ProfileCache{tables: make(map[[2]float64]*bssrdf.BSSRDFTable)}
}

// Get returns the table for (g, eta), computing it on first use
func (c *ProfileCache) Get(g, eta float64) *bssrdf.BSSRDFTable {
	key := [2]float64{g, eta}
	c.mu.RLock()
	table, ok := c.tables[key]
	c.mu.RUnlock()
	if ok {
		return table
	}

	flightKey := strconv.FormatFloat(g, 'g', -1, 64) + "/" + strconv.FormatFloat(eta, 'g', -1, 64)
	v, _, _ := c.group.Do(flightKey, func() (any, error) {
		c.mu.RLock()
		table, ok := c.tables[key]
		c.mu.RUnlock()
		if ok {
			return table, nil
		}
		table = NewProfileTable(g, eta)
		c.mu.Lock()
		c.tables[key] = table
		c.mu.Unlock()
		return table, nil
	})
	return v.(*bssrdf.BSSRDFTable)
}

// Len returns the number of tables held
func (c *ProfileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}
