package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/awmpietro/quantum-dilemma/internal/narrative"
)

// InMemory memoizes compiled graphs by the sha256 of their DOT source.
// Concurrent requests for the same source share one compilation; failed
// compilations are not cached. Once max entries are held, new graphs are
// still returned but no longer stored.
type InMemory struct {
	mu    sync.RWMutex
	max   int
	items map[string]*narrative.Graph
	group singleflight.Group
}

func NewInMemory(max int) *InMemory {
	if max < 0 {
		max = 0
	}
	return &InMemory{
		max:   max,
		items: make(map[string]*narrative.Graph, max),
	}
}

func (c *InMemory) GetOrCompute(dot string, fn func() (*narrative.Graph, error)) (*narrative.Graph, error) {
	key := hash(dot)

	c.mu.RLock()
	if g, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return g, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		if g, ok := c.items[key]; ok {
			c.mu.RUnlock()
			return g, nil
		}
		c.mu.RUnlock()

		g, err := compute(fn)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if len(c.items) < c.max {
			c.items[key] = g
		}
		c.mu.Unlock()
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*narrative.Graph), nil
}

func (c *InMemory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func compute(fn func() (*narrative.Graph, error)) (g *narrative.Graph, err error) {
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, fmt.Errorf("graph compilation panicked: %v", r)
		}
	}()
	return fn()
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
