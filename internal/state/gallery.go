package state

import (
	"sort"
	"sync"
)

// Gallery is the in-memory list of artwork pinned to the gallery wall,
// indexed by artwork ID.
type Gallery struct {
	items map[string]Artwork
	mu    sync.RWMutex
}

func NewGallery() *Gallery {
	return &Gallery{items: make(map[string]Artwork)}
}

// Add stores art and returns true if it was not already present.
func (g *Gallery) Add(art Artwork) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.items[art.ID]; exists {
		return false
	}
	g.items[art.ID] = art
	return true
}

func (g *Gallery) Get(id string) (Artwork, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	art, ok := g.items[id]
	return art, ok
}

func (g *Gallery) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.items[id]; exists {
		delete(g.items, id)
		return true
	}
	return false
}

// List returns all artwork, oldest first.
func (g *Gallery) List() []Artwork {
	g.mu.RLock()
	list := make([]Artwork, 0, len(g.items))
	for _, art := range g.items {
		list = append(list, art)
	}
	g.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (g *Gallery) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.items)
}
