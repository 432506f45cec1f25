// Package catalogs defines the canonical definitions of Windows shell
// namespace objects (shell folders, known folders and control panel items)
// and the YAML definition stores they are persisted in.
//
// Definitions are keyed by identifier, the lower-case GUID without braces.
// Collections are safe for concurrent use; the definitions they hold are
// not and are owned by whoever mutates the collection.
package catalogs

import (
	"cmp"
	"maps"
	"slices"
	"sync"

	"github.com/agentstation/winshl/pkg/errors"
)

// Definition is implemented by every catalog entry.
type Definition interface {
	*ShellFolder | *KnownFolder | *ControlPanelItem
	ID() string
}

// Collection is a concurrent safe map of definitions keyed by identifier.
type Collection[T Definition] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewCollection creates an empty collection.
func NewCollection[T Definition](items ...T) *Collection[T] {
	c := &Collection[T]{items: make(map[string]T, len(items))}
	for _, item := range items {
		c.items[item.ID()] = item
	}
	return c
}

// Get returns a definition by identifier and whether it exists.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	item, ok := c.items[id]
	c.mu.RUnlock()
	return item, ok
}

// Set stores a definition, replacing any with the same identifier.
func (c *Collection[T]) Set(item T) error {
	var zero T
	if item == zero || item.ID() == "" {
		return &errors.ValidationError{
			Field:   "identifier",
			Message: "cannot be empty",
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID()] = item
	return nil
}

// Exists checks if a definition exists without returning it.
func (c *Collection[T]) Exists(id string) bool {
	c.mu.RLock()
	_, ok := c.items[id]
	c.mu.RUnlock()
	return ok
}

// Len returns the number of definitions.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// List returns the definitions ordered by identifier.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	items := slices.Collect(maps.Values(c.items))
	c.mu.RUnlock()

	slices.SortFunc(items, func(a, b T) int { return cmp.Compare(a.ID(), b.ID()) })
	return items
}

// Catalog groups the three kinds of definitions.
type Catalog struct {
	ShellFolders      *Collection[*ShellFolder]
	KnownFolders      *Collection[*KnownFolder]
	ControlPanelItems *Collection[*ControlPanelItem]
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		ShellFolders:      NewCollection[*ShellFolder](),
		KnownFolders:      NewCollection[*KnownFolder](),
		ControlPanelItems: NewCollection[*ControlPanelItem](),
	}
}

// appendUnique appends s unless it is empty, equal to exclude or already
// present.
func appendUnique(list []string, s, exclude string) []string {
	if s == "" || s == exclude || slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}
