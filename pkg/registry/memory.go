package registry

import (
	"iter"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var _ Registry = (*Memory)(nil)

// Memory is an in-memory registry tree.
type Memory struct {
	root *MemoryKey
}

// NewMemory returns an empty registry.
func NewMemory() *Memory {
	return &Memory{root: newMemoryKey("")}
}

// MemoryKey is a key of a Memory registry. Children and values keep their
// insertion order.
type MemoryKey struct {
	name      string
	children  map[string]*MemoryKey
	order     []*MemoryKey
	values    map[string][]byte
	valueKeys []string
}

func newMemoryKey(name string) *MemoryKey {
	return &MemoryKey{
		name:     name,
		children: make(map[string]*MemoryKey),
		values:   make(map[string][]byte),
	}
}

// GetKeyByPath implements Registry.
func (m *Memory) GetKeyByPath(path string) (Key, bool) {
	parts := SplitPath(path)
	if len(parts) == 0 {
		return nil, false
	}
	key := m.root
	for _, part := range parts {
		child, ok := key.children[strings.ToLower(part)]
		if !ok {
			return nil, false
		}
		key = child
	}
	return key, true
}

// CreateKey returns the key at path, creating it and any missing parents.
func (m *Memory) CreateKey(path string) *MemoryKey {
	key := m.root
	for _, part := range SplitPath(path) {
		key = key.child(part)
	}
	return key
}

// DeleteKey removes the key at path and everything below it.
func (m *Memory) DeleteKey(path string) {
	parts := SplitPath(path)
	if len(parts) == 0 {
		return
	}
	parent := m.root
	for _, part := range parts[:len(parts)-1] {
		next, ok := parent.children[strings.ToLower(part)]
		if !ok {
			return
		}
		parent = next
	}
	lower := strings.ToLower(parts[len(parts)-1])
	victim, ok := parent.children[lower]
	if !ok {
		return
	}
	delete(parent.children, lower)
	for i, k := range parent.order {
		if k == victim {
			parent.order = append(parent.order[:i], parent.order[i+1:]...)
			break
		}
	}
}

func (k *MemoryKey) child(name string) *MemoryKey {
	lower := strings.ToLower(name)
	if c, ok := k.children[lower]; ok {
		return c
	}
	c := newMemoryKey(name)
	k.children[lower] = c
	k.order = append(k.order, c)
	return c
}

// Name implements Key.
func (k *MemoryKey) Name() string {
	return k.name
}

// Subkeys implements Key.
func (k *MemoryKey) Subkeys() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for _, c := range k.order {
			if !yield(c) {
				return
			}
		}
	}
}

// Subkey implements Key.
func (k *MemoryKey) Subkey(name string) (Key, bool) {
	c, ok := k.children[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return c, true
}

// ValueByName implements Key.
func (k *MemoryKey) ValueByName(name string) ([]byte, bool) {
	data, ok := k.values[strings.ToLower(name)]
	return data, ok
}

// ValueNames returns the value names in insertion order.
func (k *MemoryKey) ValueNames() []string {
	return append([]string(nil), k.valueKeys...)
}

// CreateSubkey returns the named child, creating it if missing.
func (k *MemoryKey) CreateSubkey(name string) *MemoryKey {
	return k.child(name)
}

// SetValue stores raw value data.
func (k *MemoryKey) SetValue(name string, data []byte) {
	lower := strings.ToLower(name)
	if _, ok := k.values[lower]; !ok {
		k.valueKeys = append(k.valueKeys, name)
	}
	k.values[lower] = data
}

// SetString stores s as a REG_SZ value: UTF-16LE with a NUL terminator.
func (k *MemoryKey) SetString(name, s string) {
	k.SetValue(name, EncodeString(s))
}

// EncodeString returns the REG_SZ encoding of s.
func EncodeString(s string) []byte {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		// Invalid UTF-8 is replaced rather than rejected.
		encoded, _ = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(strings.ToValidUTF8(s, "�")))
	}
	return append(encoded, 0, 0)
}
