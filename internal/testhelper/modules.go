package testhelper

import (
	"bytes"
	"strings"
	"sync"

	"github.com/agentstation/winshl/pkg/resources"
)

// Modules serves generated PE images by case-insensitive Windows path and
// counts the modules left open.
type Modules struct {
	mu     sync.Mutex
	images map[string][]byte
	opened []string
	open   int
}

// NewModules builds an image per path.
func NewModules(images map[string]Module) *Modules {
	m := &Modules{images: make(map[string][]byte, len(images))}
	for path, module := range images {
		m.images[strings.ToLower(path)] = BuildModule(module)
	}
	return m
}

// OpenModule implements names.Modules.
func (m *Modules) OpenModule(path string) (resources.Module, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opened = append(m.opened, path)
	image, ok := m.images[strings.ToLower(path)]
	if !ok {
		return nil, false
	}
	module, err := resources.Open(bytes.NewReader(image))
	if err != nil {
		return nil, false
	}
	m.open++
	return &trackedModule{Module: module, owner: m}, true
}

// Opened returns every path passed to OpenModule.
func (m *Modules) Opened() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opened...)
}

// Open returns the number of modules not yet closed.
func (m *Modules) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

type trackedModule struct {
	resources.Module
	owner *Modules
}

func (t *trackedModule) Close() error {
	t.owner.mu.Lock()
	t.owner.open--
	t.owner.mu.Unlock()
	return t.Module.Close()
}
