package volume

import (
	"os"
	"path/filepath"
	"strings"
)

// PathResolver maps Windows paths onto a directory tree, matching path
// components case-insensitively.
type PathResolver struct {
	root string
	env  map[string]string
}

// NewPathResolver returns a resolver rooted at the host directory root,
// which stands for the system drive.
func NewPathResolver(root string) *PathResolver {
	return &PathResolver{root: root, env: make(map[string]string)}
}

// SetEnvironmentVariable defines %name%. Names are case-insensitive.
func (r *PathResolver) SetEnvironmentVariable(name, value string) {
	r.env[strings.ToLower(name)] = value
}

// ExpandEnvironment replaces %name% references. It fails on undefined
// variables.
func (r *PathResolver) ExpandEnvironment(path string) (string, bool) {
	var b strings.Builder
	for {
		start := strings.IndexByte(path, '%')
		if start < 0 {
			b.WriteString(path)
			return b.String(), true
		}
		end := strings.IndexByte(path[start+1:], '%')
		if end < 0 {
			b.WriteString(path)
			return b.String(), true
		}
		end += start + 1

		value, ok := r.env[strings.ToLower(path[start+1:end])]
		if !ok {
			return "", false
		}
		b.WriteString(path[:start])
		b.WriteString(value)
		path = path[end+1:]
	}
}

// ResolvePath maps an absolute Windows path, with or without drive letter,
// to an existing file or directory.
func (r *PathResolver) ResolvePath(windowsPath string) (PathSpec, bool) {
	expanded, ok := r.ExpandEnvironment(windowsPath)
	if !ok {
		return PathSpec{}, false
	}

	expanded = strings.ReplaceAll(expanded, "/", `\`)
	expanded = strings.TrimPrefix(expanded, `\\?\`)
	if len(expanded) >= 2 && expanded[1] == ':' {
		expanded = expanded[2:]
	}
	if !strings.HasPrefix(expanded, `\`) {
		return PathSpec{}, false
	}

	current := r.root
	for _, part := range strings.Split(expanded, `\`) {
		switch part {
		case "", ".":
			continue
		case "..":
			if current != r.root {
				current = filepath.Dir(current)
			}
			continue
		}
		name, ok := findChild(current, part)
		if !ok {
			return PathSpec{}, false
		}
		current = filepath.Join(current, name)
	}

	if _, err := os.Stat(current); err != nil {
		return PathSpec{}, false
	}
	return PathSpec{Location: current}, true
}
