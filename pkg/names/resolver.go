// Package names resolves the display names of shell namespace objects from
// raw registry value data.
//
// A raw value is first decoded directly. When the result is an indirect
// string such as "@%SystemRoot%\system32\shell32.dll,-9216" the string is
// looked up in the string table of the referenced module, or of its ".mui"
// companion when the module itself only carries language-neutral resources.
package names

import (
	"context"
	stderrors "errors"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/agentstation/winshl/pkg/logging"
	"github.com/agentstation/winshl/pkg/resources"
	"github.com/agentstation/winshl/pkg/volume"
)

// ClassNamePrefix marks symbolic class-name tokens.
const ClassNamePrefix = "CLSID_"

// Modules opens resource modules by Windows path.
type Modules interface {
	OpenModule(windowsPath string) (resources.Module, bool)
}

// Files is the part of a volume needed to open modules.
type Files interface {
	ResolvePath(windowsPath string) (volume.PathSpec, bool)
	OpenFile(spec volume.PathSpec) (volume.File, error)
}

// VolumeModules opens modules stored on a volume.
type VolumeModules struct {
	Files   Files
	Options []resources.Option
}

// OpenModule implements Modules.
func (v VolumeModules) OpenModule(windowsPath string) (resources.Module, bool) {
	spec, ok := v.Files.ResolvePath(windowsPath)
	if !ok {
		return nil, false
	}
	f, err := v.Files.OpenFile(spec)
	if err != nil {
		return nil, false
	}
	m, err := resources.Open(f, v.Options...)
	if err != nil {
		_ = f.Close()
		return nil, false
	}
	return m, true
}

// Resolver turns raw name values into display strings. Modules opened
// during resolution are cached until Close.
type Resolver struct {
	modules  Modules
	fallback encoding.Encoding
	cache    map[string]resources.Module
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithCodepage sets the single-byte fallback used when a value is not
// UTF-16. The default is cp1252.
func WithCodepage(name string) Option {
	return func(r *Resolver) error {
		enc, err := Codepage(name)
		if err != nil {
			return err
		}
		r.fallback = enc
		return nil
	}
}

// NewResolver returns a resolver opening modules through modules, which may
// be nil when the source has no file system.
func NewResolver(modules Modules, opts ...Option) (*Resolver, error) {
	fallback, _ := Codepage("cp1252")
	r := &Resolver{
		modules:  modules,
		fallback: fallback,
		cache:    make(map[string]resources.Module),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Decode applies only the direct decode step.
func (r *Resolver) Decode(raw []byte) (string, bool) {
	return decode(raw, r.fallback)
}

// Resolve decodes raw and resolves indirect strings. Failures are logged
// to the context logger and reported as unresolved.
func (r *Resolver) Resolve(ctx context.Context, raw []byte) (string, bool) {
	s, ok := r.Decode(raw)
	if !ok {
		logging.FromContext(ctx).Warn().Int("size", len(raw)).Msg("Unable to decode name value")
		return "", false
	}
	return r.ResolveString(ctx, s)
}

// ResolveString resolves an already decoded string.
func (r *Resolver) ResolveString(ctx context.Context, s string) (string, bool) {
	if !IsReference(s) {
		return s, s != ""
	}

	logger := logging.FromContext(ctx)
	ref, err := ParseReference(s)
	if err != nil {
		logger.Debug().Err(err).Str("value", s).Msg("Keeping unparsable indirect string")
		return s, true
	}

	module, ok := r.module(ref.ModulePath())
	if !ok {
		logger.Warn().Str("module", ref.ModulePath()).Msg("Unable to open resource module")
		return "", false
	}
	value, ok := LookupString(module, ref.ID)
	if !ok {
		logger.Warn().Str("module", ref.ModulePath()).Int("string_id", ref.ID).Msg("Missing string in resource module")
		return "", false
	}
	return value, true
}

// module returns the module at path carrying a string table, following
// MUI redirection.
func (r *Resolver) module(path string) (resources.Module, bool) {
	key := strings.ToLower(path)
	if m, ok := r.cache[key]; ok {
		return m, m != nil
	}
	m := r.openWithStrings(path)
	r.cache[key] = m
	return m, m != nil
}

func (r *Resolver) openWithStrings(path string) resources.Module {
	if r.modules == nil {
		return nil
	}

	var language string
	if m, ok := r.modules.OpenModule(path); ok {
		if m.HasStringTable() {
			return m
		}
		language, _ = m.PreferredMUILanguageTag()
		_ = m.Close()
	}

	for _, candidate := range muiCandidates(path, language) {
		m, ok := r.modules.OpenModule(candidate)
		if !ok {
			continue
		}
		if m.HasStringTable() {
			return m
		}
		_ = m.Close()
	}
	return nil
}

// Close releases the cached modules.
func (r *Resolver) Close() error {
	var errs []error
	for key, m := range r.cache {
		if m != nil {
			if err := m.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		delete(r.cache, key)
	}
	return stderrors.Join(errs...)
}

// LookupString finds string id in the string table of m. Every block whose
// range [16*b, 16*b+16] includes id is scanned for an exact match.
func LookupString(m resources.Module, id int) (string, bool) {
	for entry := range m.StringTableEntries() {
		if !blockAdmits(entry.BlockID, id) {
			continue
		}
		for _, s := range entry.Strings() {
			if s.ID == id {
				return s.Value, true
			}
		}
	}
	return "", false
}

func blockAdmits(blockID, id int) bool {
	base := blockID * resources.BlockSize
	return id >= base && id <= base+resources.BlockSize
}

// Name is a classified resolved name.
type Name struct {
	Name      string
	ClassName string
}

// Classify stores CLSID_ tokens as class name and anything else as name.
func Classify(s string) Name {
	if strings.HasPrefix(s, ClassNamePrefix) {
		return Name{ClassName: s}
	}
	return Name{Name: s}
}
