// Package scanner scans one source: it opens the volume, bootstraps the
// registry and the system root, determines the Windows version and walks
// the shell namespace registrations.
package scanner

import (
	"context"
	stderrors "errors"
	"iter"

	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/logging"
	"github.com/agentstation/winshl/pkg/manifest"
	"github.com/agentstation/winshl/pkg/names"
	"github.com/agentstation/winshl/pkg/registry"
	"github.com/agentstation/winshl/pkg/resources"
	"github.com/agentstation/winshl/pkg/version"
	"github.com/agentstation/winshl/pkg/volume"
	"github.com/agentstation/winshl/pkg/walker"
)

// Scanner opens sources.
type Scanner struct {
	opener            volume.Opener
	codepage          string
	preferredLanguage uint32
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithOpener replaces the local file system opener.
func WithOpener(opener volume.Opener) Option {
	return func(s *Scanner) { s.opener = opener }
}

// WithCodepage sets the single-byte fallback code page of name decoding.
func WithCodepage(name string) Option {
	return func(s *Scanner) { s.codepage = name }
}

// WithPreferredLanguage sets the string table language tried first.
func WithPreferredLanguage(lcid uint32) Option {
	return func(s *Scanner) { s.preferredLanguage = lcid }
}

// New creates a scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		opener:            volume.FS{},
		codepage:          constants.DefaultASCIICodepage,
		preferredLanguage: constants.DefaultPreferredLanguage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan is an opened source. The sequences read the registry lazily and
// stay valid until Close.
type Scan struct {
	// Source is the scanned manifest entry.
	Source manifest.Source

	// Version is the Windows version recorded for the source: the manifest
	// override when given, else the detected version, else "".
	Version string

	// DetectedVersion is the version read from the kernel binary.
	DetectedVersion string

	volume   volume.Volume
	resolver *names.Resolver
	walker   *walker.Walker
}

// Open opens src and determines its version. Failures to open the volume
// or its registry are returned as *errors.ScanError.
func (s *Scanner) Open(ctx context.Context, src manifest.Source) (*Scan, error) {
	ctx = logging.WithSource(ctx, src.Source)
	logger := logging.FromContext(ctx)

	vol, err := s.opener.Open(ctx, src.Descriptor())
	if err != nil {
		return nil, errors.NewScanError(src.Source, err)
	}

	reg, err := vol.OpenRegistry()
	if err != nil {
		_ = vol.Close()
		return nil, errors.NewScanError(src.Source, err)
	}

	modules := names.VolumeModules{
		Files:   vol,
		Options: []resources.Option{resources.WithPreferredLanguage(s.preferredLanguage)},
	}
	resolver, err := names.NewResolver(modules, names.WithCodepage(s.codepage))
	if err != nil {
		_ = vol.Close()
		return nil, err
	}

	if root, ok := systemRoot(reg, resolver); ok {
		logger.Debug().Str("system_root", root).Msg("Using system root from registry")
		vol.SetEnvironmentVariable("SystemRoot", root)
		vol.SetEnvironmentVariable("WinDir", root)
	}

	scan := &Scan{
		Source:   src,
		volume:   vol,
		resolver: resolver,
		walker:   walker.New(reg, resolver),
	}
	scan.DetectedVersion, _ = version.NewDetector(modules).DetermineVersion(ctx)
	scan.Version = selectVersion(ctx, scan.DetectedVersion, src.WindowsVersion)
	return scan, nil
}

// selectVersion applies the manifest override to the detected version.
func selectVersion(ctx context.Context, detected, override string) string {
	logger := logging.FromContext(ctx)
	if detected == "" {
		logger.Warn().Str("override", override).Msg("Unable to determine Windows version")
		return override
	}

	logger.Info().Str("version", detected).Msg("Detected Windows version")
	if override != "" {
		return override
	}
	return detected
}

// systemRoot reads %SystemRoot% of NT-family installations.
func systemRoot(reg registry.Registry, resolver *names.Resolver) (string, bool) {
	raw, ok := registry.Value(reg, constants.CurrentVersionPath, constants.SystemRootValue)
	if !ok {
		return "", false
	}
	root, ok := resolver.Decode(raw)
	return root, ok && root != ""
}

// ShellFolders walks the shell folder registrations.
func (sc *Scan) ShellFolders(ctx context.Context) iter.Seq[walker.ShellFolderRecord] {
	return sc.walker.ShellFolders(logging.WithSource(ctx, sc.Source.Source))
}

// ControlPanelItems walks the control panel namespace.
func (sc *Scan) ControlPanelItems(ctx context.Context) iter.Seq[walker.ControlPanelRecord] {
	return sc.walker.ControlPanelItems(logging.WithSource(ctx, sc.Source.Source))
}

// KnownFolders walks the known folder descriptions.
func (sc *Scan) KnownFolders(ctx context.Context) iter.Seq[walker.KnownFolderRecord] {
	return sc.walker.KnownFolders(logging.WithSource(ctx, sc.Source.Source))
}

// Close releases the resource modules and the volume.
func (sc *Scan) Close() error {
	return stderrors.Join(sc.resolver.Close(), sc.volume.Close())
}

// Result is everything observed in one source.
type Result struct {
	Source            manifest.Source
	Version           string
	DetectedVersion   string
	ShellFolders      []walker.ShellFolderRecord
	ControlPanelItems []walker.ControlPanelRecord
	KnownFolders      []walker.KnownFolderRecord
}

// ScanSource scans src completely and releases it.
func (s *Scanner) ScanSource(ctx context.Context, src manifest.Source) (*Result, error) {
	scan, err := s.Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer scan.Close()

	result := &Result{
		Source:          src,
		Version:         scan.Version,
		DetectedVersion: scan.DetectedVersion,
	}
	for record := range scan.ShellFolders(ctx) {
		result.ShellFolders = append(result.ShellFolders, record)
	}
	for record := range scan.ControlPanelItems(ctx) {
		result.ControlPanelItems = append(result.ControlPanelItems, record)
	}
	for record := range scan.KnownFolders(ctx) {
		result.KnownFolders = append(result.KnownFolders, record)
	}
	return result, ctx.Err()
}
