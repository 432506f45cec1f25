package winshl

import (
	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/names"
	"github.com/agentstation/winshl/pkg/volume"
)

// config holds the options of an Extractor.
type config struct {
	continueOnError   bool
	codepage          string
	preferredLanguage uint32
	opener            volume.Opener
	initialCatalog    *catalogs.Catalog
}

func defaultConfig() config {
	return config{
		codepage:          constants.DefaultASCIICodepage,
		preferredLanguage: constants.DefaultPreferredLanguage,
		opener:            volume.FS{},
	}
}

// Option configures an Extractor.
type Option func(*config) error

// WithContinueOnError keeps scanning after a source fails. The failures
// are returned joined at the end of the run. By default the first failing
// source aborts the run.
func WithContinueOnError(enabled bool) Option {
	return func(c *config) error {
		c.continueOnError = enabled
		return nil
	}
}

// WithCodepage sets the single-byte code page used for names that are not
// UTF-16, such as cp1252 or windows-1251.
func WithCodepage(name string) Option {
	return func(c *config) error {
		if _, err := names.Codepage(name); err != nil {
			return err
		}
		c.codepage = name
		return nil
	}
}

// WithPreferredLanguage sets the string table language tried first, as a
// Windows language identifier such as 0x0409.
func WithPreferredLanguage(lcid uint32) Option {
	return func(c *config) error {
		if lcid == 0 || lcid > 0xffff {
			return errors.NewValidationError("preferred_language", lcid, "must be a 16-bit language identifier")
		}
		c.preferredLanguage = lcid
		return nil
	}
}

// WithOpener replaces the local file system opener.
func WithOpener(opener volume.Opener) Option {
	return func(c *config) error {
		if opener == nil {
			return errors.NewValidationError("opener", nil, "cannot be nil")
		}
		c.opener = opener
		return nil
	}
}

// WithInitialCatalog folds observations into an existing catalog.
func WithInitialCatalog(c *catalogs.Catalog) Option {
	return func(cfg *config) error {
		cfg.initialCatalog = c
		return nil
	}
}
