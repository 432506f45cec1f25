package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/winshl/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "key",
			ID:       `HKEY_LOCAL_MACHINE\Software\Classes\CLSID`,
		}
		assert.Equal(t, `key with ID HKEY_LOCAL_MACHINE\Software\Classes\CLSID not found`, err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("windows directory", "/mnt/image")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("identifier", "bogus", "not a GUID")
		assert.Equal(t, "validation failed for field identifier: not a GUID", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "missing definition values"}
		assert.Equal(t, "validation failed: missing definition values", err.Error())
	})
}

func TestConflictError(t *testing.T) {
	err := pkgerrors.NewConflictError("5e6c858f-0e22-4760-9afe-ea3317b67173", "default_path", "%SystemDrive%", "%SystemRoot%")

	assert.Contains(t, err.Error(), "5e6c858f-0e22-4760-9afe-ea3317b67173")
	assert.Contains(t, err.Error(), "default_path")
	assert.True(t, pkgerrors.IsConflict(err))
	assert.False(t, pkgerrors.IsScanError(err))

	wrapped := fmt.Errorf("merging known folders: %w", err)
	var conflict *pkgerrors.ConflictError
	require.True(t, errors.As(wrapped, &conflict))
	assert.Equal(t, "default_path", conflict.Field)
}

func TestScanError(t *testing.T) {
	base := errors.New("no Windows directory")
	err := pkgerrors.WrapScan("/images/xp.raw", base)

	assert.True(t, pkgerrors.IsScanError(err))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "/images/xp.raw")
	assert.Nil(t, pkgerrors.WrapScan("source", nil))
}

func TestParseError(t *testing.T) {
	t.Run("with file and line", func(t *testing.T) {
		err := &pkgerrors.ParseError{
			Format:  "reg",
			File:    "SOFTWARE.reg",
			Line:    12,
			Message: "unterminated string",
		}
		assert.Contains(t, err.Error(), "SOFTWARE.reg:12")
		assert.Contains(t, err.Error(), "unterminated string")
	})

	t.Run("format only", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "pe", Message: "missing resource section"}
		assert.Equal(t, "pe parse error: missing resource section", err.Error())
	})

	t.Run("wrap", func(t *testing.T) {
		baseErr := errors.New("EOF")
		wrapped := pkgerrors.WrapParse("yaml", "shellfolders.yaml", baseErr)
		parseErr, ok := wrapped.(*pkgerrors.ParseError)
		require.True(t, ok)
		assert.Equal(t, "yaml", parseErr.Format)
		assert.Equal(t, baseErr, parseErr.Unwrap())
	})
}

func TestIOError(t *testing.T) {
	baseErr := errors.New("permission denied")
	err := pkgerrors.WrapIO("open", "/mnt/Windows/System32/shell32.dll", baseErr)

	ioErr, ok := err.(*pkgerrors.IOError)
	require.True(t, ok)
	assert.Equal(t, "open", ioErr.Operation)
	assert.Equal(t, baseErr, ioErr.Unwrap())
	assert.Nil(t, pkgerrors.WrapIO("read", "file", nil))
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("extract", "unsupported codepage", nil)
	assert.Contains(t, err.Error(), "extract")
	assert.Contains(t, err.Error(), "unsupported codepage")
}
