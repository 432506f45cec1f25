package catalogs

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/winshl/internal/yamldocs"
	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/guid"
)

// Kind identifies the definitions held by a store.
type Kind string

// Store kinds.
const (
	KindShellFolder      Kind = "shellfolder"
	KindKnownFolder      Kind = "knownfolder"
	KindControlPanelItem Kind = "controlpanel"
)

// Header returns the first line of a store of this kind.
func (k Kind) Header() string {
	switch k {
	case KindShellFolder:
		return constants.ShellFolderHeader
	case KindKnownFolder:
		return constants.KnownFolderHeader
	case KindControlPanelItem:
		return constants.ControlPanelItemHeader
	}
	return ""
}

// ParseKind parses a kind name as used on the command line.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shellfolder", "shellfolders", "shell-folders":
		return KindShellFolder, nil
	case "knownfolder", "knownfolders", "known-folders":
		return KindKnownFolder, nil
	case "controlpanel", "controlpanelitem", "control-panel":
		return KindControlPanelItem, nil
	}
	return "", errors.NewValidationError("kind", s, "must be shellfolder, knownfolder or controlpanel")
}

// DetectKind reads the header line of a store.
func DetectKind(r io.Reader) (Kind, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimSpace(line)
	for _, kind := range []Kind{KindShellFolder, KindKnownFolder, KindControlPanelItem} {
		if line == kind.Header() {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: missing definitions header", errors.ErrUnsupportedFormat)
}

// ReadShellFolders reads a shell folder store. name is used in errors.
func ReadShellFolders(r io.Reader, name string) ([]*ShellFolder, error) {
	return readDefinitions(r, name, func(def *ShellFolder) *string {
		if def.AlternateNames == nil {
			def.AlternateNames = []string{}
		}
		return &def.Identifier
	})
}

// ReadKnownFolders reads a known folder store. name is used in errors.
func ReadKnownFolders(r io.Reader, name string) ([]*KnownFolder, error) {
	return readDefinitions(r, name, func(def *KnownFolder) *string {
		if def.AlternateDisplayNames == nil {
			def.AlternateDisplayNames = []string{}
		}
		if def.CSIDL == nil {
			def.CSIDL = []string{}
		}
		return &def.Identifier
	})
}

// ReadControlPanelItems reads a control panel item store. name is used in
// errors.
func ReadControlPanelItems(r io.Reader, name string) ([]*ControlPanelItem, error) {
	return readDefinitions(r, name, func(def *ControlPanelItem) *string {
		if def.AlternateModuleNames == nil {
			def.AlternateModuleNames = []string{}
		}
		return &def.Identifier
	})
}

// readDefinitions decodes every document of the stream into a T. prepare
// initializes empty lists and returns the identifier field.
func readDefinitions[T any](r io.Reader, name string, prepare func(*T) *string) ([]*T, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}

	docs, err := yamldocs.Parse(data)
	if err != nil {
		return nil, errors.NewParseError("yaml", name, err.Error(), err)
	}

	var defs []*T
	for _, doc := range docs {
		def := new(T)
		if err := doc.Decode(def, yaml.DisallowUnknownField()); err != nil {
			return nil, documentError(name, doc, err.Error(), err)
		}

		id := prepare(def)
		if *id == "" {
			return nil, documentError(name, doc, "missing identifier",
				errors.NewValidationError("identifier", "", "cannot be empty"))
		}
		canonical, err := guid.Canonical(*id)
		if err != nil {
			return nil, documentError(name, doc, err.Error(), err)
		}
		*id = canonical
		defs = append(defs, def)
	}
	return defs, nil
}

func documentError(name string, doc yamldocs.Document, msg string, err error) error {
	return &errors.ParseError{
		Format:  "yaml",
		File:    name,
		Line:    doc.Line,
		Message: fmt.Sprintf("document %d: %s", doc.Index, msg),
		Err:     err,
	}
}

// WriteShellFolders writes a shell folder store.
func WriteShellFolders(w io.Writer, defs []*ShellFolder) error {
	return writeDefinitions(w, KindShellFolder, defs)
}

// WriteKnownFolders writes a known folder store.
func WriteKnownFolders(w io.Writer, defs []*KnownFolder) error {
	return writeDefinitions(w, KindKnownFolder, defs)
}

// WriteControlPanelItems writes a control panel item store.
func WriteControlPanelItems(w io.Writer, defs []*ControlPanelItem) error {
	return writeDefinitions(w, KindControlPanelItem, defs)
}

func writeDefinitions[T any](w io.Writer, kind Kind, defs []T) error {
	var buf bytes.Buffer
	buf.WriteString(kind.Header())
	buf.WriteByte('\n')

	for _, def := range defs {
		data, err := yaml.MarshalWithOptions(def,
			yaml.Indent(2),
			yaml.IndentSequence(false),
		)
		if err != nil {
			return fmt.Errorf("marshaling %s definition: %w", kind, err)
		}
		buf.WriteString("---\n")
		buf.Write(data)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// LoadFile reads the store at path into c and returns its kind.
func LoadFile(path string, c *Catalog) (Kind, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.WrapIO("read", path, err)
	}

	kind, err := DetectKind(bytes.NewReader(data))
	if err != nil {
		return "", errors.WrapParse("yaml", path, err)
	}

	switch kind {
	case KindShellFolder:
		defs, err := ReadShellFolders(bytes.NewReader(data), path)
		if err != nil {
			return kind, err
		}
		return kind, setAll(c.ShellFolders, defs)
	case KindKnownFolder:
		defs, err := ReadKnownFolders(bytes.NewReader(data), path)
		if err != nil {
			return kind, err
		}
		return kind, setAll(c.KnownFolders, defs)
	default:
		defs, err := ReadControlPanelItems(bytes.NewReader(data), path)
		if err != nil {
			return kind, err
		}
		return kind, setAll(c.ControlPanelItems, defs)
	}
}

func setAll[T Definition](c *Collection[T], defs []T) error {
	for _, def := range defs {
		if err := c.Set(def); err != nil {
			return err
		}
	}
	return nil
}

// Write writes the definitions of one kind from c as a store.
func Write(w io.Writer, kind Kind, c *Catalog) error {
	switch kind {
	case KindShellFolder:
		return WriteShellFolders(w, c.ShellFolders.List())
	case KindKnownFolder:
		return WriteKnownFolders(w, c.KnownFolders.List())
	case KindControlPanelItem:
		return WriteControlPanelItems(w, c.ControlPanelItems.List())
	}
	return errors.NewValidationError("kind", kind, "unknown store kind")
}

// SaveFile writes the definitions of one kind from c to path.
func SaveFile(path string, kind Kind, c *Catalog) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}

	var buf bytes.Buffer
	if err := Write(&buf, kind, c); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
