package registry

import (
	"bytes"
	"io"
	"iter"
	"os"
	"strings"

	"www.velocidex.com/golang/regparser"

	"github.com/agentstation/winshl/pkg/errors"
)

// HiveSignature starts every binary registry hive file.
const HiveSignature = "regf"

var _ Registry = (*Hive)(nil)

// Hive is a registry read from a binary hive file such as
// Windows\System32\config\SOFTWARE. The hive root is mounted at a key path,
// HKEY_LOCAL_MACHINE\Software for the SOFTWARE hive.
type Hive struct {
	hive   *regparser.Registry
	mount  []string
	closer io.Closer
}

// IsHive reports whether r starts with the hive signature.
func IsHive(r io.ReaderAt) bool {
	sig := make([]byte, len(HiveSignature))
	if _, err := r.ReadAt(sig, 0); err != nil {
		return false
	}
	return string(sig) == HiveSignature
}

// OpenHive opens the hive file at path mounted at mount. The file stays open
// until Close.
func OpenHive(path, mount string) (*Hive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	h, err := ReadHive(f, mount)
	if err != nil {
		_ = f.Close()
		return nil, errors.WrapParse("regf", path, err)
	}
	h.closer = f
	return h, nil
}

// ReadHive reads a hive mounted at mount.
func ReadHive(r io.ReaderAt, mount string) (*Hive, error) {
	if !IsHive(r) {
		return nil, errors.New("missing regf signature")
	}
	reg, err := regparser.NewRegistry(r)
	if err != nil {
		return nil, err
	}
	return &Hive{hive: reg, mount: SplitPath(mount)}, nil
}

// GetKeyByPath implements Registry. Paths outside the mount point are not
// found.
func (h *Hive) GetKeyByPath(path string) (Key, bool) {
	parts := SplitPath(path)
	if len(parts) < len(h.mount) {
		return nil, false
	}
	for i, m := range h.mount {
		if !strings.EqualFold(parts[i], m) {
			return nil, false
		}
	}

	node := h.hive.OpenKey("/")
	if node == nil {
		return nil, false
	}
	var key Key = hiveKey{node}
	for _, part := range parts[len(h.mount):] {
		child, ok := key.Subkey(part)
		if !ok {
			return nil, false
		}
		key = child
	}
	return key, true
}

// Close releases the hive file.
func (h *Hive) Close() error {
	if h.closer == nil {
		return nil
	}
	return h.closer.Close()
}

type hiveKey struct {
	node *regparser.CM_KEY_NODE
}

func (k hiveKey) Name() string {
	return k.node.Name()
}

func (k hiveKey) Subkeys() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for _, child := range k.node.Subkeys() {
			if !yield(hiveKey{child}) {
				return
			}
		}
	}
}

func (k hiveKey) Subkey(name string) (Key, bool) {
	for _, child := range k.node.Subkeys() {
		if strings.EqualFold(child.Name(), name) {
			return hiveKey{child}, true
		}
	}
	return nil, false
}

func (k hiveKey) ValueByName(name string) ([]byte, bool) {
	for _, v := range k.node.Values() {
		if !strings.EqualFold(v.ValueName(), name) {
			continue
		}
		data := v.ValueData()
		if data == nil {
			return nil, false
		}
		return bytes.Clone(data.Data), true
	}
	return nil, false
}

// Open opens a hive or a ".reg" export at path, detected by content. A
// hive is mounted at mount; an export carries its own key paths. Hives
// must be closed with CloseRegistry.
func Open(path, mount string) (Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	hive := IsHive(f)
	_ = f.Close()

	if hive {
		return OpenHive(path, mount)
	}
	return OpenExport(path)
}

// CloseRegistry releases reg if it holds open files.
func CloseRegistry(reg Registry) error {
	if c, ok := reg.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
