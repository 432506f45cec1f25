package resources

import (
	"debug/pe"
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"os"
	"sort"
	"strings"

	"github.com/agentstation/winshl/pkg/errors"
)

const (
	resourceDirectoryIndex = 2

	typeString  = 6
	typeVersion = 16
	typeMUI     = "MUI"

	fixedFileInfoSignature = 0xfeef04bd
	muiSignature           = 0xfecdfecd
	muiHeaderSize          = 0x84

	maxResourceEntries = 4096
)

// Option configures how a module is read.
type Option func(*options)

type options struct {
	preferredLanguage uint32
}

// WithPreferredLanguage selects the language used when a string-table block
// exists in several languages.
func WithPreferredLanguage(lcid uint32) Option {
	return func(o *options) {
		o.preferredLanguage = lcid
	}
}

// PEModule is a Module read from a PE image.
type PEModule struct {
	closer      io.Closer
	stringTable []StringTableEntry
	version     string
	muiLanguage string
}

var _ Module = (*PEModule)(nil)

// OpenFile opens the PE image at path.
func OpenFile(path string, opts ...Option) (*PEModule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	m, err := Open(f, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return m, nil
}

// Open reads the resources of the PE image in r. If r is an io.Closer it is
// closed by the module's Close.
func Open(r io.ReaderAt, opts ...Option) (*PEModule, error) {
	o := options{preferredLanguage: 0x0409}
	for _, opt := range opts {
		opt(&o)
	}

	f, err := pe.NewFile(r)
	if err != nil {
		return nil, errors.WrapParse("pe", "", err)
	}

	leaves, err := readResources(f)
	if err != nil {
		return nil, err
	}

	m := &PEModule{}
	if c, ok := r.(io.Closer); ok {
		m.closer = c
	}
	m.stringTable = selectStringTable(leaves, o.preferredLanguage)
	for _, leaf := range leaves {
		switch {
		case leaf.typ.id == typeVersion && m.version == "":
			m.version = parseFixedFileVersion(leaf.data)
		case strings.EqualFold(leaf.typ.name, typeMUI) && m.muiLanguage == "":
			m.muiLanguage = parseMUILanguage(leaf.data)
		}
	}
	return m, nil
}

// HasStringTable implements Module.
func (m *PEModule) HasStringTable() bool {
	return len(m.stringTable) > 0
}

// StringTableEntries implements Module.
func (m *PEModule) StringTableEntries() iter.Seq[StringTableEntry] {
	return func(yield func(StringTableEntry) bool) {
		for _, e := range m.stringTable {
			if !yield(e) {
				return
			}
		}
	}
}

// PreferredMUILanguageTag implements Module.
func (m *PEModule) PreferredMUILanguageTag() (string, bool) {
	return m.muiLanguage, m.muiLanguage != ""
}

// FileVersion implements Module.
func (m *PEModule) FileVersion() (string, bool) {
	return m.version, m.version != ""
}

// Close implements Module.
func (m *PEModule) Close() error {
	if m.closer == nil {
		return nil
	}
	err := m.closer.Close()
	m.closer = nil
	return err
}

type resourceName struct {
	id   uint32
	name string
}

type resourceLeaf struct {
	typ      resourceName
	name     resourceName
	language uint32
	data     []byte
}

func readResources(f *pe.File) ([]resourceLeaf, error) {
	var dir pe.DataDirectory
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		if oh.NumberOfRvaAndSizes > resourceDirectoryIndex {
			dir = oh.DataDirectory[resourceDirectoryIndex]
		}
	case *pe.OptionalHeader64:
		if oh.NumberOfRvaAndSizes > resourceDirectoryIndex {
			dir = oh.DataDirectory[resourceDirectoryIndex]
		}
	}
	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return nil, nil
	}

	w := &resourceWalker{file: f}
	rsrc, err := w.readRVA(dir.VirtualAddress, dir.Size)
	if err != nil {
		return nil, err
	}
	w.rsrc = rsrc
	if err := w.walk(0, 0, resourceLeaf{}); err != nil {
		return nil, err
	}
	return w.leaves, nil
}

// wanted reports whether leaves of type typ are read. Other types are
// skipped without touching their data.
func wanted(typ resourceName) bool {
	if typ.name != "" {
		return strings.EqualFold(typ.name, typeMUI)
	}
	return typ.id == typeString || typ.id == typeVersion
}

// loadedSection is the content of a section read once.
type loadedSection struct {
	name string
	rva  uint32
	data []byte
}

// readRVA returns size bytes at the relative virtual address rva. Each
// section is read at most once; the result aliases its content.
func (w *resourceWalker) readRVA(rva, size uint32) ([]byte, error) {
	for _, s := range w.sections {
		if rva >= s.rva && uint64(rva-s.rva) < uint64(len(s.data)) {
			return s.slice(rva, size)
		}
	}

	for _, s := range w.file.Sections {
		extent := s.VirtualSize
		if s.Size > extent {
			extent = s.Size
		}
		if rva < s.VirtualAddress || rva >= s.VirtualAddress+extent {
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, errors.WrapParse("pe", s.Name, err)
		}
		loaded := loadedSection{name: s.Name, rva: s.VirtualAddress, data: data}
		w.sections = append(w.sections, loaded)
		return loaded.slice(rva, size)
	}
	return nil, errors.NewParseError("pe", "", fmt.Sprintf("no section contains address 0x%x", rva), nil)
}

func (s loadedSection) slice(rva, size uint32) ([]byte, error) {
	start := rva - s.rva
	if uint64(start)+uint64(size) > uint64(len(s.data)) {
		return nil, errors.NewParseError("pe", s.name, fmt.Sprintf("resource data at 0x%x exceeds section", rva), nil)
	}
	return s.data[start : start+size : start+size], nil
}

type resourceWalker struct {
	file     *pe.File
	sections []loadedSection
	rsrc     []byte
	leaves   []resourceLeaf
}

func (w *resourceWalker) outOfBounds(what string, off uint32) error {
	return errors.NewParseError("pe", "", fmt.Sprintf("%s at 0x%x outside resource section", what, off), nil)
}

// walk reads the directory at off. Level 0 is the type, level 1 the
// resource name and level 2 the language.
func (w *resourceWalker) walk(off uint32, level int, leaf resourceLeaf) error {
	if uint64(off)+16 > uint64(len(w.rsrc)) {
		return w.outOfBounds("directory", off)
	}
	count := uint32(binary.LittleEndian.Uint16(w.rsrc[off+12:])) + uint32(binary.LittleEndian.Uint16(w.rsrc[off+14:]))
	if count > maxResourceEntries {
		return errors.NewParseError("pe", "", "too many resource entries", nil)
	}

	for i := range count {
		entry := off + 16 + 8*i
		if uint64(entry)+8 > uint64(len(w.rsrc)) {
			return w.outOfBounds("directory entry", entry)
		}
		nameField := binary.LittleEndian.Uint32(w.rsrc[entry:])
		dataField := binary.LittleEndian.Uint32(w.rsrc[entry+4:])

		name := resourceName{id: nameField}
		if nameField&0x80000000 != 0 {
			s, err := w.readName(nameField &^ 0x80000000)
			if err != nil {
				return err
			}
			name = resourceName{name: s}
		}

		next := leaf
		switch level {
		case 0:
			if !wanted(name) {
				continue
			}
			next.typ = name
		case 1:
			next.name = name
		default:
			next.language = name.id
		}

		isDir := dataField&0x80000000 != 0
		switch {
		case isDir && level < 2:
			if err := w.walk(dataField&^0x80000000, level+1, next); err != nil {
				return err
			}
		case !isDir && level == 2:
			data, err := w.readData(dataField)
			if err != nil {
				return err
			}
			next.data = data
			w.leaves = append(w.leaves, next)
		default:
			return errors.NewParseError("pe", "", "unexpected resource directory depth", nil)
		}
	}
	return nil
}

func (w *resourceWalker) readName(off uint32) (string, error) {
	if uint64(off)+2 > uint64(len(w.rsrc)) {
		return "", w.outOfBounds("name", off)
	}
	n := uint32(binary.LittleEndian.Uint16(w.rsrc[off:]))
	end := uint64(off) + 2 + 2*uint64(n)
	if end > uint64(len(w.rsrc)) {
		return "", w.outOfBounds("name", off)
	}
	return decodeUTF16(w.rsrc[off+2 : end]), nil
}

func (w *resourceWalker) readData(off uint32) ([]byte, error) {
	if uint64(off)+16 > uint64(len(w.rsrc)) {
		return nil, w.outOfBounds("data entry", off)
	}
	rva := binary.LittleEndian.Uint32(w.rsrc[off:])
	size := binary.LittleEndian.Uint32(w.rsrc[off+4:])
	return w.readRVA(rva, size)
}

// selectStringTable picks one language per block, the preferred language
// when present, and normalizes the one-based resource id to a block id.
func selectStringTable(leaves []resourceLeaf, preferred uint32) []StringTableEntry {
	chosen := make(map[uint32]resourceLeaf)
	for _, leaf := range leaves {
		if leaf.typ.id != typeString || leaf.typ.name != "" || leaf.name.id == 0 {
			continue
		}
		current, ok := chosen[leaf.name.id]
		if !ok || (current.language != preferred && leaf.language == preferred) {
			chosen[leaf.name.id] = leaf
		}
	}

	entries := make([]StringTableEntry, 0, len(chosen))
	for id, leaf := range chosen {
		entries = append(entries, StringTableEntry{BlockID: int(id) - 1, Data: leaf.data})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].BlockID < entries[j].BlockID })
	return entries
}

// parseFixedFileVersion locates VS_FIXEDFILEINFO in a version resource.
func parseFixedFileVersion(data []byte) string {
	for off := 0; off+16 <= len(data); off += 4 {
		if binary.LittleEndian.Uint32(data[off:]) != fixedFileInfoSignature {
			continue
		}
		ms := binary.LittleEndian.Uint32(data[off+8:])
		ls := binary.LittleEndian.Uint32(data[off+12:])
		return fmt.Sprintf("%d.%d.%d.%d", ms>>16, ms&0xffff, ls>>16, ls&0xffff)
	}
	return ""
}

// parseMUILanguage returns the language, or the ultimate fallback
// language, declared by a MUI resource.
func parseMUILanguage(data []byte) string {
	if len(data) < muiHeaderSize || binary.LittleEndian.Uint32(data) != muiSignature {
		return ""
	}
	for _, field := range []int{116, 124} {
		off := binary.LittleEndian.Uint32(data[field:])
		size := binary.LittleEndian.Uint32(data[field+4:])
		if off == 0 || size == 0 || uint64(off)+uint64(size) > uint64(len(data)) {
			continue
		}
		if lang := decodeUTF16Z(data[off : off+size]); lang != "" {
			return lang
		}
	}
	return ""
}
