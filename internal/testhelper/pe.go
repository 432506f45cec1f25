// Package testhelper builds Windows artifacts for tests: PE images with
// resource sections and mounted-volume directory trees.
package testhelper

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Module describes the resources of a generated PE image.
type Module struct {
	// Strings maps string ids to values, stored in Language.
	Strings map[int]string

	// ExtraLanguages adds string tables in other languages.
	ExtraLanguages map[uint16]map[int]string

	// Language of Strings. Defaults to 0x0409.
	Language uint16

	// FileVersion such as [4]uint16{5, 1, 2600, 5512}; zero means none.
	FileVersion [4]uint16

	// MUILanguage and MUIFallbackLanguage add a MUI resource.
	MUILanguage         string
	MUIFallbackLanguage string

	// Icons adds that many RT_ICON resources whose data entries point
	// outside the image.
	Icons int
}

type leaf struct {
	typeID   uint32
	typeName string
	id       uint32
	lang     uint32
	data     []byte
	detached bool
}

const (
	rsrcRVA        = 0x1000
	headersSize    = 0x200
	sectionAlign   = 0x1000
	fileAlign      = 0x200
	iconTypeID     = 3
	stringTypeID   = 6
	versionTypeID  = 16
	muiSignature   = 0xfecdfecd
	muiHeaderSize  = 0x84
	fixedSignature = 0xfeef04bd
)

// BuildModule returns a PE32 image carrying the described resources.
func BuildModule(m Module) []byte {
	if m.Language == 0 {
		m.Language = 0x0409
	}

	var leaves []leaf
	leaves = append(leaves, stringLeaves(m.Strings, m.Language)...)
	for lang, strs := range m.ExtraLanguages {
		leaves = append(leaves, stringLeaves(strs, lang)...)
	}
	if m.FileVersion != [4]uint16{} {
		leaves = append(leaves, leaf{typeID: versionTypeID, id: 1, lang: uint32(m.Language), data: versionInfo(m.FileVersion)})
	}
	if m.MUILanguage != "" || m.MUIFallbackLanguage != "" {
		leaves = append(leaves, leaf{typeName: "MUI", id: 1, lang: uint32(m.Language), data: muiResource(m.MUILanguage, m.MUIFallbackLanguage)})
	}

	for i := range m.Icons {
		leaves = append(leaves, leaf{typeID: iconTypeID, id: uint32(i + 1), lang: uint32(m.Language), data: make([]byte, 64), detached: true})
	}

	return buildImage(buildResourceSection(leaves, rsrcRVA))
}

func stringLeaves(strs map[int]string, lang uint16) []leaf {
	blocks := make(map[int][16]string)
	for id, s := range strs {
		block := blocks[id/16]
		block[id%16] = s
		blocks[id/16] = block
	}
	var out []leaf
	for blockID, block := range blocks {
		var buf bytes.Buffer
		for _, s := range block {
			u := utf16(s)
			_ = binary.Write(&buf, binary.LittleEndian, uint16(len(u)/2))
			buf.Write(u)
		}
		out = append(out, leaf{typeID: stringTypeID, id: uint32(blockID + 1), lang: uint32(lang), data: buf.Bytes()})
	}
	return out
}

func utf16(s string) []byte {
	b, _ := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	return b
}

func versionInfo(v [4]uint16) []byte {
	var buf bytes.Buffer
	key := append(utf16("VS_VERSION_INFO"), 0, 0)
	_ = binary.Write(&buf, binary.LittleEndian, []uint16{0, 52, 0})
	buf.Write(key)
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
	fixed := []uint32{
		fixedSignature, 0x00010000,
		uint32(v[0])<<16 | uint32(v[1]), uint32(v[2])<<16 | uint32(v[3]),
		uint32(v[0])<<16 | uint32(v[1]), uint32(v[2])<<16 | uint32(v[3]),
		0x3f, 0, 0x40004, 1, 0, 0, 0,
	}
	_ = binary.Write(&buf, binary.LittleEndian, fixed)
	data := buf.Bytes()
	binary.LittleEndian.PutUint16(data, uint16(len(data)))
	return data
}

func muiResource(lang, fallback string) []byte {
	data := make([]byte, muiHeaderSize)
	binary.LittleEndian.PutUint32(data, muiSignature)
	for i, s := range []string{lang, fallback} {
		if s == "" {
			continue
		}
		encoded := append(utf16(s), 0, 0)
		binary.LittleEndian.PutUint32(data[116+8*i:], uint32(len(data)))
		binary.LittleEndian.PutUint32(data[120+8*i:], uint32(len(encoded)))
		data = append(data, encoded...)
	}
	binary.LittleEndian.PutUint32(data[4:], uint32(len(data)))
	return data
}

type resourceKey struct {
	id   uint32
	name string
}

func (k resourceKey) less(o resourceKey) bool {
	if (k.name != "") != (o.name != "") {
		return k.name != ""
	}
	if k.name != "" {
		return strings.ToUpper(k.name) < strings.ToUpper(o.name)
	}
	return k.id < o.id
}

type node struct {
	key      resourceKey
	children []*node
	leaf     *leaf
}

func (n *node) child(key resourceKey) *node {
	for _, c := range n.children {
		if c.key == key {
			return c
		}
	}
	c := &node{key: key}
	n.children = append(n.children, c)
	sort.Slice(n.children, func(i, j int) bool { return n.children[i].key.less(n.children[j].key) })
	return c
}

// buildResourceSection lays out directories first, then names, data
// entries and finally the data itself.
func buildResourceSection(leaves []leaf, baseRVA uint32) []byte {
	root := &node{}
	for i := range leaves {
		l := &leaves[i]
		t := root.child(resourceKey{id: l.typeID, name: l.typeName})
		n := t.child(resourceKey{id: l.id})
		n.child(resourceKey{id: l.lang}).leaf = l
	}

	dirOffsets := make(map[*node]uint32)
	var dirs []*node
	var walk func(n *node)
	walk = func(n *node) {
		if n.leaf != nil {
			return
		}
		dirs = append(dirs, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)

	offset := uint32(0)
	for _, d := range dirs {
		dirOffsets[d] = offset
		offset += 16 + 8*uint32(len(d.children))
	}

	nameOffsets := make(map[string]uint32)
	for _, d := range dirs {
		for _, c := range d.children {
			if c.key.name != "" {
				if _, ok := nameOffsets[c.key.name]; !ok {
					nameOffsets[c.key.name] = offset
					offset += 2 + uint32(len(utf16(c.key.name)))
				}
			}
		}
	}
	offset = (offset + 3) &^ 3

	entryOffsets := make(map[*leaf]uint32)
	for i := range leaves {
		entryOffsets[&leaves[i]] = offset
		offset += 16
	}
	dataOffsets := make(map[*leaf]uint32)
	for i := range leaves {
		dataOffsets[&leaves[i]] = offset
		offset += (uint32(len(leaves[i].data)) + 3) &^ 3
	}

	out := make([]byte, offset)
	for _, d := range dirs {
		off := dirOffsets[d]
		var named, ids uint16
		for _, c := range d.children {
			if c.key.name != "" {
				named++
			} else {
				ids++
			}
		}
		binary.LittleEndian.PutUint16(out[off+12:], named)
		binary.LittleEndian.PutUint16(out[off+14:], ids)
		for i, c := range d.children {
			entry := off + 16 + 8*uint32(i)
			nameField := c.key.id
			if c.key.name != "" {
				nameField = nameOffsets[c.key.name] | 0x80000000
			}
			binary.LittleEndian.PutUint32(out[entry:], nameField)
			if c.leaf != nil {
				binary.LittleEndian.PutUint32(out[entry+4:], entryOffsets[c.leaf])
			} else {
				binary.LittleEndian.PutUint32(out[entry+4:], dirOffsets[c]|0x80000000)
			}
		}
	}
	for name, off := range nameOffsets {
		u := utf16(name)
		binary.LittleEndian.PutUint16(out[off:], uint16(len(u)/2))
		copy(out[off+2:], u)
	}
	for i := range leaves {
		l := &leaves[i]
		entry := entryOffsets[l]
		rva := baseRVA + dataOffsets[l]
		if l.detached {
			rva = 0x7fff0000
		}
		binary.LittleEndian.PutUint32(out[entry:], rva)
		binary.LittleEndian.PutUint32(out[entry+4:], uint32(len(l.data)))
		copy(out[dataOffsets[l]:], l.data)
	}
	return out
}

func buildImage(rsrc []byte) []byte {
	var buf bytes.Buffer

	dos := make([]byte, 0x40)
	copy(dos, "MZ")
	binary.LittleEndian.PutUint32(dos[0x3c:], 0x40)
	buf.Write(dos)
	buf.WriteString("PE\x00\x00")

	rawSize := (uint32(len(rsrc)) + fileAlign - 1) &^ (fileAlign - 1)
	if rawSize == 0 {
		rawSize = fileAlign
	}

	var oh pe.OptionalHeader32
	_ = binary.Write(&buf, binary.LittleEndian, pe.FileHeader{
		Machine:              pe.IMAGE_FILE_MACHINE_I386,
		NumberOfSections:     1,
		SizeOfOptionalHeader: uint16(binary.Size(oh)),
		Characteristics:      pe.IMAGE_FILE_EXECUTABLE_IMAGE | pe.IMAGE_FILE_32BIT_MACHINE | pe.IMAGE_FILE_DLL,
	})

	oh = pe.OptionalHeader32{
		Magic:                 0x10b,
		ImageBase:             0x10000000,
		SectionAlignment:      sectionAlign,
		FileAlignment:         fileAlign,
		MajorSubsystemVersion: 4,
		SizeOfImage:           rsrcRVA + (rawSize+sectionAlign-1)&^(sectionAlign-1),
		SizeOfHeaders:         headersSize,
		Subsystem:             pe.IMAGE_SUBSYSTEM_WINDOWS_GUI,
		NumberOfRvaAndSizes:   16,
	}
	if len(rsrc) > 0 {
		oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_RESOURCE] = pe.DataDirectory{
			VirtualAddress: rsrcRVA,
			Size:           uint32(len(rsrc)),
		}
	}
	_ = binary.Write(&buf, binary.LittleEndian, oh)

	var name [8]uint8
	copy(name[:], ".rsrc")
	_ = binary.Write(&buf, binary.LittleEndian, pe.SectionHeader32{
		Name:             name,
		VirtualSize:      uint32(len(rsrc)),
		VirtualAddress:   rsrcRVA,
		SizeOfRawData:    rawSize,
		PointerToRawData: headersSize,
		Characteristics:  pe.IMAGE_SCN_CNT_INITIALIZED_DATA | pe.IMAGE_SCN_MEM_READ,
	})

	image := make([]byte, headersSize+rawSize)
	copy(image, buf.Bytes())
	copy(image[headersSize:], rsrc)
	return image
}
