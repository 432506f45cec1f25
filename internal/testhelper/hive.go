package testhelper

import (
	"encoding/binary"
	"strings"
)

const (
	hiveBaseBlockSize = 0x1000
	hiveBinHeaderSize = 0x20
	noCell            = 0xffffffff

	keyHiveEntry  = 0x0004
	keyCompName   = 0x0020
	valueCompName = 0x0001
	regSZ         = 1
)

type hiveNode struct {
	name     string
	children []*hiveNode
	values   [][2]string
}

func (n *hiveNode) child(name string) *hiveNode {
	for _, c := range n.children {
		if strings.EqualFold(c.name, name) {
			return c
		}
	}
	c := &hiveNode{name: name}
	n.children = append(n.children, c)
	return c
}

// BuildHive returns a binary registry hive (regf) holding keys. Key paths
// start with mount, the key the hive root stands for, such as
// HKEY_LOCAL_MACHINE\SOFTWARE. Values are REG_SZ; "@" is the default value.
// Keys outside mount are skipped.
func BuildHive(mount string, keys []RegKey) []byte {
	root := &hiveNode{name: "ROOT"}
	prefix := strings.ToLower(strings.Trim(mount, `\`))
	for _, k := range keys {
		path := strings.Trim(k.Path, `\`)
		if !strings.HasPrefix(strings.ToLower(path), prefix) {
			continue
		}
		node := root
		for _, part := range strings.Split(path[len(prefix):], `\`) {
			if part != "" {
				node = node.child(part)
			}
		}
		node.values = append(node.values, k.Values...)
	}

	b := &hiveBuilder{data: make([]byte, hiveBinHeaderSize)}
	rootOffset := b.key(root, noCell, keyHiveEntry|keyCompName)

	size := (len(b.data) + hiveBaseBlockSize - 1) / hiveBaseBlockSize * hiveBaseBlockSize
	if free := size - len(b.data); free > 0 {
		cell := make([]byte, free)
		binary.LittleEndian.PutUint32(cell, uint32(free))
		b.data = append(b.data, cell...)
	}
	copy(b.data, "hbin")
	binary.LittleEndian.PutUint32(b.data[8:], uint32(size))

	base := make([]byte, hiveBaseBlockSize)
	copy(base, "regf")
	le := binary.LittleEndian
	le.PutUint32(base[0x04:], 1)
	le.PutUint32(base[0x08:], 1)
	le.PutUint32(base[0x14:], 1)
	le.PutUint32(base[0x18:], 5)
	le.PutUint32(base[0x20:], 1)
	le.PutUint32(base[0x24:], rootOffset)
	le.PutUint32(base[0x28:], uint32(size))
	le.PutUint32(base[0x2c:], 1)
	var sum uint32
	for i := 0; i < 0x1fc; i += 4 {
		sum ^= le.Uint32(base[i:])
	}
	le.PutUint32(base[0x1fc:], sum)

	return append(base, b.data...)
}

// hiveBuilder lays out cells after the hive bin header. Offsets are
// relative to the first hive bin.
type hiveBuilder struct {
	data []byte
}

func (b *hiveBuilder) alloc(payload []byte) uint32 {
	offset := uint32(len(b.data))
	size := (4 + len(payload) + 7) &^ 7
	cell := make([]byte, size)
	binary.LittleEndian.PutUint32(cell, uint32(-int32(size)))
	copy(cell[4:], payload)
	b.data = append(b.data, cell...)
	return offset
}

func (b *hiveBuilder) key(n *hiveNode, parent uint32, flags uint16) uint32 {
	le := binary.LittleEndian
	nk := make([]byte, 0x4c+len(n.name))
	copy(nk, "nk")
	le.PutUint16(nk[0x02:], flags)
	le.PutUint32(nk[0x10:], parent)
	for _, off := range []int{0x1c, 0x20, 0x28, 0x2c, 0x30} {
		le.PutUint32(nk[off:], noCell)
	}
	le.PutUint16(nk[0x48:], uint16(len(n.name)))
	copy(nk[0x4c:], n.name)
	offset := b.alloc(nk)
	patch := func(field int, v uint32) {
		le.PutUint32(b.data[int(offset)+4+field:], v)
	}

	if len(n.children) > 0 {
		lf := make([]byte, 4+8*len(n.children))
		copy(lf, "lf")
		le.PutUint16(lf[2:], uint16(len(n.children)))
		for i, c := range n.children {
			le.PutUint32(lf[4+8*i:], b.key(c, offset, keyCompName))
			copy(lf[8+8*i:12+8*i], c.name)
		}
		patch(0x14, uint32(len(n.children)))
		patch(0x1c, b.alloc(lf))
	}

	if len(n.values) > 0 {
		list := make([]byte, 4*len(n.values))
		for i, v := range n.values {
			le.PutUint32(list[4*i:], b.value(v[0], v[1]))
		}
		patch(0x24, uint32(len(n.values)))
		patch(0x28, b.alloc(list))
	}
	return offset
}

func (b *hiveBuilder) value(name, data string) uint32 {
	if name == "@" {
		name = ""
	}
	raw := append(utf16(data), 0, 0)

	le := binary.LittleEndian
	vk := make([]byte, 0x14+len(name))
	copy(vk, "vk")
	le.PutUint16(vk[0x02:], uint16(len(name)))
	if len(raw) <= 4 {
		le.PutUint32(vk[0x04:], uint32(len(raw))|0x80000000)
		copy(vk[0x08:0x0c], raw)
	} else {
		le.PutUint32(vk[0x04:], uint32(len(raw)))
		le.PutUint32(vk[0x08:], b.alloc(raw))
	}
	le.PutUint32(vk[0x0c:], regSZ)
	le.PutUint16(vk[0x10:], valueCompName)
	copy(vk[0x14:], name)
	return b.alloc(vk)
}
