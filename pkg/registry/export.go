package registry

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/agentstation/winshl/pkg/errors"
)

const (
	headerV5       = "Windows Registry Editor Version 5.00"
	headerRegedit4 = "REGEDIT4"
)

// OpenExport reads a registry export file.
func OpenExport(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	return ReadExport(f, path)
}

// ReadExport parses a ".reg" export. UTF-16 exports must carry a byte order
// mark; anything else is read as UTF-8. Deletions ("[-key]", "name"=-) are
// ignored.
func ReadExport(r io.Reader, name string) (*Memory, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, decoder))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	p := &exportParser{reg: NewMemory(), file: name}
	if err := p.parse(scanner); err != nil {
		return nil, err
	}
	return p.reg, nil
}

type exportParser struct {
	reg     *Memory
	file    string
	line    int
	start   int
	current *MemoryKey
}

func (p *exportParser) errorf(msg string) error {
	return &errors.ParseError{Format: "reg", File: p.file, Line: p.start, Message: msg}
}

func (p *exportParser) parse(scanner *bufio.Scanner) error {
	headerSeen := false
	var pending strings.Builder

	for scanner.Scan() {
		p.line++
		line := strings.TrimRight(scanner.Text(), " \t\r")

		if pending.Len() > 0 {
			line = strings.TrimLeft(line, " \t")
		} else {
			p.start = p.line
		}
		if strings.HasSuffix(line, `\`) && !isKeyLine(line) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			continue
		}
		pending.WriteString(line)
		full := strings.TrimSpace(pending.String())
		pending.Reset()

		if full == "" || strings.HasPrefix(full, ";") {
			continue
		}
		if !headerSeen {
			if full != headerV5 && full != headerRegedit4 {
				return p.errorf("missing registry export header")
			}
			headerSeen = true
			continue
		}
		if err := p.parseLine(full); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.WrapIO("read", p.file, err)
	}
	if !headerSeen {
		return p.errorf("empty registry export")
	}
	return nil
}

func isKeyLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "[")
}

func (p *exportParser) parseLine(line string) error {
	if strings.HasPrefix(line, "[") {
		if !strings.HasSuffix(line, "]") {
			return p.errorf("unterminated key name")
		}
		path := line[1 : len(line)-1]
		if strings.HasPrefix(path, "-") {
			p.current = nil
			return nil
		}
		p.current = p.reg.CreateKey(path)
		return nil
	}

	name, rest, err := p.parseValueName(line)
	if err != nil {
		return err
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "=") {
		return p.errorf("expected '=' after value name")
	}
	rest = strings.TrimSpace(rest[1:])

	if rest == "-" {
		return nil
	}
	data, err := p.parseData(rest)
	if err != nil {
		return err
	}
	if p.current == nil {
		return nil
	}
	p.current.SetValue(name, data)
	return nil
}

func (p *exportParser) parseValueName(line string) (string, string, error) {
	if strings.HasPrefix(line, "@") {
		return "", line[1:], nil
	}
	if !strings.HasPrefix(line, `"`) {
		return "", "", p.errorf("expected value name")
	}
	name, n, ok := unquote(line)
	if !ok {
		return "", "", p.errorf("unterminated value name")
	}
	return name, line[n:], nil
}

// unquote reads a quoted string at the start of s, handling \\ and \"
// escapes. It returns the string and the number of bytes consumed.
func unquote(s string) (string, int, bool) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
			return b.String(), i + 1, true
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, false
}

func (p *exportParser) parseData(data string) ([]byte, error) {
	switch {
	case strings.HasPrefix(data, `"`):
		s, n, ok := unquote(data)
		if !ok || strings.TrimSpace(data[n:]) != "" {
			return nil, p.errorf("malformed string value")
		}
		return EncodeString(s), nil

	case strings.HasPrefix(data, "dword:"):
		v, err := strconv.ParseUint(strings.TrimSpace(data[len("dword:"):]), 16, 32)
		if err != nil {
			return nil, p.errorf("malformed dword value")
		}
		return binary.LittleEndian.AppendUint32(nil, uint32(v)), nil

	case strings.HasPrefix(data, "hex:"):
		return p.parseHex(data[len("hex:"):])

	case strings.HasPrefix(data, "hex("):
		end := strings.Index(data, "):")
		if end < 0 {
			return nil, p.errorf("malformed typed hex value")
		}
		if _, err := strconv.ParseUint(data[len("hex("):end], 16, 32); err != nil {
			return nil, p.errorf("malformed value type")
		}
		return p.parseHex(data[end+2:])
	}
	return nil, p.errorf("unsupported value data")
}

func (p *exportParser) parseHex(s string) ([]byte, error) {
	var buf bytes.Buffer
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b, err := hex.DecodeString(part)
		if err != nil || len(b) != 1 {
			return nil, p.errorf("malformed hex byte " + strconv.Quote(part))
		}
		buf.WriteByte(b[0])
	}
	return buf.Bytes(), nil
}
