// Package bytesize parses human-readable sizes such as "1Mi" or "512KB"
// used for request limits in the configuration file.
package bytesize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
)

// ByteSize is a size in bytes.
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
)

var pattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*([a-z]*)\s*$`)

var units = map[string]ByteSize{
	"": B, "b": B,
	"k": KB, "kb": KB,
	"m": MB, "mb": MB,
	"g": GB, "gb": GB,
	"ki": KiB, "kib": KiB,
	"mi": MiB, "mib": MiB,
	"gi": GiB, "gib": GiB,
}

// Parse reads a size such as "1024", "64Ki", "1.5MB" or "2Gi". Binary
// suffixes are powers of 1024, decimal ones powers of 1000.
func Parse(s string) (ByteSize, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	unit, ok := units[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("unknown size unit %q in %q", m[2], s)
	}
	if strings.Contains(m[1], ".") {
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size %q: %w", s, err)
		}
		return ByteSize(f * float64(unit)), nil
	}
	n, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return ByteSize(n) * unit, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// MarshalText writes the size in its shortest exact binary form, so
// 1048576 becomes "1Mi" and 1500 stays "1500".
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b ByteSize) String() string {
	switch {
	case b == 0:
		return "0"
	case b%GiB == 0:
		return strconv.FormatUint(uint64(b/GiB), 10) + "Gi"
	case b%MiB == 0:
		return strconv.FormatUint(uint64(b/MiB), 10) + "Mi"
	case b%KiB == 0:
		return strconv.FormatUint(uint64(b/KiB), 10) + "Ki"
	default:
		return strconv.FormatUint(uint64(b), 10)
	}
}

// Int64 returns the size as an int64 for APIs such as http.MaxBytesReader.
func (b ByteSize) Int64() int64 {
	return int64(b)
}

// JSONSchema describes ByteSize as a string or an integer byte count.
func (ByteSize) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string", Pattern: `^\s*\d+(\.\d+)?\s*([KkMmGg][Ii]?[Bb]?|[Bb])?\s*$`},
			{Type: "integer", Minimum: "0"},
		},
		Description: `Size in bytes, e.g. 1048576, "1Mi" or "512KB"`,
	}
}
