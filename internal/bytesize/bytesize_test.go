package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want ByteSize
	}{
		{"0", 0},
		{"1024", 1024},
		{"512B", 512},
		{"64Ki", 64 * KiB},
		{"1MiB", MiB},
		{"1mi", MiB},
		{" 2 Gi ", 2 * GiB},
		{"100KB", 100 * KB},
		{"1.5MB", 1500 * KB},
		{"0.5Mi", 512 * KiB},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "10XB", "1.2.3Mi"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, v := range []ByteSize{0, 1500, 64 * KiB, MiB, 3 * GiB} {
		text, err := v.MarshalText()
		require.NoError(t, err)

		var got ByteSize
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, v, got, string(text))
	}
	assert.Equal(t, "1Mi", MiB.String())
	assert.Equal(t, "1500", ByteSize(1500).String())
}
