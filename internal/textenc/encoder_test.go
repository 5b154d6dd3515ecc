package textenc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		want   string
		hasBOM bool
	}{
		{"empty", nil, "utf-8", false},
		{"ascii", []byte("# Rules\nalways lint"), "utf-8", false},
		{"utf8 multibyte", []byte("# Regras\nnão faça isso"), "utf-8", false},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "hi"...), "utf-8", true},
		{"utf16le bom", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "utf-16le", true},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "utf-16be", true},
		{"utf16le no bom", []byte{'#', 0, ' ', 0, 'h', 0, 'i', 0}, "utf-16le", false},
		{"windows-1252 smart quotes", []byte("\x93quoted\x94 text"), "windows-1252", false},
		{"latin1", []byte("caf\xe9"), "iso-8859-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectEncoding(tt.data)
			assert.Equal(t, tt.want, got.Encoding)
			assert.Equal(t, tt.hasBOM, got.HasBOM)
		})
	}
}

func TestNormalizeToUTF8(t *testing.T) {
	cases := []struct {
		data []byte
		want string
	}{
		{append([]byte{0xEF, 0xBB, 0xBF}, "# Title"...), "# Title"},
		{[]byte{0xFF, 0xFE, '#', 0, ' ', 0, 'A', 0}, "# A"},
		{[]byte("\x93hi\x94"), "“hi”"},
		{[]byte("caf\xe9"), "café"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeToUTF8(c.data, DetectEncoding(c.data)))
	}
}

func TestDetectEncoding_LargeUTF8SampleBoundary(t *testing.T) {
	// Multi-byte runes straddle the sample cut.
	data := []byte(strings.Repeat("é", maxSampleSize))
	assert.Equal(t, "utf-8", DetectEncoding(data).Encoding)
}

func TestReadFileAsUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes\nna\xefve"), 0644))

	content, detected, err := ReadFileAsUTF8(path)
	require.NoError(t, err)
	assert.Equal(t, "iso-8859-1", detected.Encoding)
	assert.Equal(t, "# Notes\nnaïve", content)

	_, _, err = ReadFileAsUTF8(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}
