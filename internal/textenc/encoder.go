// Package textenc normalizes brain dump files to UTF-8 before assimilation.
package textenc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type EncodingResult struct {
	Encoding   string  `json:"encoding"`
	Confidence float64 `json:"confidence"`
	HasBOM     bool    `json:"has_bom"`
}

const maxSampleSize = 8192

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func DetectEncoding(data []byte) EncodingResult {
	if len(data) == 0 {
		return EncodingResult{Encoding: "utf-8", Confidence: 1.0}
	}

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingResult{Encoding: "utf-8", Confidence: 1.0, HasBOM: true}
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingResult{Encoding: "utf-16le", Confidence: 1.0, HasBOM: true}
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingResult{Encoding: "utf-16be", Confidence: 1.0, HasBOM: true}
	}

	sample := data
	if len(sample) > maxSampleSize {
		sample = trimToRuneBoundary(data[:maxSampleSize])
	}

	if le, be := nullRatios(sample); le > 0.75 {
		return EncodingResult{Encoding: "utf-16le", Confidence: 0.8}
	} else if be > 0.75 {
		return EncodingResult{Encoding: "utf-16be", Confidence: 0.8}
	}

	if utf8.Valid(sample) {
		return EncodingResult{Encoding: "utf-8", Confidence: 0.95}
	}

	// Bytes 0x80-0x9F are control codes in ISO-8859-1 but printable in
	// Windows-1252, which is what legacy editors on Windows emit.
	for _, b := range sample {
		if b >= 0x80 && b <= 0x9F {
			return EncodingResult{Encoding: "windows-1252", Confidence: 0.6}
		}
	}
	return EncodingResult{Encoding: "iso-8859-1", Confidence: 0.5}
}

// nullRatios reports how many odd and even positioned bytes are zero, the
// signature of ASCII-heavy UTF-16 text without a BOM.
func nullRatios(data []byte) (le, be float64) {
	if len(data) < 2 || len(data)%2 != 0 {
		return 0, 0
	}
	var odd, even int
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 {
			even++
		}
		if data[i+1] == 0 {
			odd++
		}
	}
	pairs := float64(len(data) / 2)
	return float64(odd) / pairs, float64(even) / pairs
}

// trimToRuneBoundary drops a trailing partial UTF-8 sequence so that a
// truncated sample of valid UTF-8 still validates.
func trimToRuneBoundary(data []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(data) > 0; i++ {
		r, size := utf8.DecodeLastRune(data)
		if r != utf8.RuneError || size > 1 {
			return data
		}
		data = data[:len(data)-1]
	}
	return data
}

func decoderFor(name string) (encoding.Encoding, error) {
	switch name {
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case "windows-1252":
		return charmap.Windows1252, nil
	case "iso-8859-1":
		return charmap.ISO8859_1, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", name)
}

// NormalizeToUTF8 decodes data according to detected. Invalid sequences are
// replaced with U+FFFD rather than failing.
func NormalizeToUTF8(data []byte, detected EncodingResult) string {
	if detected.Encoding == "utf-8" || detected.Encoding == "" {
		data = bytes.TrimPrefix(data, bomUTF8)
		return string(bytes.ToValidUTF8(data, []byte("\uFFFD")))
	}

	enc, err := decoderFor(detected.Encoding)
	if err != nil {
		return string(bytes.ToValidUTF8(data, []byte("\uFFFD")))
	}

	reader := transform.NewReader(bytes.NewReader(data), enc.NewDecoder())
	result, err := io.ReadAll(reader)
	if err != nil {
		return string(bytes.ToValidUTF8(data, []byte("\uFFFD")))
	}
	return string(bytes.ToValidUTF8(result, []byte("\uFFFD")))
}

func ReadFileAsUTF8(path string) (content string, detected EncodingResult, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", EncodingResult{}, err
	}

	detected = DetectEncoding(data)
	content = NormalizeToUTF8(data, detected)
	return content, detected, nil
}
