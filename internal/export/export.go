// Package export serializes governance results as JSON, YAML or CBOR,
// optionally zstd-compressed.
//
// CBOR uses Core Deterministic Encoding (RFC 8949 §4.2): the same document
// always produces identical bytes, so exported runs can be compared or
// content-addressed byte for byte.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a format name that is not supported.
var ErrUnknownFormat = errors.New("export: unknown format")

// Format names an encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// CompressedSuffix marks zstd-compressed files.
const CompressedSuffix = ".zst"

// Formats lists the supported formats.
func Formats() []Format { return []Format{JSON, YAML, CBOR} }

// ParseFormat maps a case-insensitive name to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case JSON, YAML, CBOR:
		return f, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// FormatForPath infers the format and compression from a file name such as
// "run.yaml" or "runs.cbor.zst". Unrecognized extensions yield fallback.
func FormatForPath(path string, fallback Format) (Format, bool) {
	compressed := strings.HasSuffix(path, CompressedSuffix)
	base := strings.TrimSuffix(path, CompressedSuffix)
	switch {
	case strings.HasSuffix(base, ".json"):
		return JSON, compressed
	case strings.HasSuffix(base, ".yaml"), strings.HasSuffix(base, ".yml"):
		return YAML, compressed
	case strings.HasSuffix(base, ".cbor"):
		return CBOR, compressed
	}
	return fallback, compressed
}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("export: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode writes v to w in format f. When compress is set the output is a
// single zstd frame.
func Encode(w io.Writer, f Format, compress bool, v any) (err error) {
	if compress {
		zw, zerr := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zerr != nil {
			return fmt.Errorf("export: zstd writer: %w", zerr)
		}
		defer func() {
			if cerr := zw.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("export: zstd close: %w", cerr)
			}
		}()
		w = zw
	}

	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(v); err == nil {
			err = enc.Close()
		}
	case CBOR:
		err = cborEnc.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("Encode(%q): %w", f, ErrUnknownFormat)
	}
	if err != nil {
		return fmt.Errorf("export: encode %s: %w", f, err)
	}
	return nil
}

// Decode reads one document of format f from r into v. compressed must
// match the flag the document was encoded with.
func Decode(r io.Reader, f Format, compressed bool, v any) error {
	if compressed {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return fmt.Errorf("export: zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	var err error
	switch f {
	case JSON:
		err = json.NewDecoder(r).Decode(v)
	case YAML:
		err = yaml.NewDecoder(r).Decode(v)
	case CBOR:
		err = cborDec.NewDecoder(r).Decode(v)
	default:
		return fmt.Errorf("Decode(%q): %w", f, ErrUnknownFormat)
	}
	if err != nil {
		return fmt.Errorf("export: decode %s: %w", f, err)
	}
	return nil
}
