package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cellsolve/pkg/errors"
)

// Format is a document encoding.
type Format string

// Supported encodings.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "toml", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", s)
	}
}

// FormatOf derives the format from a file extension.
func FormatOf(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// =============================================================================
// Encoding
// =============================================================================

// Marshal encodes doc in the given format.
func Marshal(doc *Document, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes doc to w.
func Write(w io.Writer, doc *Document, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", f)
	}
	return nil
}

// WriteFile encodes doc to path, choosing the format from the extension.
func WriteFile(path string, doc *Document) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(out, doc, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Canonical returns the compact JSON form of doc. Equal documents have equal
// canonical bytes regardless of the encoding they were read from.
func Canonical(doc *Document) ([]byte, error) {
	return json.Marshal(doc)
}

// =============================================================================
// Decoding
// =============================================================================

// Unmarshal decodes a document. Unknown fields are rejected in every format.
func Unmarshal(data []byte, f Format) (*Document, error) {
	return Read(bytes.NewReader(data), f)
}

// Read decodes a document from r.
func Read(r io.Reader, f Format) (*Document, error) {
	var doc Document
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json document")
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml document")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "decode toml document: unknown key %s", undecoded[0])
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml document")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", f)
	}
	if doc.Version > Version {
		return nil, errors.New(errors.ErrCodeUnsupported, "document version %d is newer than %d", doc.Version, Version)
	}
	return &doc, nil
}

// ReadFile decodes the document at path, choosing the format from the
// extension.
func ReadFile(path string) (*Document, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	in, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "document %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()
	return Read(in, f)
}
