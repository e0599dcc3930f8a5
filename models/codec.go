package models

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/log"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format names a project file encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// Formats lists the supported project encodings.
var Formats = []Format{FormatJSON, FormatYAML, FormatMsgpack}

// FormatFromPath picks the project encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// ParseFormat validates a user supplied format name.
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(name) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// EncodeProject writes p to w in the given format.
func EncodeProject(w io.Writer, p *Project, format Format) error {
	r := p.Record()
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(r)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// DecodeProject reads a project from r in the given format.
func DecodeProject(r io.Reader, format Format) (*Project, error) {
	var rec ProjectRecord
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&rec)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&rec)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&rec)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s project: %w", format, err)
	}
	return ProjectFromRecord(rec), nil
}

// LoadProject reads a project file, picking the format from its extension.
func LoadProject(path string) (*Project, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	p, err := DecodeProject(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("Loaded project %s: %d meshes", path, len(p.Meshes))
	return p, nil
}

// SaveProject writes p to path. An empty format is derived from the extension.
func SaveProject(path string, p *Project, format Format) error {
	if format == "" {
		var err error
		if format, err = FormatFromPath(path); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := EncodeProject(f, p, format); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("Saved project %s as %s", path, format)
	return nil
}
