// Package seed reads dataset fixtures for bulk import into the store.
package seed

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/storage"
)

// File is the document layout shared by the YAML and TOML formats.
type File struct {
	Datasets []Dataset `yaml:"datasets" toml:"datasets"`
}

type Author struct {
	Name        string `yaml:"name" toml:"name"`
	Affiliation string `yaml:"affiliation" toml:"affiliation"`
	ORCID       string `yaml:"orcid" toml:"orcid"`
}

type Dataset struct {
	ID          string   `yaml:"id" toml:"id"`
	DOI         string   `yaml:"doi" toml:"doi"`
	Title       string   `yaml:"title" toml:"title"`
	Description string   `yaml:"description" toml:"description"`
	Category    string   `yaml:"category" toml:"category"`
	Tags        []string `yaml:"tags" toml:"tags"`
	SizeBytes   int64    `yaml:"size_bytes" toml:"size_bytes"`
	// CreatedAt accepts RFC 3339 timestamps or plain dates.
	CreatedAt string   `yaml:"created_at" toml:"created_at"`
	Authors   []Author `yaml:"authors" toml:"authors"`
}

// Format is a seed file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// DetectFormat picks the format from the file name. A trailing .zst is
// ignored.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".zst")))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return 0, fmt.Errorf("unsupported seed file %s: want .yaml, .yml or .toml", path)
}

// LoadFile reads and converts the datasets in path. Files ending in .zst are
// decompressed first.
func LoadFile(path string) ([]storage.Dataset, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	if strings.HasSuffix(path, ".zst") {
		data, err = decompress(data)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
	}
	return Parse(data, format)
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(dec)
}

// Parse decodes a seed document.
func Parse(data []byte, format Format) ([]storage.Dataset, error) {
	var f File
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing yaml seed: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing toml seed: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown seed format %d", format)
	}

	out := make([]storage.Dataset, 0, len(f.Datasets))
	for i, d := range f.Datasets {
		ds, err := d.convert()
		if err != nil {
			return nil, fmt.Errorf("dataset %d: %w", i, err)
		}
		out = append(out, ds)
	}
	return out, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func (d Dataset) convert() (storage.Dataset, error) {
	if strings.TrimSpace(d.ID) == "" {
		return storage.Dataset{}, fmt.Errorf("id is required")
	}
	ds := storage.Dataset{
		ID:          d.ID,
		DOI:         d.DOI,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Tags:        d.Tags,
		SizeBytes:   d.SizeBytes,
	}
	if d.CreatedAt != "" {
		t, err := parseDate(d.CreatedAt)
		if err != nil {
			return storage.Dataset{}, err
		}
		ds.CreatedAt = t
	}
	for _, a := range d.Authors {
		ds.Authors = append(ds.Authors, explore.Author{Name: a.Name, Affiliation: a.Affiliation, ORCID: a.ORCID})
	}
	return ds, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid created_at %q", s)
}
