package paper

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Extension is the file suffix every stored entry carries.
const Extension = ".toml"

// Author is one entry in a paper's ordered author list.
type Author struct {
	Name string `toml:"name"`
}

// Tag labels a paper for filtering.
type Tag struct {
	Label string `toml:"label"`
}

// Paper is a single bibliography record. Fields missing from a file decode to
// their zero value; the identity of a paper is the file it was read from.
type Paper struct {
	Title       string   `toml:"title"`
	Year        int      `toml:"year"`
	Description string   `toml:"description"`
	Bibtex      string   `toml:"bibtex"`
	DocName     string   `toml:"docname"`
	Journal     string   `toml:"journal,omitempty"`
	Authors     []Author `toml:"authors"`
	Tags        []Tag    `toml:"tags"`
}

// New builds a paper from plain author names and tag labels.
func New(title string, year int, authors, tags []string) Paper {
	p := Paper{Title: title, Year: year}
	for _, name := range authors {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p.Authors = append(p.Authors, Author{Name: name})
	}
	for _, label := range tags {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		p.Tags = append(p.Tags, Tag{Label: label})
	}
	return p
}

// HasTag reports whether any tag label equals label exactly.
func (p Paper) HasTag(label string) bool {
	for _, tag := range p.Tags {
		if tag.Label == label {
			return true
		}
	}
	return false
}

// AuthorNames returns the author names in order.
func (p Paper) AuthorNames() []string {
	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		names = append(names, a.Name)
	}
	return names
}

// TagLabels returns the tag labels in order.
func (p Paper) TagLabels() []string {
	labels := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		labels = append(labels, t.Label)
	}
	return labels
}

// Encode serializes the paper into its on-disk TOML form.
func Encode(p Paper) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(p); err != nil {
		return nil, fmt.Errorf("encode paper: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses TOML content into a paper. Any structural mismatch, such as a
// string where a year is expected, is an error.
func Decode(data []byte) (Paper, error) {
	var p Paper
	if _, err := toml.Decode(string(data), &p); err != nil {
		return Paper{}, fmt.Errorf("decode paper: %w", err)
	}
	return p, nil
}

// FileName derives the content-addressed file name for encoded entry data.
func FileName(encoded []byte) string {
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]) + Extension
}
