// Package catalog holds the accepted spellings of the target region and the words
// that mark a document as an address proof.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"addressproof/internal/textnorm"
)

// DefaultRegion is the human-readable name of the region the default catalog accepts.
const DefaultRegion = "Vasai region"

var defaultLocations = []string{
	"vasai",
	"nalla sopara",
	"naigaon",
	"virar",
	"vasai west",
	"vasai east",
	"nalasopara",
	"nallasopara",
	"virar west",
	"virar east",
}

var defaultAddressKeywords = []string{
	"address",
	"resident",
	"residence",
	"house",
	"flat",
	"apartment",
	"building",
	"street",
	"road",
	"pin",
	"pincode",
	"postal",
}

var (
	// ErrEmptyCatalog is returned when a catalog would contain no usable location.
	ErrEmptyCatalog = errors.New("location catalog has no entries")

	// ErrInvalidCatalogFile is returned when a catalog file cannot be parsed.
	ErrInvalidCatalogFile = errors.New("invalid location catalog file")
)

// Catalog is an ordered, read-only list of region name variants. It is built once
// at startup and shared by every verification.
type Catalog struct {
	region   string
	entries  []string
	keywords []string
}

// fileFormat is the YAML layout accepted by Load and Parse.
type fileFormat struct {
	Region          string   `yaml:"region"`
	Locations       []string `yaml:"locations"`
	AddressKeywords []string `yaml:"address_keywords"`
}

// Default returns the built-in catalog for the Vasai region.
func Default() *Catalog {
	c, err := New(DefaultRegion, defaultLocations, defaultAddressKeywords)
	if err != nil {
		panic(fmt.Sprintf("catalog: default catalog is invalid: %v", err))
	}
	return c
}

// New builds a catalog. Entries and keywords are normalized; duplicates and entries
// that normalize to nothing are dropped while the first-seen order is kept.
func New(region string, locations, keywords []string) (*Catalog, error) {
	entries := normalizeAll(locations)
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	if region == "" {
		region = DefaultRegion
	}
	return &Catalog{
		region:   region,
		entries:  entries,
		keywords: normalizeAll(keywords),
	}, nil
}

// Load reads a YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog. A file without address_keywords keeps the
// built-in keyword list.
//
//	region: Vasai region
//	locations: [vasai, nalla sopara, virar]
//	address_keywords: [address, flat, road]
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalogFile, err)
	}
	keywords := f.AddressKeywords
	if len(keywords) == 0 {
		keywords = defaultAddressKeywords
	}
	return New(f.Region, f.Locations, keywords)
}

// Region returns the display name of the region.
func (c *Catalog) Region() string {
	return c.region
}

// Entries returns the normalized location variants in catalog order.
func (c *Catalog) Entries() []string {
	return slices.Clone(c.entries)
}

// Keywords returns the normalized address keywords.
func (c *Catalog) Keywords() []string {
	return slices.Clone(c.keywords)
}

// Len returns the number of location variants.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// HasAddressKeywords reports whether any address keyword appears as a whole word
// in the normalized text.
func (c *Catalog) HasAddressKeywords(text textnorm.Text) bool {
	for _, w := range text.Words {
		if slices.Contains(c.keywords, w) {
			return true
		}
	}
	return false
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := textnorm.String(v)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}
