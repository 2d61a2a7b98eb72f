package menu

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var defaultMenu []byte

// Entry is one item the assistant may offer.
type Entry struct {
	Name        string
	Price       float64
	Description string

	// false when the source price was not a non-negative number
	priced bool
}

// Priced reports whether the entry carries a usable price.
func (e Entry) Priced() bool { return e.priced }

// Catalog is read-only after Load and safe for concurrent use.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

type menuFile struct {
	Items []struct {
		Name        string    `yaml:"name"`
		Price       yaml.Node `yaml:"price"`
		Description string    `yaml:"description"`
	} `yaml:"items"`
}

// Default returns the embedded menu.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultMenu))
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open menu: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Catalog, error) {
	var mf menuFile
	if err := yaml.NewDecoder(r).Decode(&mf); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}

	c := &Catalog{
		entries: make([]Entry, 0, len(mf.Items)),
		index:   make(map[string]int, len(mf.Items)),
	}

	for i, it := range mf.Items {
		name := normalize(it.Name)
		if name == "" {
			return nil, fmt.Errorf("menu item %d: empty name", i)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("menu item %q: duplicate name", name)
		}

		e := Entry{Name: name, Description: it.Description, priced: true}
		if it.Price.Kind != 0 {
			if err := it.Price.Decode(&e.Price); err != nil || e.Price < 0 {
				e.Price = 0
				e.priced = false
			}
		}

		c.index[name] = len(c.entries)
		c.entries = append(c.entries, e)
	}

	return c, nil
}

// Lookup is a case-insensitive exact match.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	i, ok := c.index[normalize(name)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Len() int { return len(c.entries) }

// RenderForPrompt lists every entry once, in menu order.
func (c *Catalog) RenderForPrompt() string {
	var b strings.Builder
	b.WriteString("Available Menu Items:\n")
	for _, e := range c.entries {
		if e.Priced() {
			fmt.Fprintf(&b, "- %s: $%.2f (%s)\n", titleCase(e.Name), e.Price, e.Description)
		} else {
			fmt.Fprintf(&b, "- %s: (Price Error) (%s)\n", titleCase(e.Name), e.Description)
		}
	}
	return b.String()
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// titleCase upper-cases every letter that follows a non-letter,
// so "filet-o-fish" becomes "Filet-O-Fish".
func titleCase(s string) string {
	out := []rune(s)
	prevLetter := false
	for i, r := range out {
		if unicode.IsLetter(r) {
			if !prevLetter {
				out[i] = unicode.ToUpper(r)
			}
			prevLetter = true
			continue
		}
		prevLetter = false
	}
	return string(out)
}
