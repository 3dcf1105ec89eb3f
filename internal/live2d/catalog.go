package live2d

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SlotCount is the number of closet texture slots every catalog entry carries.
const SlotCount = 3

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Slot is one texture slot of a closet entry. A slot with a single option is a
// fixed filename; a slot with several options is a variant group.
type Slot struct {
	Options []string
}

// Fixed reports whether the slot always resolves to the same filename.
func (s Slot) Fixed() bool {
	return len(s.Options) == 1
}

// Contains reports whether name is one of the slot's options.
func (s Slot) Contains(name string) bool {
	for _, o := range s.Options {
		if o == name {
			return true
		}
	}
	return false
}

// UnmarshalYAML accepts a filename scalar or a sequence of alternatives.
func (s *Slot) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value == "" {
			return fmt.Errorf("line %d: empty texture filename", n.Line)
		}
		s.Options = []string{n.Value}
		return nil
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return fmt.Errorf("line %d: empty variant group", n.Line)
		}
		opts := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode || c.Value == "" {
				return fmt.Errorf("line %d: variant group members must be filenames", c.Line)
			}
			opts = append(opts, c.Value)
		}
		s.Options = opts
		return nil
	default:
		return fmt.Errorf("line %d: texture slot must be a filename or a list of filenames", n.Line)
	}
}

// Entry is a single closet outfit.
type Entry struct {
	Key   string
	Slots [SlotCount]Slot
}

// Catalog is the ordered, read-only closet table. Declaration order is
// significant: indices into the catalog are positions in the source file.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog builds a catalog from entries in declaration order.
func NewCatalog(entries []Entry) (*Catalog, error) {
	if len(entries) < 2 {
		return nil, fmt.Errorf("catalog needs at least 2 entries, got %d", len(entries))
	}
	c := &Catalog{
		entries: make([]Entry, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("entry %d: empty key", i)
		}
		if _, dup := c.index[e.Key]; dup {
			return nil, fmt.Errorf("duplicate key %q", e.Key)
		}
		for j, s := range e.Slots {
			if len(s.Options) == 0 {
				return nil, fmt.Errorf("entry %q: slot %d has no textures", e.Key, j)
			}
		}
		c.entries[i] = e
		c.index[e.Key] = i
	}
	return c, nil
}

// ParseCatalog decodes a YAML mapping of key -> [slot, slot, slot],
// preserving the mapping's declaration order.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing catalog: top level must be a mapping")
	}

	m := doc.Content[0]
	entries := make([]Entry, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		var slots []Slot
		if err := v.Decode(&slots); err != nil {
			return nil, fmt.Errorf("parsing catalog entry %q: %w", k.Value, err)
		}
		if len(slots) != SlotCount {
			return nil, fmt.Errorf("parsing catalog entry %q: want %d texture slots, got %d", k.Value, SlotCount, len(slots))
		}
		e := Entry{Key: k.Value}
		copy(e.Slots[:], slots)
		entries = append(entries, e)
	}
	return NewCatalog(entries)
}

// LoadCatalog reads a catalog file. An empty path loads the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the built-in closet catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// Len returns the number of entries, including the adult entry.
func (c *Catalog) Len() int { return len(c.entries) }

// Entry returns the entry at position i in declaration order.
func (c *Catalog) Entry(i int) Entry { return c.entries[i] }

// Lookup returns the declaration index of key.
func (c *Catalog) Lookup(key string) (int, bool) {
	i, ok := c.index[key]
	return i, ok
}

// Keys returns the variant keys in declaration order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.Key
	}
	return keys
}

// EligibleSize is the size of the pool used for seeded and random picks.
// The final entry is the adult outfit and is dropped unless allowAdult is set.
func (c *Catalog) EligibleSize(allowAdult bool) int {
	if allowAdult {
		return len(c.entries)
	}
	return len(c.entries) - 1
}
