// Package persona holds the fixed table of expert personas and the system
// instructions that condition the model for each of them.
package persona

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCatalog   = errors.New("persona catalog is empty")
	ErrUnknownPersona = errors.New("unknown persona")
)

// Persona is a named system instruction.
type Persona struct {
	ID          string `yaml:"id"`
	Instruction string `yaml:"instruction"`
}

const (
	Programming = "Programming Expert"
	Cooking     = "Cooking Expert"
	Fitness     = "Health & Fitness Expert"
	Travel      = "Travel Expert"
)

var builtin = []Persona{
	{
		ID:          Programming,
		Instruction: "You are an experienced programming expert. Answer questions about programming with practical, detailed advice.",
	},
	{
		ID:          Cooking,
		Instruction: "You are a culinary professional. Give expert advice on recipes, cooking techniques and how to choose ingredients.",
	},
	{
		ID:          Fitness,
		Instruction: "You are a health and fitness expert. Give evidence-based advice on exercise, nutrition and staying healthy.",
	},
	{
		ID:          Travel,
		Instruction: "You are a travel expert. Give detailed advice on trip planning, sightseeing destinations and travel tips.",
	},
}

// Catalog is an ordered, immutable persona table. The first persona is the
// default.
type Catalog struct {
	personas []Persona
	index    map[string]int
}

// Default returns the built-in catalog of four experts.
func Default() *Catalog {
	c, err := New(builtin...)
	if err != nil {
		panic(err)
	}
	return c
}

// New builds a catalog from personas, keeping their order.
func New(personas ...Persona) (*Catalog, error) {
	if len(personas) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		personas: make([]Persona, 0, len(personas)),
		index:    make(map[string]int, len(personas)),
	}
	for i, p := range personas {
		if p.ID == "" {
			return nil, fmt.Errorf("persona #%d has no id", i+1)
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id %q", p.ID)
		}
		c.index[p.ID] = len(c.personas)
		c.personas = append(c.personas, p)
	}
	return c, nil
}

// Lookup returns the instruction for id. Unknown ids fall back to the default
// persona without error.
func (c *Catalog) Lookup(id string) string {
	if p, ok := c.Get(id); ok {
		return p.Instruction
	}
	return c.Default().Instruction
}

func (c *Catalog) Get(id string) (Persona, bool) {
	i, ok := c.index[id]
	if !ok {
		return Persona{}, false
	}
	return c.personas[i], true
}

func (c *Catalog) Default() Persona {
	return c.personas[0]
}

// Validate is the strict counterpart of Lookup's fallback.
func (c *Catalog) Validate(id string) error {
	if _, ok := c.index[id]; ok {
		return nil
	}
	return fmt.Errorf("%w %q (valid options: %s)", ErrUnknownPersona, id, strings.Join(c.IDs(), ", "))
}

// IDs returns the persona ids in definition order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.personas))
	for i, p := range c.personas {
		ids[i] = p.ID
	}
	return ids
}

func (c *Catalog) All() []Persona {
	out := make([]Persona, len(c.personas))
	copy(out, c.personas)
	return out
}

func (c *Catalog) Len() int {
	return len(c.personas)
}
