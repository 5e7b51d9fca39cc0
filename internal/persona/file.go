package persona

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type table struct {
	Personas []Persona `yaml:"personas"`
}

// Load reads a persona table of the form
//
//	personas:
//	  - id: Programming Expert
//	    instruction: You are ...
func Load(r io.Reader) (*Catalog, error) {
	var t table
	if err := yaml.NewDecoder(r).Decode(&t); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode persona table: %w", err)
	}
	return New(t.Personas...)
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Dump writes c in the format Load reads.
func Dump(w io.Writer, c *Catalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(table{Personas: c.All()}); err != nil {
		return err
	}
	return enc.Close()
}
