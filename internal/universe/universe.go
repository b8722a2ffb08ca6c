package universe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Company is one row of the reference universe
type Company struct {
	Ticker string `yaml:"ticker" json:"ticker"`
	Name   string `yaml:"name" json:"name"`
}

// CuratedAlias is a manually maintained phrase→ticker override for names
// that history has shown resolve badly on their own.
type CuratedAlias struct {
	Phrase string `yaml:"phrase" json:"phrase"`
	Ticker string `yaml:"ticker" json:"ticker"`
}

// File is the on-disk universe format
type File struct {
	Companies []Company      `yaml:"companies"`
	Aliases   []CuratedAlias `yaml:"aliases,omitempty"`
}

// LoadFile reads and validates a universe YAML file. Any parse or validation
// failure here is fatal to the caller: the index must never silently run empty.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse universe file %s: %w", path, err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid universe file %s: %w", path, err)
	}

	return &f, nil
}

// Validate checks structural invariants of the universe file
func (f *File) Validate() error {
	if len(f.Companies) == 0 {
		return fmt.Errorf("no companies defined")
	}

	seen := make(map[string]bool)
	for i, c := range f.Companies {
		if c.Ticker == "" {
			return fmt.Errorf("company %d: missing ticker", i)
		}
		if c.Name == "" {
			return fmt.Errorf("company %d (%s): missing name", i, c.Ticker)
		}
		if seen[c.Ticker] {
			return fmt.Errorf("duplicate ticker %s", c.Ticker)
		}
		seen[c.Ticker] = true
	}

	for i, a := range f.Aliases {
		if a.Phrase == "" {
			return fmt.Errorf("alias %d: missing phrase", i)
		}
		if !seen[a.Ticker] {
			return fmt.Errorf("alias %q: unknown ticker %s", a.Phrase, a.Ticker)
		}
	}

	return nil
}
