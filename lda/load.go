// SPDX-License-Identifier: MIT

package lda

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Set is a collection of named tables.
type Set map[string]*Coefficients

// Load decodes a YAML document mapping table names to flat key/value maps:
//
//	forest:
//	  int: 0
//	  lda: 5
//	  cv_z: 0.020213447
//	  ...
//
// Every table is validated with FromMap.
func Load(r io.Reader) (Set, error) {
	var raw map[string]map[string]float64
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lda: decode: %w", err)
	}
	out := make(Set, len(raw))
	for name, kv := range raw {
		c, err := FromMap(name, kv)
		if err != nil {
			return nil, err
		}
		out[name] = c
	}

	return out, nil
}

// LoadFile is Load over the file at path.
func LoadFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lda: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Marshal encodes the set in the format read by Load, with canonical keys.
func (s Set) Marshal() ([]byte, error) {
	raw := make(map[string]map[string]float64, len(s))
	for name, c := range s {
		raw[name] = c.Map()
	}

	return yaml.Marshal(raw)
}
