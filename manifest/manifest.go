package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lixenwraith/scape/registry"
	"github.com/lixenwraith/scape/resource"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownType = errors.New("unknown resource type")
	ErrInvalid     = errors.New("invalid manifest")
)

// Document declares consumers and the resources they reference
//
//	consumers:
//	  - name: scene
//	    requires:
//	      - type: text
//	        names: [banner, credits]
type Document struct {
	Consumers []ConsumerDef `yaml:"consumers"`
}

type ConsumerDef struct {
	Name     string           `yaml:"name"`
	Requires []RequirementDef `yaml:"requires"`
}

type RequirementDef struct {
	Type  string   `yaml:"type"`
	Names []string `yaml:"names"`
}

// Parse decodes a manifest; unknown fields are rejected
func Parse(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		return doc, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return doc, nil
}

// Apply registers every consumer into cat
// Nothing is registered unless the whole document resolves
func (d Document) Apply(types *TypeTable, cat *registry.Catalog) error {
	type entry struct {
		consumer resource.Consumer
		reqs     []resource.Requirement
	}
	entries := make([]entry, 0, len(d.Consumers))

	for i, c := range d.Consumers {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("%w: consumer %d has no name", ErrInvalid, i)
		}

		reqs := make([]resource.Requirement, 0, len(c.Requires))
		for _, r := range c.Requires {
			t, ok := types.Lookup(r.Type)
			if !ok {
				return fmt.Errorf("%w %q in consumer %s", ErrUnknownType, r.Type, name)
			}
			if len(r.Names) == 0 {
				return fmt.Errorf("%w: consumer %s requires %s without names", ErrInvalid, name, r.Type)
			}
			reqs = append(reqs, resource.Requirement{Names: r.Names, Type: t})
		}
		entries = append(entries, entry{consumer: resource.Consumer(name), reqs: reqs})
	}

	for _, e := range entries {
		cat.Register(e.consumer, e.reqs...)
	}
	return nil
}

// Load parses r and applies it to cat
func Load(r io.Reader, types *TypeTable, cat *registry.Catalog) error {
	doc, err := Parse(r)
	if err != nil {
		return err
	}
	return doc.Apply(types, cat)
}

// LoadFile applies the manifest at path; a missing file registers nothing
func LoadFile(path string, types *TypeTable, cat *registry.Catalog) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := Load(f, types, cat); err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return true, nil
}
