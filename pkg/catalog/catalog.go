// pkg/catalog/catalog.go
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"mergington-activities/internal/common/validation"
)

//go:embed default_catalog.json
var defaultCatalog []byte

// Default returns the built-in Mergington High School seed.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadCatalog reads and validates a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse validates raw JSON against the catalog schema and decodes it.
func Parse(data []byte) (*Catalog, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// ValidateDocument checks raw JSON against the catalog schema.
func ValidateDocument(data []byte) error {
	result, err := validation.ValidateJSON(documentSchema, data)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("catalog validation failed: %s", strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}

// Validate checks the rules the schema cannot express.
func (c *Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Activities))
	for _, a := range c.Activities {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("activity name must not be blank")
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("duplicate activity %q", a.Name)
		}
		seen[a.Name] = struct{}{}
		if a.MaxParticipants <= 0 {
			return fmt.Errorf("activity %q: max_participants must be positive", a.Name)
		}
	}
	return nil
}

// Find returns the named activity spec.
func (c *Catalog) Find(name string) (*ActivitySpec, bool) {
	for i := range c.Activities {
		if c.Activities[i].Name == name {
			return &c.Activities[i], true
		}
	}
	return nil, false
}

// Add appends a new activity, rejecting duplicates, and bumps LastUpdated.
func (c *Catalog) Add(spec ActivitySpec) error {
	if _, exists := c.Find(spec.Name); exists {
		return fmt.Errorf("activity %q already exists", spec.Name)
	}
	if spec.Participants == nil {
		spec.Participants = []string{}
	}
	c.Activities = append(c.Activities, spec)
	if err := c.Validate(); err != nil {
		c.Activities = c.Activities[:len(c.Activities)-1]
		return err
	}
	c.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return nil
}

// Save writes the catalog as indented JSON.
func (c *Catalog) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
