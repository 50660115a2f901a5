// Package catalog holds the immutable registry of decision-making factors and
// the action plan recommended for each rating.
package catalog

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/catalog.yaml
var builtinFS embed.FS

// Canonical category names, in report and weighting order.
const (
	PhaseOfIntegration              = "Phase of Integration"
	EnvironmentalConsideration      = "Environmental Consideration"
	OrganizationalAttributes        = "Organizational Attributes"
	ProjectTeamCapacity             = "Project Team Capacity for CE"
	ProductFeatureAndCircularDesign = "Product Feature and Circular Design"
)

// CanonicalCategories lists the five categories every catalog must define.
var CanonicalCategories = []string{
	PhaseOfIntegration,
	EnvironmentalConsideration,
	OrganizationalAttributes,
	ProjectTeamCapacity,
	ProductFeatureAndCircularDesign,
}

// MinActionRating and MaxActionRating bound the ratings that carry an action.
const (
	MinActionRating = 1
	MaxActionRating = 3
)

// DefaultFallback is returned by Lookup when no action covers a rating.
const DefaultFallback = "No action plan available for this response level."

// Factor is a single rateable decision-making factor.
type Factor struct {
	Code    string         `yaml:"code" json:"code"`
	Name    string         `yaml:"name" json:"name"`
	Actions map[int]string `yaml:"actions" json:"actions"`
}

// Category groups factors under one of the canonical category names.
type Category struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Factors     []Factor `yaml:"factors" json:"factors"`
}

type document struct {
	Version    int        `yaml:"version"`
	Fallback   string     `yaml:"fallback"`
	Categories []Category `yaml:"categories"`
}

type factorRef struct {
	category int
	factor   int
}

// Catalog is safe for concurrent reads; nothing mutates it after Load.
type Catalog struct {
	version    int
	fallback   string
	categories []Category
	byName     map[string]factorRef
	byCode     map[string]factorRef
}

// Default loads the catalog embedded in the binary.
func Default() (*Catalog, error) {
	data, err := builtinFS.ReadFile("builtin/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("catalog.Default: %w", err)
	}
	return Load(data)
}

// LoadFile loads a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog.LoadFile: %w", err)
	}
	return Load(data)
}

// Load parses and validates a YAML catalog document.
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog.Load: parse: %w", err)
	}
	c, err := build(doc)
	if err != nil {
		return nil, fmt.Errorf("catalog.Load: %w", err)
	}
	return c, nil
}

func build(doc document) (*Catalog, error) {
	if err := validate(doc.Categories); err != nil {
		return nil, err
	}
	c := &Catalog{
		version:    doc.Version,
		fallback:   doc.Fallback,
		categories: doc.Categories,
		byName:     make(map[string]factorRef),
		byCode:     make(map[string]factorRef),
	}
	if c.fallback == "" {
		c.fallback = DefaultFallback
	}
	for ci, cat := range c.categories {
		for fi, f := range cat.Factors {
			ref := factorRef{category: ci, factor: fi}
			c.byName[f.Name] = ref
			if f.Code != "" {
				c.byCode[strings.ToUpper(f.Code)] = ref
			}
		}
	}
	return c, nil
}

// Validate re-checks the catalog invariants.
func (c *Catalog) Validate() error {
	return validate(c.categories)
}

func validate(categories []Category) error {
	if len(categories) != len(CanonicalCategories) {
		return fmt.Errorf("expected %d categories, got %d", len(CanonicalCategories), len(categories))
	}
	names := make(map[string]string)
	codes := make(map[string]string)
	for i, cat := range categories {
		if cat.Name != CanonicalCategories[i] {
			return fmt.Errorf("category %d: expected %q, got %q", i+1, CanonicalCategories[i], cat.Name)
		}
		if len(cat.Factors) == 0 {
			return fmt.Errorf("category %q has no factors", cat.Name)
		}
		for _, f := range cat.Factors {
			if strings.TrimSpace(f.Name) == "" {
				return fmt.Errorf("category %q: factor with empty name", cat.Name)
			}
			if other, dup := names[f.Name]; dup {
				return fmt.Errorf("duplicate factor %q in %q and %q", f.Name, other, cat.Name)
			}
			names[f.Name] = cat.Name
			if f.Code != "" {
				key := strings.ToUpper(f.Code)
				if other, dup := codes[key]; dup {
					return fmt.Errorf("duplicate factor code %q (%q and %q)", f.Code, other, f.Name)
				}
				codes[key] = f.Name
			}
			for rating, text := range f.Actions {
				if rating < MinActionRating || rating > MaxActionRating {
					return fmt.Errorf("factor %q: action for rating %d outside %d-%d", f.Name, rating, MinActionRating, MaxActionRating)
				}
				if strings.TrimSpace(text) == "" {
					return fmt.Errorf("factor %q: empty action for rating %d", f.Name, rating)
				}
			}
		}
	}
	return nil
}

// Version returns the catalog document version.
func (c *Catalog) Version() int { return c.version }

// Fallback returns the text used when no action covers a rating.
func (c *Catalog) Fallback() string { return c.fallback }

// Lookup returns the action text bound to (factor, rating), or the fallback
// text when the factor is unknown or the rating carries no action.
func (c *Catalog) Lookup(factor string, rating int) string {
	ref, ok := c.byName[factor]
	if !ok {
		return c.fallback
	}
	if text, ok := c.categories[ref.category].Factors[ref.factor].Actions[rating]; ok {
		return text
	}
	return c.fallback
}

// Categories returns a copy of the categories in catalog order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = copyCategory(cat)
	}
	return out
}

// Category returns the named category.
func (c *Catalog) Category(name string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.Name == name {
			return copyCategory(cat), true
		}
	}
	return Category{}, false
}

// CategoryNames returns the category names in catalog order.
func (c *Catalog) CategoryNames() []string {
	out := make([]string, len(c.categories))
	for i, cat := range c.categories {
		out[i] = cat.Name
	}
	return out
}

// FactorNames returns the factor names of one category in catalog order.
func (c *Catalog) FactorNames(category string) []string {
	for _, cat := range c.categories {
		if cat.Name != category {
			continue
		}
		out := make([]string, len(cat.Factors))
		for i, f := range cat.Factors {
			out[i] = f.Name
		}
		return out
	}
	return nil
}

// Factors returns every factor, flattened in catalog order.
func (c *Catalog) Factors() []Factor {
	out := make([]Factor, 0, len(c.byName))
	for _, cat := range c.categories {
		for _, f := range cat.Factors {
			out = append(out, copyFactor(f))
		}
	}
	return out
}

// FactorCount returns the number of factors across all categories.
func (c *Catalog) FactorCount() int { return len(c.byName) }

// Factor returns the factor with the given name.
func (c *Catalog) Factor(name string) (Factor, bool) {
	ref, ok := c.byName[name]
	if !ok {
		return Factor{}, false
	}
	return copyFactor(c.categories[ref.category].Factors[ref.factor]), true
}

// FactorByCode returns the factor with the given DMF code (case-insensitive).
func (c *Catalog) FactorByCode(code string) (Factor, bool) {
	ref, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Factor{}, false
	}
	return copyFactor(c.categories[ref.category].Factors[ref.factor]), true
}

// Resolve accepts either a factor name or a DMF code and returns the factor name.
func (c *Catalog) Resolve(key string) (string, bool) {
	if _, ok := c.byName[key]; ok {
		return key, true
	}
	if f, ok := c.FactorByCode(key); ok {
		return f.Name, true
	}
	return "", false
}

// CategoryOf returns the category name a factor belongs to.
func (c *Catalog) CategoryOf(factor string) (string, bool) {
	ref, ok := c.byName[factor]
	if !ok {
		return "", false
	}
	return c.categories[ref.category].Name, true
}

func copyCategory(cat Category) Category {
	out := Category{Name: cat.Name, Description: cat.Description, Factors: make([]Factor, len(cat.Factors))}
	for i, f := range cat.Factors {
		out.Factors[i] = copyFactor(f)
	}
	return out
}

func copyFactor(f Factor) Factor {
	actions := make(map[int]string, len(f.Actions))
	for k, v := range f.Actions {
		actions[k] = v
	}
	return Factor{Code: f.Code, Name: f.Name, Actions: actions}
}
