package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/MikeSquared-Agency/Circularity/internal/catalog"
)

// Rating bounds of the five-point agreement scale.
const (
	MinRating = 1
	MaxRating = 5
)

var (
	// ErrNoResponses is returned when a report is requested for an empty response set.
	ErrNoResponses = errors.New("no responses submitted")
	// ErrUnknownFactor is returned when a response names a factor missing from the catalog.
	ErrUnknownFactor = errors.New("unknown factor")
	// ErrInvalidRating is returned for ratings outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrDuplicateFactor is returned when one input names a factor twice,
	// for example by name and by DMF code.
	ErrDuplicateFactor = errors.New("factor given more than once")
)

// ValidRating reports whether r is on the five-point scale.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// Responses maps factor name to rating. Unanswered factors are absent.
type Responses map[string]int

// Submit records a rating for a factor, replacing any earlier answer.
// The factor may be given by name or by DMF code. A nil set is allocated on
// first use.
func (r *Responses) Submit(c *catalog.Catalog, factor string, rating int) error {
	name, ok := c.Resolve(factor)
	if !ok {
		return fmt.Errorf("submit %q: %w", factor, ErrUnknownFactor)
	}
	if !ValidRating(rating) {
		return fmt.Errorf("submit %q: %w (got %d)", factor, ErrInvalidRating, rating)
	}
	if *r == nil {
		*r = make(Responses)
	}
	(*r)[name] = rating
	return nil
}

// ResponsesFrom builds a response set from raw input keyed by factor name or
// DMF code. Keys are checked in sorted order so the same input always fails
// the same way, and two keys naming the same factor are rejected.
func ResponsesFrom(c *catalog.Catalog, raw map[string]int) (Responses, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Responses, len(raw))
	seen := make(map[string]string, len(raw))
	for _, k := range keys {
		name, ok := c.Resolve(k)
		if !ok {
			return nil, fmt.Errorf("submit %q: %w", k, ErrUnknownFactor)
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("%q and %q: %w", prev, k, ErrDuplicateFactor)
		}
		seen[name] = k
		if err := out.Submit(c, name, raw[k]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Clear marks a factor as unanswered again.
func (r Responses) Clear(c *catalog.Catalog, factor string) error {
	name, ok := c.Resolve(factor)
	if !ok {
		return fmt.Errorf("clear %q: %w", factor, ErrUnknownFactor)
	}
	delete(r, name)
	return nil
}

// Clone returns an independent copy.
func (r Responses) Clone() Responses {
	out := make(Responses, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Validate checks every rating is on the scale. Unknown factors are not an
// error here; the catalog decides which responses are scored.
func (r Responses) Validate() error {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !ValidRating(r[k]) {
			return fmt.Errorf("factor %q: %w (got %d)", k, ErrInvalidRating, r[k])
		}
	}
	return nil
}

// Progress summarizes how much of the catalog has been answered.
type Progress struct {
	Answered int     `json:"answered"`
	Total    int     `json:"total"`
	Fraction float64 `json:"fraction"`
}

// ProgressOf counts the catalog factors present in r.
func ProgressOf(c *catalog.Catalog, r Responses) Progress {
	p := Progress{Total: c.FactorCount()}
	for _, f := range c.Factors() {
		if _, ok := r[f.Name]; ok {
			p.Answered++
		}
	}
	if p.Total > 0 {
		p.Fraction = float64(p.Answered) / float64(p.Total)
	}
	return p
}
