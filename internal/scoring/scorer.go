package scoring

import (
	"log/slog"
	"strconv"

	"github.com/MikeSquared-Agency/Circularity/internal/catalog"
)

// Row texts for factors without a response.
const (
	NotAnswered   = "Not answered"
	NotApplicable = "N/A"
)

// ReportRow is one line of the action plan, one per catalog factor.
type ReportRow struct {
	Factor   string `json:"factor"`
	Code     string `json:"code,omitempty"`
	Category string `json:"category"`
	Rating   string `json:"rating"`
	Action   string `json:"action"`
}

// Answered reports whether the row carries a rating.
func (r ReportRow) Answered() bool { return r.Rating != NotAnswered }

// CategoryScore captures one category's contribution to the Circularity Index.
// Available is false when no factor in the category was answered; Weighted is
// then 0.
type CategoryScore struct {
	Name      string  `json:"name"`
	Average   float64 `json:"average"`
	Available bool    `json:"available"`
	Answered  int     `json:"answered"`
	Weight    float64 `json:"weight"`
	Weighted  float64 `json:"weighted"`
}

// Report is the complete scoring output for one response set.
type Report struct {
	CategoryAverages map[string]float64 `json:"category_averages"`
	Categories       []CategoryScore    `json:"categories"`
	CompositeIndex   float64            `json:"composite_index"`
	Rows             []ReportRow        `json:"rows"`
	Progress         Progress           `json:"progress"`
}

// Scorer turns response sets into reports against a fixed catalog.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	catalog *catalog.Catalog
	weights WeightSet
	logger  *slog.Logger
}

// NewScorer creates a Scorer with the given catalog and weights.
func NewScorer(c *catalog.Catalog, weights WeightSet, logger *slog.Logger) *Scorer {
	return &Scorer{
		catalog: c,
		weights: weights,
		logger:  logger,
	}
}

// Catalog returns the catalog the scorer reads from.
func (s *Scorer) Catalog() *catalog.Catalog { return s.catalog }

// Weights returns the weights applied to category averages.
func (s *Scorer) Weights() WeightSet { return s.weights }

// CategoryAverage returns the mean of the answered ratings in category.
// ok is false when none of the category's factors were answered.
func CategoryAverage(c *catalog.Catalog, category string, r Responses) (avg float64, ok bool) {
	avg, n := categoryMean(c, category, r)
	return avg, n > 0
}

func categoryMean(c *catalog.Catalog, category string, r Responses) (float64, int) {
	var sum, n int
	for _, name := range c.FactorNames(category) {
		if rating, ok := r[name]; ok {
			sum += rating
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return float64(sum) / float64(n), n
}

// CompositeIndex is the weighted sum of the five canonical category averages.
// A category missing from averages contributes 0; the remaining weights are
// not rescaled.
func CompositeIndex(averages map[string]float64, w WeightSet) float64 {
	weights := w.asList()
	var total float64
	for i, name := range catalog.CanonicalCategories {
		total += averages[name] * weights[i]
	}
	return total
}

// CategoryAverages returns the averages of every category with at least one
// answered factor.
func (s *Scorer) CategoryAverages(r Responses) map[string]float64 {
	out := make(map[string]float64)
	for _, name := range s.catalog.CategoryNames() {
		if avg, ok := CategoryAverage(s.catalog, name, r); ok {
			out[name] = avg
		}
	}
	return out
}

// CompositeIndex computes the Circularity Index with the scorer's weights.
func (s *Scorer) CompositeIndex(averages map[string]float64) float64 {
	return CompositeIndex(averages, s.weights)
}

// ComputeReport scores a response set and builds the action plan.
// Responses naming factors outside the catalog are ignored.
func (s *Scorer) ComputeReport(r Responses) (*Report, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	progress := ProgressOf(s.catalog, r)
	if progress.Answered == 0 {
		return nil, ErrNoResponses
	}

	report := &Report{
		CategoryAverages: make(map[string]float64),
		Progress:         progress,
	}

	for _, cat := range s.catalog.Categories() {
		avg, n := categoryMean(s.catalog, cat.Name, r)
		score := CategoryScore{
			Name:      cat.Name,
			Available: n > 0,
			Answered:  n,
			Weight:    s.weights.For(cat.Name),
		}
		if score.Available {
			score.Average = avg
			score.Weighted = avg * score.Weight
			report.CategoryAverages[cat.Name] = avg
		}
		report.Categories = append(report.Categories, score)

		for _, f := range cat.Factors {
			row := ReportRow{Factor: f.Name, Code: f.Code, Category: cat.Name}
			if rating, ok := r[f.Name]; ok {
				row.Rating = strconv.Itoa(rating)
				row.Action = s.catalog.Lookup(f.Name, rating)
			} else {
				row.Rating = NotAnswered
				row.Action = NotApplicable
			}
			report.Rows = append(report.Rows, row)
		}
	}

	report.CompositeIndex = s.CompositeIndex(report.CategoryAverages)

	s.logger.Debug("report computed",
		"composite_index", report.CompositeIndex,
		"answered", progress.Answered,
		"total", progress.Total,
	)
	return report, nil
}
