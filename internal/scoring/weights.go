package scoring

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Circularity/internal/catalog"
)

// WeightSet defines the contribution of each category average to the
// Circularity Index. Weights are bound to the canonical categories by position
// and must sum to 1.0 (±0.001 tolerance).
type WeightSet struct {
	PhaseOfIntegration              float64
	EnvironmentalConsideration      float64
	OrganizationalAttributes        float64
	ProjectTeamCapacity             float64
	ProductFeatureAndCircularDesign float64
}

// DefaultWeights returns the published Circularity Index weights.
func DefaultWeights() WeightSet {
	return WeightSet{
		PhaseOfIntegration:              0.199,
		EnvironmentalConsideration:      0.199,
		OrganizationalAttributes:        0.199,
		ProjectTeamCapacity:             0.200,
		ProductFeatureAndCircularDesign: 0.204,
	}
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	return w.PhaseOfIntegration + w.EnvironmentalConsideration + w.OrganizationalAttributes +
		w.ProjectTeamCapacity + w.ProductFeatureAndCircularDesign
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w WeightSet) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, v := range w.asList() {
		if v < 0 {
			return fmt.Errorf("negative weight: %f", v)
		}
	}
	return nil
}

// For returns the weight bound to a canonical category, or 0 for any other name.
func (w WeightSet) For(category string) float64 {
	for i, name := range catalog.CanonicalCategories {
		if name == category {
			return w.asList()[i]
		}
	}
	return 0
}

// asList follows the order of catalog.CanonicalCategories.
func (w WeightSet) asList() []float64 {
	return []float64{
		w.PhaseOfIntegration,
		w.EnvironmentalConsideration,
		w.OrganizationalAttributes,
		w.ProjectTeamCapacity,
		w.ProductFeatureAndCircularDesign,
	}
}
