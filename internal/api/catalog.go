package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Circularity/internal/catalog"
	"github.com/MikeSquared-Agency/Circularity/internal/scoring"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
	weights scoring.WeightSet
}

func NewCatalogHandler(c *catalog.Catalog, w scoring.WeightSet) *CatalogHandler {
	return &CatalogHandler{catalog: c, weights: w}
}

type CatalogResponse struct {
	Version    int                `json:"version"`
	Fallback   string             `json:"fallback"`
	Weights    map[string]float64 `json:"weights"`
	Categories []catalog.Category `json:"categories"`
}

type LookupResponse struct {
	Factor   string `json:"factor"`
	Code     string `json:"code"`
	Category string `json:"category"`
	Rating   int    `json:"rating"`
	Action   string `json:"action"`
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	weights := make(map[string]float64, len(catalog.CanonicalCategories))
	for _, name := range catalog.CanonicalCategories {
		weights[name] = h.weights.For(name)
	}
	writeJSON(w, http.StatusOK, CatalogResponse{
		Version:    h.catalog.Version(),
		Fallback:   h.catalog.Fallback(),
		Weights:    weights,
		Categories: h.catalog.Categories(),
	})
}

func (h *CatalogHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	name, ok := h.catalog.Resolve(pathParam(r, "factor"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown factor")
		return
	}
	rating, err := strconv.Atoi(chi.URLParam(r, "rating"))
	if err != nil || !scoring.ValidRating(rating) {
		writeError(w, http.StatusBadRequest, "rating must be an integer from 1 to 5")
		return
	}

	f, _ := h.catalog.Factor(name)
	category, _ := h.catalog.CategoryOf(name)
	writeJSON(w, http.StatusOK, LookupResponse{
		Factor:   f.Name,
		Code:     f.Code,
		Category: category,
		Rating:   rating,
		Action:   h.catalog.Lookup(name, rating),
	})
}

// pathParam returns the unescaped URL parameter; factor names contain spaces.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
