// Package render produces human-readable output from reports and the catalog.
package render

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/Circularity/internal/catalog"
	"github.com/MikeSquared-Agency/Circularity/internal/scoring"
)

// Markdown renders a report as a Markdown document.
func Markdown(r *scoring.Report) string {
	var b strings.Builder

	// Summary
	b.WriteString("# Circularity Report\n\n")
	fmt.Fprintf(&b, "**Circularity Index:** %.2f / 5\n", r.CompositeIndex)
	fmt.Fprintf(&b, "**Answered:** %d of %d factors (%.0f%%)\n\n",
		r.Progress.Answered, r.Progress.Total, r.Progress.Fraction*100)

	// Categories
	b.WriteString("## Category Averages\n\n")
	b.WriteString("| Category | Average | Answered | Weight | Contribution |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, c := range r.Categories {
		avg := "-"
		if c.Available {
			avg = fmt.Sprintf("%.2f", c.Average)
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %.3f | %.3f |\n",
			cell(c.Name), avg, c.Answered, c.Weight, c.Weighted)
	}
	b.WriteString("\n")

	// Action plan, grouped by category in report order
	b.WriteString("## Action Plan\n\n")
	var current string
	for _, row := range r.Rows {
		if row.Category != current {
			if current != "" {
				b.WriteString("\n")
			}
			current = row.Category
			fmt.Fprintf(&b, "### %s\n\n", current)
			b.WriteString("| Factor | Rating | Recommended Action |\n")
			b.WriteString("|---|---|---|\n")
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(factorLabel(row)), row.Rating, cell(row.Action))
	}
	if len(r.Rows) > 0 {
		b.WriteString("\n")
	}

	return b.String()
}

// CatalogText renders the catalog as an indented plain-text listing.
func CatalogText(c *catalog.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Catalog v%d: %d categories, %d factors\n", c.Version(), len(c.CategoryNames()), c.FactorCount())
	for _, cat := range c.Categories() {
		fmt.Fprintf(&b, "\n%s\n", cat.Name)
		if cat.Description != "" {
			fmt.Fprintf(&b, "  %s\n", cat.Description)
		}
		for _, f := range cat.Factors {
			fmt.Fprintf(&b, "  %-6s %s\n", f.Code, f.Name)
		}
	}
	return b.String()
}

func factorLabel(row scoring.ReportRow) string {
	if row.Code == "" {
		return row.Factor
	}
	return row.Code + " " + row.Factor
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
