package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Circularity/internal/catalog"
	"github.com/MikeSquared-Agency/Circularity/internal/render"
)

func newCatalogCmd() *cobra.Command {
	var format, path string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the factor catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(path, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&path, "catalog", "", "Catalog file (default: built-in)")
	return cmd
}

func runCatalog(path, format string, w io.Writer) error {
	c, err := loadCatalog(path)
	if err != nil {
		return exitError(exitInputError, "%v", err)
	}
	switch format {
	case "text":
		_, err = io.WriteString(w, render.CatalogText(c))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Version    int                `json:"version"`
			Fallback   string             `json:"fallback"`
			Categories []catalog.Category `json:"categories"`
		}{c.Version(), c.Fallback(), c.Categories()})
	default:
		return exitError(exitInputError, "unknown format: %s", format)
	}
}
