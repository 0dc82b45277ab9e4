package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/soaringjerry/Resilience/internal/catalog"
	"github.com/soaringjerry/Resilience/internal/models"
)

func newCatalogCommand() *cobra.Command {
	var (
		path     string
		validate bool
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print or validate the question catalog",
		Long: `Print the categories, questions and score tiers of the catalog.

Without --file the embedded catalog is used. With --validate only the
integrity checks run; the exit code is 1 if the catalog is broken.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if validate {
				fmt.Fprintf(out, "catalog ok: %d categories, %d questions, scores %d-%d\n",
					len(cat.Categories()), cat.QuestionCount(), cat.MinScore(), cat.MaxScore())
				return nil
			}
			printCatalog(out, cat)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "catalog YAML file (default: embedded)")
	cmd.Flags().BoolVar(&validate, "validate", false, "only check the catalog")
	return cmd
}

var tierColors = map[string]*color.Color{
	"red":    color.New(color.FgRed),
	"orange": color.New(color.FgYellow),
	"blue":   color.New(color.FgBlue),
	"green":  color.New(color.FgGreen),
}

func tierColor(t models.Tier) *color.Color {
	if c, ok := tierColors[t.Color]; ok {
		return c
	}
	return color.New(color.Reset)
}

func printCatalog(w io.Writer, cat *catalog.Catalog) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	bold.Fprintln(w, "Scale")
	for _, o := range cat.LikertOptions() {
		fmt.Fprintf(w, "  %d  %s\n", o.Value, o.Label)
	}
	for _, c := range cat.Categories() {
		fmt.Fprintln(w)
		cyan.Fprintf(w, "%d. %s\n", c.ID, c.Title)
		for _, q := range cat.QuestionsFor(c.ID) {
			fmt.Fprintf(w, "  [%2d] %s\n", q.ID, q.Text)
		}
	}
	fmt.Fprintln(w)
	bold.Fprintf(w, "Tiers (%d-%d)\n", cat.MinScore(), cat.MaxScore())
	for _, t := range cat.Tiers() {
		tierColor(t).Fprintf(w, "  %3d-%-3d %s\n", t.Min, t.Max, t.Title)
	}
}
