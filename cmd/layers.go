package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hugo98-py/KMZtoJSON/internal/boundary"
)

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "List the configured boundary layers",
	Long:  "Loads the layer manifest and datasets, then prints each layer with its output field, sentinel value, and feature count.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		layers, err := initLayers()
		if err != nil {
			return err
		}
		formatLayers(os.Stdout, layers)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(layersCmd)
}

func formatLayers(out io.Writer, layers *boundary.Store) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LAYER\tFIELD\tSENTINEL\tFEATURES")
	_, _ = fmt.Fprintln(w, "-----\t-----\t--------\t--------")
	for _, l := range layers.Layers() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", l.Name, l.Field, l.Sentinel, l.Len())
	}
	_ = w.Flush()
}
