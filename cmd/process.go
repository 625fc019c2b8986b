package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hugo98-py/KMZtoJSON/internal/export"
	"github.com/hugo98-py/KMZtoJSON/internal/store"
)

var (
	processOut  string
	processXLSX string
)

var processCmd = &cobra.Command{
	Use:   "process <file.kmz>",
	Short: "Process a local KMZ file",
	Long:  "Extracts, projects, and enriches every point placemark in the archive. Writes the record list as JSON to stdout unless --out or --xlsx is given.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		start := time.Now()

		p, layers, err := initPipeline()
		if err != nil {
			return err
		}

		archive, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "process: read %s", args[0])
		}

		records, runErr := p.Run(ctx, archive)

		// Run logging is best-effort for the CLI path.
		if st, err := initStore(ctx); err != nil {
			zap.L().Warn("process: open run store failed", zap.Error(err))
		} else {
			run := &store.Run{
				Source:     args[0],
				Points:     len(records),
				Status:     store.RunStatusComplete,
				DurationMS: time.Since(start).Milliseconds(),
			}
			if runErr != nil {
				run.Status = store.RunStatusFailed
				run.Error = runErr.Error()
				run.Points = 0
			}
			if err := st.RecordRun(ctx, run); err != nil {
				zap.L().Warn("process: record run failed", zap.Error(err))
			}
			st.Close() //nolint:errcheck
		}

		if runErr != nil {
			return runErr
		}

		if processXLSX != "" {
			fields := make([]string, 0, layers.Len())
			for _, l := range layers.Layers() {
				fields = append(fields, l.Field)
			}
			if err := export.WriteXLSX(processXLSX, fields, records); err != nil {
				return err
			}
			zap.L().Info("wrote workbook", zap.String("path", processXLSX), zap.Int("points", len(records)))
			return nil
		}

		out := os.Stdout
		if processOut != "" {
			f, err := os.Create(processOut)
			if err != nil {
				return eris.Wrapf(err, "process: create %s", processOut)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return eris.Wrap(err, "process: encode records")
		}
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&processOut, "out", "", "write JSON to a file instead of stdout")
	processCmd.Flags().StringVar(&processXLSX, "xlsx", "", "write an XLSX workbook instead of JSON")
	rootCmd.AddCommand(processCmd)
}
