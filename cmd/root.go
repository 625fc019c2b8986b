package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hugo98-py/KMZtoJSON/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "kmzutm",
	Short: "KMZ point reprojection and boundary enrichment",
	Long:  "Extracts point placemarks from KMZ archives, projects them to UTM, and tags each point with the administrative areas that contain it.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
