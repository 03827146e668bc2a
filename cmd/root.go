package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/clusterlab/nodealloc/internal/config"
	"github.com/clusterlab/nodealloc/internal/utils"
	"github.com/spf13/cobra"
)

var (
	debugMode  bool
	quietMode  bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "nodealloc",
	Short:         "Manage Slurm compute-node allocations: request, inspect, and release nodes.",
	Version:       config.VERSION,
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Step 1: Load built-in defaults
		config.LoadDefaults()

		// Step 2: Initialize Viper (read config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintDebug("Error reading config file: %v", err)
		}

		// Step 3: Auto-detect Slurm binaries if needed and save to config
		updated, err := config.AutoDetectAndSave()
		if err != nil {
			utils.PrintDebug("Failed to save config: %v", err)
		} else if updated {
			if configPath, err := config.GetUserConfigPath(); err == nil {
				utils.PrintDebug("Auto-detected binaries saved to: %s", configPath)
			}
		}

		// Step 4: Load detected values from Viper into Global config
		config.LoadFromViper()

		// Step 5: Apply command-line flags (highest priority)
		if debugMode {
			utils.DebugMode = true
			config.Global.Debug = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("nodealloc Version: %s", utils.StyleInfo(config.VERSION))
			utils.PrintDebug("salloc: %s", config.Global.SallocBin)
			utils.PrintDebug("squeue: %s", config.Global.SqueueBin)
			utils.PrintDebug("scancel: %s", config.Global.ScancelBin)
			utils.PrintDebug("sinfo: %s", config.Global.SinfoBin)
		}

		if quietMode {
			utils.QuietMode = true
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if err.Error() != "" && !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}
