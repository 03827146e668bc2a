package cmd

import (
	"fmt"
	"os"

	"github.com/clusterlab/nodealloc/internal/config"
	"github.com/clusterlab/nodealloc/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showPath bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage nodealloc configuration",
	Long: `Manage nodealloc configuration settings.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (NODEALLOC_*)
  3. User config file (~/.config/nodealloc/config.yaml)
  4. System config file (/etc/nodealloc/config.yaml)
  5. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		if showPath {
			configPath, err := config.GetUserConfigPath()
			if err != nil {
				utils.PrintError("Failed to get config path: %v", err)
				os.Exit(1)
			}
			fmt.Println(configPath)
			return
		}

		fmt.Println(utils.StyleTitle("Slurm Binaries:"))
		printBinary("salloc", config.Global.SallocBin)
		printBinary("squeue", config.Global.SqueueBin)
		printBinary("scancel", config.Global.ScancelBin)
		printBinary("sinfo", config.Global.SinfoBin)
		fmt.Println()

		fmt.Println(utils.StyleTitle("Timeouts:"))
		fmt.Printf("  allocate_timeout:  %s\n", config.Global.AllocateTimeout)
		fmt.Printf("  immediate_timeout: %s\n", config.Global.ImmediateTimeout)
		fmt.Printf("  query_timeout:     %s\n", config.Global.QueryTimeout)
		fmt.Println()

		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Printf("Config file: %s\n", used)
		} else {
			fmt.Printf("Config file: %s\n", utils.StyleWarning("none (using defaults, run 'nodealloc config init')"))
		}
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Detect Slurm binaries and write the user config file",
	Run: func(cmd *cobra.Command, args []string) {
		updated, err := config.ForceDetectAndSave()
		if err != nil {
			utils.PrintError("Failed to save config: %v", err)
			os.Exit(1)
		}

		configPath, _ := config.GetUserConfigPath()
		if updated {
			utils.PrintSuccess("Detected Slurm binaries and wrote %s", configPath)
		} else {
			utils.PrintMessage("Config written to %s (no changes detected)", configPath)
		}
	},
}

func printBinary(name, path string) {
	status := utils.StyleSuccess("(found)")
	if !config.ValidateBinary(path) {
		status = utils.StyleWarning("(not found)")
	}
	fmt.Printf("  %-8s %s %s\n", name+":", path, status)
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configShowCmd.Flags().BoolVar(&showPath, "path", false, "Print only the user config file path")
}
