package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// slurmTools are the binaries this program drives, keyed by config name.
var slurmTools = []string{"salloc", "squeue", "scancel", "sinfo"}

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (NODEALLOC_*)
// 3. User config file (~/.config/nodealloc/config.yaml)
// 4. System config file (/etc/nodealloc/config.yaml)
// 5. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	// User config (highest priority)
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(userConfigDir, "nodealloc"))
	}

	// Home directory fallback
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".nodealloc"))
	}

	// System-wide config (lower priority)
	viper.AddConfigPath("/etc/nodealloc")

	// Current directory (for development)
	viper.AddConfigPath(".")

	// Environment variables
	viper.SetEnvPrefix("NODEALLOC")
	viper.AutomaticEnv()

	setDefaults()

	// Read config file (non-fatal if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; will use defaults and auto-detect
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	for _, tool := range slurmTools {
		viper.SetDefault(tool+"_bin", tool)
	}

	viper.SetDefault("allocate_timeout", "30s")
	viper.SetDefault("immediate_timeout", "10s")
	viper.SetDefault("query_timeout", "15s")
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".nodealloc", ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, "nodealloc", ConfigFilename+"."+ConfigType), nil
}

// SaveConfig saves current Viper config to the user config file
func SaveConfig() error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateBinary checks if a binary exists and is executable
func ValidateBinary(binPath string) bool {
	if binPath == "" {
		return false
	}

	// If it's a full path, check directly
	if filepath.IsAbs(binPath) {
		info, err := os.Stat(binPath)
		if err != nil {
			return false
		}
		// Check if it's executable (unix-style check)
		return info.Mode()&0111 != 0
	}

	// Otherwise, try to find it in PATH
	_, err := exec.LookPath(binPath)
	return err == nil
}

// DetectBin attempts to find a Slurm tool in PATH.
// Returns the full absolute path if found, empty string otherwise.
func DetectBin(name string) string {
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return ""
}

// AutoDetectAndSave auto-detects Slurm binaries and saves to config if needed
// Returns true if config was updated
func AutoDetectAndSave() (bool, error) {
	updated := false

	for _, tool := range slurmTools {
		key := tool + "_bin"
		if ValidateBinary(viper.GetString(key)) {
			continue
		}
		if detected := DetectBin(tool); detected != "" {
			viper.Set(key, detected)
			updated = true
		}
	}

	if updated {
		if err := SaveConfig(); err != nil {
			return false, err
		}
	}

	return updated, nil
}

// ForceDetectAndSave always re-detects binaries from the current PATH and
// saves, even if nothing changed, so `config init` creates the file.
// Returns true if any value changed.
func ForceDetectAndSave() (bool, error) {
	updated := false

	for _, tool := range slurmTools {
		key := tool + "_bin"
		detected := DetectBin(tool)
		if detected != "" && viper.GetString(key) != detected {
			viper.Set(key, detected)
			updated = true
		}
	}

	if err := SaveConfig(); err != nil {
		return false, err
	}

	return updated, nil
}

// LoadFromViper loads config from Viper into the Global struct
func LoadFromViper() {
	if bin := viper.GetString("salloc_bin"); bin != "" {
		Global.SallocBin = bin
	}
	if bin := viper.GetString("squeue_bin"); bin != "" {
		Global.SqueueBin = bin
	}
	if bin := viper.GetString("scancel_bin"); bin != "" {
		Global.ScancelBin = bin
	}
	if bin := viper.GetString("sinfo_bin"); bin != "" {
		Global.SinfoBin = bin
	}

	if d := parseTimeout(viper.GetString("allocate_timeout")); d > 0 {
		Global.AllocateTimeout = d
	}
	if d := parseTimeout(viper.GetString("immediate_timeout")); d > 0 {
		Global.ImmediateTimeout = d
	}
	if d := parseTimeout(viper.GetString("query_timeout")); d > 0 {
		Global.QueryTimeout = d
	}
}

// parseTimeout parses a duration string like "30s" or "1m". Returns 0 on
// any parse failure so the existing value is kept.
func parseTimeout(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}
