package config

import "time"

const VERSION = "0.4.2"

// Config holds global application settings
type Config struct {
	Debug   bool
	Version string

	// Slurm binary paths. Empty means the tool was not found; operations
	// that need it will report Slurm as unavailable instead of failing.
	SallocBin  string
	SqueueBin  string
	ScancelBin string
	SinfoBin   string

	// Bounded waits for external invocations. Allocation waits depend on
	// the request mode; queries share one budget.
	AllocateTimeout  time.Duration
	ImmediateTimeout time.Duration
	QueryTimeout     time.Duration
}

// Global holds the singleton configuration instance
var Global Config

// LoadDefaults resets Global to built-in defaults. Viper values and flags
// are layered on top afterwards.
func LoadDefaults() {
	Global = Config{
		Debug:            false,
		Version:          VERSION,
		SallocBin:        "salloc",
		SqueueBin:        "squeue",
		ScancelBin:       "scancel",
		SinfoBin:         "sinfo",
		AllocateTimeout:  30 * time.Second,
		ImmediateTimeout: 10 * time.Second,
		QueryTimeout:     15 * time.Second,
	}
}
