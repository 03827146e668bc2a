package config

import (
	"testing"
	"time"
)

func TestParseTimeout(t *testing.T) {
	cases := map[string]time.Duration{
		"30s":   30 * time.Second,
		"1m":    time.Minute,
		"1m30s": 90 * time.Second,
		// invalid values should be rejected so the existing value is kept
		"":     0,
		"soon": 0,
		"-10s": 0,
		"0s":   0,
	}

	for input, want := range cases {
		got := parseTimeout(input)
		if got != want {
			t.Errorf("parseTimeout(%q) = %v; want %v", input, got, want)
		}
	}
}

func TestValidateBinary(t *testing.T) {
	if ValidateBinary("") {
		t.Errorf("empty path should not validate")
	}
	if ValidateBinary("/no/such/binary-xyz") {
		t.Errorf("nonexistent absolute path should not validate")
	}
	// sh is present on any unix-like system this tool targets
	if !ValidateBinary("sh") {
		t.Errorf("expected sh to be found in PATH")
	}
}

func TestLoadDefaults(t *testing.T) {
	LoadDefaults()

	if Global.SallocBin != "salloc" {
		t.Errorf("SallocBin = %q; want salloc", Global.SallocBin)
	}
	if Global.AllocateTimeout != 30*time.Second {
		t.Errorf("AllocateTimeout = %v; want 30s", Global.AllocateTimeout)
	}
	if Global.ImmediateTimeout != 10*time.Second {
		t.Errorf("ImmediateTimeout = %v; want 10s", Global.ImmediateTimeout)
	}
	if Global.Version != VERSION {
		t.Errorf("Version = %q; want %q", Global.Version, VERSION)
	}
}
