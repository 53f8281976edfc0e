package spaces

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("spaces", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8081 {
		t.Fatalf("expected default port 8081, got %d", cfg.Port)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("CAMPUS_COMMONS_SPACES_PORT", "9081")

	fs := flag.NewFlagSet("spaces", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "9082"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9082 {
		t.Fatalf("expected port override 9082, got %d", cfg.Port)
	}
}

func TestParseConfigEnvOnly(t *testing.T) {
	t.Setenv("CAMPUS_COMMONS_SPACES_PORT", "9083")

	fs := flag.NewFlagSet("spaces", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9083 {
		t.Fatalf("expected env port 9083, got %d", cfg.Port)
	}
}
