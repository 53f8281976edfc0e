package social

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("social", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8082 {
		t.Fatalf("expected default port 8082, got %d", cfg.Port)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("CAMPUS_COMMONS_SOCIAL_PORT", "9091")

	fs := flag.NewFlagSet("social", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "9092"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9092 {
		t.Fatalf("expected port override 9092, got %d", cfg.Port)
	}
}
