package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/corkboardhq/corkboard/internal/config"
)

func TestCommandWiring(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "version", "update"} {
		if !names[want] {
			t.Errorf("rootCmd missing %s command", want)
		}
	}
}

func TestServeFlags(t *testing.T) {
	for _, name := range []string{"stdio", "port", "db", "store-url", "store-key", "workspace", "origins"} {
		if serveCmd.Flags().Lookup(name) == nil {
			t.Errorf("serve missing --%s", name)
		}
	}
	for _, name := range []string{"config", "log-level"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("root missing --%s", name)
		}
	}
}

func TestApplyFlags(t *testing.T) {
	flags := serveCmd.Flags()
	for name, value := range map[string]string{
		"port":    "9090",
		"db":      "/tmp/board.db",
		"origins": "https://a.example, https://b.example",
	} {
		if err := flags.Set(name, value); err != nil {
			t.Fatalf("set --%s: %v", name, err)
		}
	}

	cfg := config.Default()
	applyFlags(serveCmd, cfg)

	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if cfg.DBPath != "/tmp/board.db" {
		t.Errorf("db path = %q, want /tmp/board.db", cfg.DBPath)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example" {
		t.Errorf("origins = %v, want the two flag values", cfg.AllowedOrigins)
	}
	if cfg.StoreURL != "" {
		t.Errorf("store url = %q, changed without its flag being set", cfg.StoreURL)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if !strings.Contains(buf.String(), "corkboard v") {
		t.Errorf("output = %q, want a corkboard version line", buf.String())
	}
}
