package main

import (
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "policyscan" {
			t.Errorf("expected use 'policyscan', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has global flags", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name      string
			shorthand string
			defValue  string
		}{
			{name: "verbose", shorthand: "v", defValue: "false"},
			{name: "log-json", defValue: "false"},
			{name: "metrics-file", defValue: ""},
			{name: "config", shorthand: "c", defValue: ""},
			{name: "data-dir", defValue: ""},
		}
		for _, tt := range tests {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("%s: expected shorthand %q, got %q", tt.name, tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("%s: expected default %q, got %q", tt.name, tt.defValue, flag.DefValue)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{
			"analyze": false, "platform": false, "text": false, "chat": false,
			"history": false, "init": false, "version": false,
		}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})
}

func TestReportFlagsShared(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"analyze", "platform", "text", "history"} {
		cmd, _, err := NewRootCmd().Find([]string{name})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, flag := range []string{"json", "markdown", "output"} {
			if cmd.Flags().Lookup(flag) == nil {
				t.Errorf("%s: expected --%s flag", name, flag)
			}
		}
	}
}
