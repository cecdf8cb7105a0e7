package main

import (
	"errors"
	"flag"
	"io"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.width != 1280 || cfg.height != 720 || cfg.grid != 3 || !cfg.vsync {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.streaming() {
		t.Fatal("streaming should be off by default")
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
		check   func(config) bool
	}{
		{
			name:  "stream radius",
			args:  []string{"-stream", "4", "-workers", "2"},
			check: func(c config) bool { return c.streaming() && c.streamRadius == 4 && c.workers == 2 },
		},
		{
			name:  "alignment override",
			args:  []string{"-alignment", "512", "-vsync=false"},
			check: func(c config) bool { return c.alignment == 512 && !c.vsync },
		},
		{name: "bad alignment", args: []string{"-alignment", "300"}, wantErr: "power of two"},
		{name: "bad size", args: []string{"-width", "0"}, wantErr: "window size"},
		{name: "negative grid", args: []string{"-grid", "-1"}, wantErr: "grid"},
		{name: "stray argument", args: []string{"extra"}, wantErr: "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseConfig(tt.args, io.Discard)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !tt.check(cfg) {
				t.Fatalf("config = %+v", cfg)
			}
		})
	}
}

func TestParseConfigHelp(t *testing.T) {
	if _, err := parseConfig([]string{"-h"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("err = %v, want flag.ErrHelp", err)
	}
}
