package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// probeConfig is the optional ~/.sable-probe.toml file.
type probeConfig struct {
	HistoryFile string `toml:"history_file"`
	Prompt      string `toml:"prompt"`
	Trace       bool   `toml:"trace"`
}

func defaultConfig() probeConfig {
	home, _ := os.UserHomeDir()
	return probeConfig{
		HistoryFile: filepath.Join(home, ".sable_probe_history"),
		Prompt:      "sable> ",
	}
}

// loadConfig reads path (or the default location when path is empty) and
// fills in defaults for anything unset. A missing file is not an error.
func loadConfig(path string) (probeConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".sable-probe.toml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.HistoryFile == "" {
		cfg.HistoryFile = defaultConfig().HistoryFile
	}
	if cfg.Prompt == "" {
		cfg.Prompt = defaultConfig().Prompt
	}
	return cfg, nil
}
