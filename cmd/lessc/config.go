package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig holds defaults loadable from a --config YAML file. A non-empty
// --output or --metrics-addr flag overrides the file's value; include paths
// from the file and from --include-path flags are combined, file entries
// first; minification is on if either the file or a flag enables it.
type fileConfig struct {
	Minify       bool     `yaml:"minify"`
	IncludePaths []string `yaml:"include_paths"`
	Output       string   `yaml:"output"`
	MetricsAddr  string   `yaml:"metrics_addr"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
