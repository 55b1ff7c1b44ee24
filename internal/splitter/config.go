// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package splitter drives the Tokeniser/Parser, Resolver, Collector and
// Hasher in internal/stepfile to decompose a STEP file into per-body
// files plus a multiplicity report.
package splitter

import (
	"os"

	stepErrors "github.com/kraklabs/stepsplitter/internal/errors"
	"gopkg.in/yaml.v3"
)

// Config holds run-level overrides. It is loaded fresh on every
// invocation and never written back — this tool persists no state across
// runs. The zero value is the default configuration.
type Config struct {
	// GeometryWhitelist overrides DefaultGeometryWhitelist for the
	// Geometry Hasher, for AP203 dialects that use additional or
	// differently-named primitive entity types. Empty means defaults.
	GeometryWhitelist []string `yaml:"geometry_whitelist"`

	// SignificantDigits overrides the hasher's numeric rounding precision
	// (default: 6). Zero means the default.
	SignificantDigits int `yaml:"significant_digits"`
}

// LoadConfig reads a YAML config file from path. An empty path is not an
// error: it returns the zero-value (all-defaults) Config.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, stepErrors.NewConfigError("cannot read config file "+path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, stepErrors.NewConfigError("cannot parse config file "+path, err)
	}
	return cfg, nil
}
