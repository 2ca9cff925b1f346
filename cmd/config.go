// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// config holds the dump subcommand's default flag values, loadable from a
// TOML file so repeated invocations against the same corpus don't need to
// repeat every flag by hand.
type config struct {
	Records   bool
	Tables    bool
	Warnings  bool
	Anomalies bool
	All       bool
}

// defaultConfigPath is where loadConfig looks when no --config flag is
// given: $HOME/.omfdump.toml, following the teacher pack's convention
// (holo-build reads its package definitions the same way, via
// toml.Decode) of a single flat TOML document per invocation.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".omfdump.toml")
}

// loadConfig decodes path into a config, returning a zero-value config
// (every flag defaulting to false) when path does not exist.
func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}
