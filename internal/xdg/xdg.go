// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

// Package xdg resolves XDG Base Directory paths for Jobify.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "jobify"

// ConfigFileName is the default configuration file inside ConfigDir.
const ConfigFileName = "config.yaml"

// ConfigDir returns $XDG_CONFIG_HOME/jobify, falling back to ~/.config/jobify.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// DataDir returns $XDG_DATA_HOME/jobify, falling back to ~/.local/share/jobify.
func DataDir() (string, error) {
	return resolve("XDG_DATA_HOME", ".local", "share")
}

// StateDir returns $XDG_STATE_HOME/jobify, falling back to ~/.local/state/jobify.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", ".local", "state")
}

// ConfigFile returns the default config file path.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// UploadDir returns the directory where profile photo uploads are staged
// before they are handed to the image store.
func UploadDir() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "uploads"), nil
}

// EnsureDir creates path and its parents with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.Code("XDG_MKDIR_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

func resolve(envVar string, fallback ...string) (string, error) {
	if base := os.Getenv(envVar); base != "" {
		return filepath.Join(base, appName), nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", oops.Code("XDG_NO_HOME").With("env", envVar).Wrap(err)
		}
	}
	parts := append([]string{home}, fallback...)
	parts = append(parts, appName)
	return filepath.Join(parts...), nil
}
