// Package config builds a server.Config by merging built-in defaults, an
// optional YAML file, and CLI flag overrides, highest precedence last —
// the same layered merge the teacher uses for its generator config.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/willmcpherson2/drd/server"
)

// File is the on-disk YAML shape for an optional --config file. Any
// field left unset keeps whatever value the layer below it set.
type File struct {
	Directory   *string `yaml:"directory"`
	Port        *int    `yaml:"port"`
	TimeoutMS   *int64  `yaml:"timeout"`
	Verbose     *bool   `yaml:"verbose"`
	Concurrency *int    `yaml:"concurrency"`
}

// Defaults matches the original CLI's own defaults (directory "db",
// port 2345, a 5 second connection timeout).
func Defaults() server.Config {
	return server.Config{
		Directory:   "db",
		Port:        2345,
		Timeout:     5 * time.Second,
		Verbose:     false,
		Concurrency: 0,
	}
}

// ParseFile reads and parses a YAML config file. An empty path returns
// a zero File, meaning "no overrides".
func ParseFile(path string) (File, error) {
	if path == "" {
		return File{}, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(buf, &f); err != nil {
		return File{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return f, nil
}

// Merge applies a parsed File's set fields onto base, then applies
// cliFlags, a second File populated only with fields the user actually
// passed on the command line. CLI flags take precedence over the
// config file, which takes precedence over base.
func Merge(base server.Config, file File, cliFlags File) server.Config {
	result := applyFile(base, file)
	return applyFile(result, cliFlags)
}

func applyFile(base server.Config, f File) server.Config {
	result := base
	if f.Directory != nil {
		result.Directory = *f.Directory
	}
	if f.Port != nil {
		result.Port = *f.Port
	}
	if f.TimeoutMS != nil {
		result.Timeout = time.Duration(*f.TimeoutMS) * time.Millisecond
	}
	if f.Verbose != nil {
		result.Verbose = *f.Verbose
	}
	if f.Concurrency != nil {
		result.Concurrency = *f.Concurrency
	}
	return result
}
