// Package config loads pinmux run configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceMux/pkg/network"
	"github.com/OpenTraceLab/OpenTraceMux/pkg/pinmux"
)

// LoadError is returned when a configuration file cannot be used.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// File is the on-disk layout:
//
//	filter_field: group
//	filter: [GPIOA, GPIOB]
//	filter_file: groups.txt
//	include_singletons: false
//	format: text
type File struct {
	FilterField       string   `yaml:"filter_field"`
	Filter            []string `yaml:"filter"`
	FilterFile        string   `yaml:"filter_file"`
	IncludeSingletons bool     `yaml:"include_singletons"`
	Format            string   `yaml:"format"`
}

// Run is a validated configuration ready to drive a run.
type Run struct {
	Field   pinmux.Field
	Filter  []string
	Network *network.Config
}

// Default returns the configuration used without a file.
func Default() *Run {
	return &Run{
		Field:   pinmux.FieldGroup,
		Network: network.DefaultConfig(),
	}
}

// Parse decodes YAML bytes. Relative filter_file paths resolve against dir.
func Parse(data []byte, dir string) (*Run, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{Path: dir, Message: "failed to parse YAML", Cause: err}
	}
	return f.resolve(dir)
}

// Load reads and validates a configuration file.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read config", Cause: err}
	}

	run, err := Parse(data, filepath.Dir(path))
	if le, ok := err.(*LoadError); ok {
		le.Path = path
	}
	return run, err
}

func (f *File) resolve(dir string) (*Run, error) {
	field, err := pinmux.ParseField(f.FilterField)
	if err != nil {
		return nil, &LoadError{Path: dir, Message: "invalid filter_field", Cause: err}
	}

	run := Default()
	run.Field = field
	run.Filter = append(run.Filter, f.Filter...)
	run.Network.SortBy = field
	run.Network.IncludeSingletons = f.IncludeSingletons
	run.Network.Format = network.Format(f.Format)
	if err := run.Network.Validate(); err != nil {
		return nil, &LoadError{Path: dir, Message: "invalid format", Cause: err}
	}

	if f.FilterFile != "" {
		path := f.FilterFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		keys, err := ReadFilterFile(path)
		if err != nil {
			return nil, &LoadError{Path: dir, Message: "invalid filter_file", Cause: err}
		}
		run.Filter = append(run.Filter, keys...)
	}

	return run, nil
}

// ReadFilterFile reads a filter list, one name per line.
func ReadFilterFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open filter: %w", err)
	}
	defer file.Close()

	return pinmux.ReadFilter(file)
}
