package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/mln/tabular"
	"github.com/timenexus/timenexus/pkg/mln/transform"
)

// Definition describes the raw tables of a multilayer network.
type Definition struct {
	Name   string `toml:"name" yaml:"name" json:"name"`
	Layers int    `toml:"layers" yaml:"layers" json:"layers"`

	Defaults           Defaults `toml:"defaults" yaml:"defaults" json:"defaults"`
	AllNodesAreQueries bool     `toml:"all_nodes_are_queries" yaml:"all_nodes_are_queries" json:"all_nodes_are_queries"`
	AutoCoupling       bool     `toml:"auto_coupling" yaml:"auto_coupling" json:"auto_coupling"`

	Nodes []SheetDef `toml:"nodes" yaml:"nodes" json:"nodes"`
	Intra []SheetDef `toml:"intra" yaml:"intra" json:"intra"`
	Inter []SheetDef `toml:"inter" yaml:"inter" json:"inter"`
}

// Defaults are the values given to null weights and directions. Unset
// weights default to 1.
type Defaults struct {
	NodeWeight    *float64 `toml:"node_weight" yaml:"node_weight" json:"node_weight,omitempty"`
	IntraWeight   *float64 `toml:"intra_weight" yaml:"intra_weight" json:"intra_weight,omitempty"`
	InterWeight   *float64 `toml:"inter_weight" yaml:"inter_weight" json:"inter_weight,omitempty"`
	IntraDirected bool     `toml:"intra_directed" yaml:"intra_directed" json:"intra_directed"`
	InterDirected bool     `toml:"inter_directed" yaml:"inter_directed" json:"inter_directed"`
}

// SheetDef points at one CSV table and maps its columns to role labels.
type SheetDef struct {
	File      string            `toml:"file" yaml:"file" json:"file,omitempty"`
	Data      string            `toml:"data" yaml:"data" json:"data,omitempty"`
	Delimiter string            `toml:"delimiter" yaml:"delimiter" json:"delimiter,omitempty"`
	Columns   map[string]string `toml:"columns" yaml:"columns" json:"columns"`
}

// Validate checks the fields of d that do not depend on the tables.
func (d Definition) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Layers, validation.Required, validation.Min(1)),
		validation.Field(&d.Nodes, validation.Required),
		validation.Field(&d.Intra, validation.Required),
		validation.Field(&d.Inter, validation.When(d.Layers > 1 && !d.AutoCoupling, validation.Required)),
	)
}

// Validate checks that s has a source and a column mapping.
func (s SheetDef) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.File, validation.When(s.Data == "", validation.Required.Error("file or data is required"))),
		validation.Field(&s.Delimiter, validation.RuneLength(0, 1)),
		validation.Field(&s.Columns, validation.Required),
	)
}

// Options returns the converter options of d.
func (d Definition) Options() tabular.Options {
	opts := tabular.DefaultOptions(d.Layers)
	if w := d.Defaults.NodeWeight; w != nil {
		opts.DefaultNodeWeight = *w
	}
	if w := d.Defaults.IntraWeight; w != nil {
		opts.DefaultIntraWeight = *w
	}
	if w := d.Defaults.InterWeight; w != nil {
		opts.DefaultInterWeight = *w
	}
	opts.IntraDirected = d.Defaults.IntraDirected
	opts.InterDirected = d.Defaults.InterDirected
	opts.AllNodesAreQueries = d.AllNodesAreQueries
	opts.AutoCoupling = d.AutoCoupling
	return opts
}

// LoadDefinition reads a TOML (.toml) or YAML (.yaml, .yml) definition.
// A definition without a name is named after its file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid network definition",
			"The definition %s cannot be read.", path)
	}
	var d *Definition
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		d, err = ParseDefinition(data, FormatTOML)
	case ".yaml", ".yml":
		d, err = ParseDefinition(data, FormatYAML)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "Invalid network definition",
			"Unsupported definition format %q: use .toml, .yaml or .yml.", ext)
	}
	if err != nil {
		return nil, err
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// Format is the syntax of a definition.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ParseDefinition decodes and validates a definition.
func ParseDefinition(data []byte, format Format) (*Definition, error) {
	var d Definition
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&d)
	case FormatYAML:
		err = yaml.Unmarshal(data, &d)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "Invalid network definition",
			"Unsupported definition format %q.", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid network definition",
			"The definition cannot be decoded: %v", err)
	}
	if err := d.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid network definition",
			"%v", err)
	}
	return &d, nil
}

// Input reads every sheet of d. Relative file paths are resolved against
// dir.
func (d Definition) Input(dir string) (tabular.Input, error) {
	var in tabular.Input
	var err error
	if in.Nodes, err = readSheets(d.Nodes, dir, "nodes"); err != nil {
		return in, err
	}
	if in.Intra, err = readSheets(d.Intra, dir, "intra"); err != nil {
		return in, err
	}
	if !d.AutoCoupling {
		if in.Inter, err = readSheets(d.Inter, dir, "inter"); err != nil {
			return in, err
		}
	}
	return in, nil
}

func readSheets(defs []SheetDef, dir, kind string) ([]tabular.Sheet, error) {
	out := make([]tabular.Sheet, len(defs))
	for i, def := range defs {
		s, err := def.Sheet(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, errors.TitleOf(err),
				"%s sheet %d: %s", kind, i+1, errors.UserMessage(err))
		}
		out[i] = s
	}
	return out, nil
}

// Sheet reads the CSV table of s and binds its columns to their roles.
func (s SheetDef) Sheet(dir string) (tabular.Sheet, error) {
	delim := ','
	if s.Delimiter != "" {
		delim = []rune(s.Delimiter)[0]
	}
	var header []string
	var rows [][]string
	var err error
	if s.File == "" {
		header, rows, err = ReadCSV(strings.NewReader(s.Data), delim)
	} else {
		path := s.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		header, rows, err = ReadCSVFile(path, delim)
	}
	if err != nil {
		return tabular.Sheet{}, err
	}
	roles, err := Roles(header, s.Columns)
	if err != nil {
		return tabular.Sheet{}, err
	}
	return tabular.Sheet{Header: header, Rows: rows, Roles: roles}, nil
}

// Roles parses the role labels of columns, in header order. Every mapped
// column must be in header.
func Roles(header []string, columns map[string]string) ([]tabular.Assignment, error) {
	known := make(map[string]bool, len(header))
	for _, h := range header {
		known[h] = true
	}
	for col := range columns {
		if !known[col] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "Invalid column mapping",
				"The column %q is not in the table header.", col)
		}
	}
	var out []tabular.Assignment
	for _, h := range header {
		label, ok := columns[h]
		if !ok {
			continue
		}
		role, layer, err := tabular.ParseRole(label)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid column mapping",
				"Column %q: %v", h, err)
		}
		out = append(out, tabular.Assignment{Column: h, Role: role, Layer: layer})
	}
	return out, nil
}

// Build converts the tables of d into a collection named after d.
func Build(d *Definition, dir string) (*mln.Collection, error) {
	in, err := d.Input(dir)
	if err != nil {
		return nil, err
	}
	m, err := tabular.Convert(in, d.Options())
	if err != nil {
		return nil, err
	}
	return transform.FromModel(m, d.Name)
}

// BuildFile loads the definition at path and builds it.
func BuildFile(path string) (*mln.Collection, error) {
	d, err := LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	return Build(d, filepath.Dir(path))
}
