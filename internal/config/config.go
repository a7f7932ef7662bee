// Package config loads the harness configuration file.
//
// The file is YAML (goldrun.yaml by default). Unknown keys are rejected so
// typos surface immediately, and the decoded values are checked against an
// embedded CUE schema. Every key is optional:
//
//	compiler: ./cici          # compiler-under-test
//	build: [make]             # empty list skips the build
//	assembler: [gcc]          # assembly path is appended
//	executable: a.out         # produced by the assembler in work_dir
//	fixtures: tests
//	extension: .c
//	asm_suffix: .s
//	work_dir: ""              # tools run here; empty is the current directory
//	expectations: auto        # auto | annotation | sibling
//	policy: fail-fast         # fail-fast | collect-all
//	stages: [lex, parse, execute]
//	unicode_nfc: false
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/goldrun/internal/expect"
	"github.com/roach88/goldrun/internal/stage"
)

//go:embed schema.cue
var schemaCUE string

// DefaultFile is read when no configuration path is given.
const DefaultFile = "goldrun.yaml"

// ErrInvalid is returned when the configuration violates the schema.
var ErrInvalid = errors.New("invalid configuration")

// Config is the harness configuration.
type Config struct {
	Compiler     string   `yaml:"compiler" json:"compiler"`
	Build        []string `yaml:"build" json:"build"`
	Assembler    []string `yaml:"assembler" json:"assembler"`
	Executable   string   `yaml:"executable" json:"executable"`
	Fixtures     string   `yaml:"fixtures" json:"fixtures"`
	Extension    string   `yaml:"extension" json:"extension"`
	AsmSuffix    string   `yaml:"asm_suffix" json:"asm_suffix"`
	WorkDir      string   `yaml:"work_dir" json:"work_dir"`
	Expectations string   `yaml:"expectations" json:"expectations"`
	Policy       string   `yaml:"policy" json:"policy"`
	Stages       []string `yaml:"stages" json:"stages"`
	UnicodeNFC   bool     `yaml:"unicode_nfc" json:"unicode_nfc"`
}

// Default returns the configuration used when no file is present.
// It matches the layout of a C compiler project: a Makefile producing
// ./cici and fixtures under tests/.
func Default() *Config {
	return &Config{
		Compiler:     "./cici",
		Build:        []string{"make"},
		Assembler:    append([]string{}, stage.DefaultAssembler...),
		Executable:   stage.DefaultExecutable,
		Fixtures:     "tests",
		Extension:    ".c",
		AsmSuffix:    stage.DefaultAsmSuffix,
		Expectations: string(expect.ModeAuto),
		Policy:       "fail-fast",
		Stages:       []string{string(stage.Lex), string(stage.Parse), string(stage.Execute)},
	}
}

// Load reads the configuration at path.
//
// An empty path reads DefaultFile if it exists and falls back to Default
// otherwise. An explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		cfg := Default()
		return cfg, cfg.Resolve()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against the embedded CUE schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	// Encode nil lists as [] so they unify with list constraints.
	shadow := *c
	if shadow.Build == nil {
		shadow.Build = []string{}
	}
	if shadow.Assembler == nil {
		shadow.Assembler = []string{}
	}
	if shadow.Stages == nil {
		shadow.Stages = []string{}
	}

	value := ctx.Encode(shadow)
	if err := value.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Resolve makes paths absolute when a work directory is set, so that the
// paths handed to tools running in that directory and the paths the harness
// opens itself agree. A relative fixtures path is taken relative to the work
// directory. Resolve is idempotent; call it again after changing fields.
func (c *Config) Resolve() error {
	if c.WorkDir == "" {
		return nil
	}

	abs, err := filepath.Abs(c.WorkDir)
	if err != nil {
		return fmt.Errorf("resolve work_dir: %w", err)
	}
	c.WorkDir = abs
	if !filepath.IsAbs(c.Fixtures) {
		c.Fixtures = filepath.Join(abs, c.Fixtures)
	}
	return nil
}

// StageNames returns the configured stages in run order.
func (c *Config) StageNames() ([]stage.Name, error) {
	names := make([]stage.Name, 0, len(c.Stages))
	for _, s := range c.Stages {
		n, err := stage.ParseName(s)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, nil
}

// ExpectMode returns the configured expectation mode.
func (c *Config) ExpectMode() (expect.Mode, error) {
	return expect.ParseMode(c.Expectations)
}
