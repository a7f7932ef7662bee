package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/goldrun/internal/expect"
	"github.com/roach88/goldrun/internal/stage"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goldrun.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "./cici", cfg.Compiler)
	assert.Equal(t, []string{"make"}, cfg.Build)
	assert.Equal(t, []string{"gcc"}, cfg.Assembler)
	assert.Equal(t, "tests", cfg.Fixtures)
	assert.Equal(t, "fail-fast", cfg.Policy)
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
compiler: ./build/cc
build: []
assembler: [clang, -o, prog]
executable: prog
extension: .cc
expectations: sibling
policy: collect-all
stages: [lex, parse]
unicode_nfc: true
`))
	require.NoError(t, err)

	assert.Equal(t, "./build/cc", cfg.Compiler)
	assert.Empty(t, cfg.Build)
	assert.Equal(t, []string{"clang", "-o", "prog"}, cfg.Assembler)
	assert.Equal(t, "prog", cfg.Executable)
	assert.Equal(t, ".cc", cfg.Extension)
	assert.Equal(t, "sibling", cfg.Expectations)
	assert.Equal(t, "collect-all", cfg.Policy)
	assert.True(t, cfg.UnicodeNFC)

	names, err := cfg.StageNames()
	require.NoError(t, err)
	assert.Equal(t, []stage.Name{stage.Lex, stage.Parse}, names)

	mode, err := cfg.ExpectMode()
	require.NoError(t, err)
	assert.Equal(t, expect.ModeSibling, mode)
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte("compilr: ./cici\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilr")
}

func TestParseSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty compiler", `compiler: ""`},
		{"unknown policy", `policy: keep-going`},
		{"unknown mode", `expectations: inline`},
		{"unknown stage", `stages: [lex, codegen]`},
		{"empty stages", `stages: []`},
		{"extension without dot", `extension: c`},
		{"empty assembler", `assembler: []`},
		{"empty executable", `executable: ""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("stages: [lex\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestWorkDirResolvesFixtures(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Parse([]byte("work_dir: " + dir + "\nfixtures: cases\n"))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.WorkDir)
	assert.Equal(t, filepath.Join(dir, "cases"), cfg.Fixtures)
}

func TestWorkDirKeepsAbsoluteFixtures(t *testing.T) {
	work := t.TempDir()
	fixtures := t.TempDir()
	cfg, err := Parse([]byte("work_dir: " + work + "\nfixtures: " + fixtures + "\n"))
	require.NoError(t, err)
	assert.Equal(t, fixtures, cfg.Fixtures)
}

func TestResolveAfterOverride(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Parse([]byte("work_dir: " + dir + "\n"))
	require.NoError(t, err)

	cfg.Fixtures = "cases"
	require.NoError(t, cfg.Resolve())
	assert.Equal(t, filepath.Join(dir, "cases"), cfg.Fixtures)

	require.NoError(t, cfg.Resolve())
	assert.Equal(t, filepath.Join(dir, "cases"), cfg.Fixtures)
}

func TestLoadExplicitPath(t *testing.T) {
	path := writeConfig(t, "policy: collect-all\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "collect-all", cfg.Policy)
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalidNamesFile(t *testing.T) {
	path := writeConfig(t, "policy: nope\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), path)
}

func TestLoadDefaultFileFallback(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadDefaultFilePresent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("fixtures: cases\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "cases", cfg.Fixtures)
}
