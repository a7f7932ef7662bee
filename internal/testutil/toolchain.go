package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

// FakeToolchain is a scripted stand-in for the compiler-under-test, the
// build tool and the assembler/linker.
//
// The fake compiler answers "<source> <output> <mode>" with the contents of
// "<source>.<mode>.out" (empty when absent) and exits with the integer in
// "<source>.<mode>.exit" (0 when absent). On a non-zero exit the reply goes
// to stdout whatever the output target.
//
// The fake assembler reads the generated assembly, which must hold the exit
// code the produced program should return, and writes an executable
// "a.out" in its working directory. An assembly starting with "fail" makes
// the assembler itself exit 1.
//
// Every tool appends one line per invocation to the log returned by Calls.
type FakeToolchain struct {
	Dir       string // working directory for all tools
	Fixtures  string // fixture directory inside Dir
	Compiler  string
	Assembler string
	Build     string
	BuildFail string
	log       string
}

const compilerScript = `#!/bin/sh
src="$1"; out="$2"; mode="$3"
echo "compile $mode $src" >> %[1]q
reply="$src.$mode.out"
code=0
if [ -f "$src.$mode.exit" ]; then code=$(cat "$src.$mode.exit"); fi
if [ "$code" != 0 ] || [ "$out" = stdout ]; then
	if [ -f "$reply" ]; then cat "$reply"; fi
	exit "$code"
fi
if [ -f "$reply" ]; then cat "$reply" > "$out"; else : > "$out"; fi
exit 0
`

const assemblerScript = `#!/bin/sh
echo "assemble $1" >> %[1]q
code=$(cat "$1")
case "$code" in
fail*) echo "assembler: $code"; exit 1 ;;
esac
printf '#!/bin/sh\nexit %%s\n' "$code" > a.out
chmod +x a.out
`

const buildScript = `#!/bin/sh
echo "build" >> %[1]q
exit %[2]d
`

// NewFakeToolchain writes the fake tools into a fresh temporary directory.
// Tests using it are skipped on Windows.
func NewFakeToolchain(t *testing.T) *FakeToolchain {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake toolchain requires a POSIX shell")
	}

	dir := t.TempDir()
	f := &FakeToolchain{
		Dir:       dir,
		Fixtures:  filepath.Join(dir, "tests"),
		Compiler:  filepath.Join(dir, "fakecc"),
		Assembler: filepath.Join(dir, "fakeas"),
		Build:     filepath.Join(dir, "fakemake"),
		BuildFail: filepath.Join(dir, "fakemake-broken"),
		log:       filepath.Join(dir, "calls.log"),
	}

	if err := os.MkdirAll(f.Fixtures, 0755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	writeScript(t, f.Compiler, fmt.Sprintf(compilerScript, f.log))
	writeScript(t, f.Assembler, fmt.Sprintf(assemblerScript, f.log))
	writeScript(t, f.Build, fmt.Sprintf(buildScript, f.log, 0))
	writeScript(t, f.BuildFail, fmt.Sprintf(buildScript, f.log, 2))
	return f
}

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Fixture writes a fixture into the fixture directory and returns its path.
func (f *FakeToolchain) Fixture(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(f.Fixtures, name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// Reply sets what the fake compiler prints and returns for fixturePath in mode.
func (f *FakeToolchain) Reply(t *testing.T, fixturePath, mode, output string, exitCode int) {
	t.Helper()
	if err := os.WriteFile(fixturePath+"."+mode+".out", []byte(output), 0644); err != nil {
		t.Fatalf("write reply: %v", err)
	}
	if exitCode == 0 {
		return
	}
	if err := os.WriteFile(fixturePath+"."+mode+".exit", []byte(strconv.Itoa(exitCode)), 0644); err != nil {
		t.Fatalf("write exit code: %v", err)
	}
}

// Calls returns the recorded tool invocations in order.
func (f *FakeToolchain) Calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(f.log)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read call log: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}
