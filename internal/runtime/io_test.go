package runtime

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kolkov/upype/internal/record"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestOpenInputsDefaultsToStdin(t *testing.T) {
	set, err := OpenInputs(nil, strings.NewReader("x\n"))
	if err != nil {
		t.Fatalf("OpenInputs failed: %v", err)
	}
	defer set.CloseAll()

	sources := set.Sources()
	if len(sources) != 1 || sources[0].Name != record.StdinName {
		t.Fatalf("sources = %v, want only stdin", sources)
	}
	data, err := io.ReadAll(sources[0].Reader)
	if err != nil || string(data) != "x\n" {
		t.Errorf("stdin content = %q, %v", data, err)
	}
}

func TestOpenInputsOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "a\n")
	b := writeFile(t, dir, "b.txt", "b\n")

	set, err := OpenInputs([]string{a, "-", b}, strings.NewReader("s\n"))
	if err != nil {
		t.Fatalf("OpenInputs failed: %v", err)
	}
	defer set.CloseAll()

	var names []string
	for i, src := range set.Sources() {
		if src.Index != i {
			t.Errorf("source %s has Index %d, want %d", src.Name, src.Index, i)
		}
		names = append(names, src.Name)
	}
	want := []string{a, "-", b}
	if strings.Join(names, "|") != strings.Join(want, "|") {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestOpenInputsMissingFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "ok\n")
	missing := filepath.Join(dir, "missing.txt")

	_, err := OpenInputs([]string{good, missing}, nil)
	var oe *OpenError
	if !errors.As(err, &oe) {
		t.Fatalf("err = %v, want *OpenError", err)
	}
	if oe.Path != missing {
		t.Errorf("Path = %q, want %q", oe.Path, missing)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("OpenError does not unwrap to os.ErrNotExist")
	}
	if !strings.Contains(err.Error(), "can't open file") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestCloseAllOnce(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.txt", "data\n")

	set, err := OpenInputs([]string{path}, nil)
	if err != nil {
		t.Fatalf("OpenInputs failed: %v", err)
	}
	if err := set.CloseAll(); err != nil {
		t.Fatalf("first CloseAll: %v", err)
	}
	if err := set.CloseAll(); err != nil {
		t.Errorf("second CloseAll: %v", err)
	}
	if !set.Sources()[0].Closed() {
		t.Error("source not marked closed")
	}
	f := set.Sources()[0].Reader.(*os.File)
	if _, err := f.Read(make([]byte, 1)); err == nil {
		t.Error("file still readable after CloseAll")
	}
}

func TestCloseAllKeepsStdinOpen(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe failed: %v", err)
	}
	defer r.Close()
	defer w.Close()

	set, err := OpenInputs([]string{"-"}, r)
	if err != nil {
		t.Fatalf("OpenInputs failed: %v", err)
	}
	set.CloseAll()

	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	buf := make([]byte, 1)
	if _, err := r.Read(buf); err != nil {
		t.Errorf("stdin was closed: %v", err)
	}
}

func TestRunCommand(t *testing.T) {
	if _, err := exec.LookPath(getShell()); err != nil {
		t.Skip("no shell available")
	}

	var out bytes.Buffer
	code, err := RunCommand("echo hello", nil, &out, io.Discard)
	if err != nil {
		t.Fatalf("RunCommand failed: %v", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if strings.TrimSpace(out.String()) != "hello" {
		t.Errorf("output = %q", out.String())
	}

	code, err = RunCommand("exit 3", nil, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("RunCommand failed: %v", err)
	}
	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

func TestRunCommandStdin(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	var out bytes.Buffer
	if _, err := RunCommand("cat", strings.NewReader("piped"), &out, io.Discard); err != nil {
		t.Fatalf("RunCommand failed: %v", err)
	}
	if out.String() != "piped" {
		t.Errorf("output = %q, want %q", out.String(), "piped")
	}
}
