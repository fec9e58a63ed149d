package runtime

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/kolkov/upype/internal/record"
)

// OpenError reports an input path that could not be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("can't open file %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// InputSet owns the input streams of one run. All paths are opened up front
// so a missing file is reported before any record is read.
type InputSet struct {
	sources []*record.Source
}

// OpenInputs opens every path in order. No paths, or the path "-", means
// stdin. On failure the streams already opened are closed again.
func OpenInputs(paths []string, stdin io.Reader) (*InputSet, error) {
	if len(paths) == 0 {
		paths = []string{record.StdinName}
	}

	set := &InputSet{sources: make([]*record.Source, 0, len(paths))}
	for i, path := range paths {
		var r io.Reader
		if path == record.StdinName {
			// stdin belongs to the process and is never closed here.
			r = io.NopCloser(stdin)
		} else {
			f, err := os.Open(path)
			if err != nil {
				set.CloseAll()
				return nil, &OpenError{Path: path, Err: err}
			}
			r = f
		}
		set.sources = append(set.sources, record.NewSource(path, i, r))
	}
	return set, nil
}

// Sources returns the streams in argument order.
func (s *InputSet) Sources() []*record.Source {
	return s.sources
}

// CloseAll closes every stream that is still open and returns the first
// error. Calling it again is a no-op.
func (s *InputSet) CloseAll() error {
	var errs []error
	for _, src := range s.sources {
		if err := src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", src.Name, err))
		}
	}
	return errors.Join(errs...)
}

// RunCommand runs cmdStr through the shell with the given standard streams
// and returns its exit status. A command that cannot be started is an error.
func RunCommand(cmdStr string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	cmd := exec.Command(getShell(), getShellArg(), cmdStr)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return -1, err
	}
}

// getShell returns the shell to use for command execution.
func getShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	// Windows
	if comspec := os.Getenv("COMSPEC"); comspec != "" {
		return comspec
	}
	return "sh"
}

// getShellArg returns the argument to pass to the shell for command execution.
func getShellArg() string {
	shell := getShell()
	// Windows cmd.exe uses /c
	if shell == os.Getenv("COMSPEC") || shell == "cmd.exe" || shell == "cmd" {
		return "/c"
	}
	return "-c"
}
