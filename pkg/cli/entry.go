package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/revo/internal/config"
	"github.com/funvibe/revo/internal/core"
	revo "github.com/funvibe/revo/pkg/embed"
	"github.com/funvibe/revo/pkg/ext/storage"
)

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// newRuntime builds a runtime configured from the working directory,
// with the extension natives registered.
func newRuntime() (*revo.Runtime, error) {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	r := revo.New(cfg)
	storage.Register(r.Instance())
	return r, nil
}

// Entry is the command-line entry point: with a source-file argument it
// runs the file, otherwise it starts a REPL when stdin is a terminal.
func Entry(args []string) int {
	r, err := newRuntime()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if len(args) > 0 {
		return runFile(r, args[0])
	}

	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return repl(r)
	}

	// Piped input: evaluate stdin as a script.
	var sb strings.Builder
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		sb.WriteString(sc.Text())
		sb.WriteByte('\n')
	}
	if _, err := r.Do(sb.String()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runFile(r *revo.Runtime, path string) int {
	if !isSourceFile(path) {
		fmt.Fprintf(os.Stderr, "not a %s source file: %s\n", config.SourceFileExt, filepath.Base(path))
		return 1
	}
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if _, err := r.Do(string(src)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func repl(r *revo.Runtime) int {
	fmt.Println("revo (empty line to quit)")
	in := bufio.NewScanner(os.Stdin)
	ins := r.Instance()
	for {
		fmt.Print(">> ")
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			break
		}
		out, err := r.Do(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if out.Kind() != core.KindGhost {
			fmt.Println("==", ins.MoldCell(&out))
		}
	}
	return 0
}
