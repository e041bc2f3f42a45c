// Command sandboxjs is a thin host-shell CLI over the engine, in the shape
// of the teacher's cmd/paserati: flag-driven file/-e/REPL modes wrapping a
// persistent session object. Unlike the teacher, this engine treats the
// parser as an external collaborator (CORE SPEC §1) rather than owning one,
// so this shell has nothing to parse guest source with out of the box; a
// real deployment wires in a conforming parser via interp.WithParser before
// RunAll does anything besides return the "no Parser configured" error
// eval.go documents. Every mode (-e, file, REPL) runs its source through
// the host-shell's RunAll against whatever Parser was compiled in.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap/zapcore"

	"sandboxjs/pkg/config"
	"sandboxjs/pkg/hostshell"
	"sandboxjs/pkg/interp"
	"sandboxjs/pkg/logging"
	"sandboxjs/pkg/regexsandbox"
	"sandboxjs/pkg/value"
)

func main() {
	exprFlag := flag.String("e", "", "Run the given expression and exit")
	verboseFlag := flag.Bool("v", false, "Enable debug logging to stderr")
	flag.Parse()

	logLevel := zapcore.WarnLevel
	if *verboseFlag {
		logLevel = zapcore.DebugLevel
	}

	if *exprFlag != "" {
		runSource(*exprFlag, logLevel)
		return
	}

	if flag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Usage: sandboxjs [script] or sandboxjs -e \"expression\"\n")
		os.Exit(64)
	} else if flag.NArg() == 1 {
		runFile(flag.Arg(0), logLevel)
	} else {
		runRepl(logLevel)
	}
}

func newShell(logLevel zapcore.Level) *hostshell.Shell {
	cfg := config.LoadOrDefault()
	i := interp.New(
		interp.WithConfig(cfg),
		interp.WithLogger(logging.New(logLevel)),
		interp.WithRegexExecutor(regexsandbox.New()),
	)
	return hostshell.New(i)
}

func runSource(source string, logLevel zapcore.Level) {
	shell := newShell(logLevel)
	v, err := shell.RunAll(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(70)
	}
	fmt.Println(displayValue(shell, v))
}

func runFile(filename string, logLevel zapcore.Level) {
	sourceBytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read file '%s': %s\n", filename, err)
		os.Exit(70)
	}
	runSource(string(sourceBytes), logLevel)
}

func runRepl(logLevel zapcore.Level) {
	shell := newShell(logLevel)
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("sandboxjs (Ctrl+D to exit)")
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
			return
		}
		if line == "\n" {
			continue
		}
		v, err := shell.RunAll(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			continue
		}
		fmt.Println(displayValue(shell, v))
	}
}

// displayValue renders a completion value the REPL/-e modes print, via the
// engine's own ToStringValue rather than a host-side %v dump. That
// conversion does not call a guest object's own toString; objects print
// as their class tag (arrays as their joined elements).
func displayValue(shell *hostshell.Shell, v value.Value) string {
	s, err := shell.Interp.ToStringValue(v)
	if err != nil {
		return fmt.Sprintf("%v", err)
	}
	return s
}
