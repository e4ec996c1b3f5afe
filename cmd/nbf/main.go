package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/jcgregorio/logger"
	"github.com/pkg/errors"
	"github.com/tebeka/atexit"
	"github.com/urfave/cli/v2"

	"github.com/agenthands/nbf/pkg/engine"
	"github.com/agenthands/nbf/pkg/stdlib"
	"github.com/agenthands/nbf/pkg/vm"
)

const usage = "Usage: nbf <source.bf>"

const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitInterrupted = 130
)

// Logger is the subset of *logger.Logger the CLI needs.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// usageError means the command line itself was wrong.
type usageError struct {
	cause error
}

func (e usageError) Error() string {
	if e.cause != nil {
		return "usage: " + e.cause.Error()
	}
	return "usage: expected exactly one source file"
}

func (e usageError) ExitCode() int { return exitUsage }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		// After the first interrupt a second one kills the process, even
		// while blocked on input.
		<-ctx.Done()
		stop()
	}()

	log := logger.NewFromOptions(&logger.Options{SyncWriter: os.Stderr})

	out := stdlib.NewByteOutput(os.Stdout)
	atexit.Register(func() {
		if err := out.Flush(); err != nil {
			log.Errorf("flushing output: %v", err)
		}
	})

	atexit.Exit(run(ctx, os.Args, os.Stdin, out, os.Stdout, log))
}

// run executes the command line in args and returns the process exit code.
// Program output goes to out; usage text goes to stdout.
func run(ctx context.Context, args []string, stdin io.Reader, out vm.Output, stdout io.Writer, log Logger) int {
	app := &cli.App{
		Name:            "nbf",
		Usage:           "run a program for the eight-instruction tape machine",
		ArgsUsage:       "<source.bf>",
		HideHelp:        true,
		HideHelpCommand: true,
		Writer:          stdout,
		ErrWriter:       stdout,
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return usageError{cause: err}
		},
		// Exit codes are chosen below, not inside the app.
		ExitErrHandler: func(*cli.Context, error) {},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return usageError{}
			}
			return execute(c.Context, c.Args().First(), stdin, out, log)
		},
	}

	return exitCode(app.RunContext(ctx, args), stdout, log)
}

func execute(ctx context.Context, path string, stdin io.Reader, out vm.Output, log Logger) error {
	src, err := stdlib.LoadSource(path, stdlib.MaxSourceSize)
	if err != nil {
		return err
	}
	prog, err := engine.Compile(src, log)
	if err != nil {
		return err
	}
	return engine.Execute(ctx, prog, stdlib.NewByteInput(stdin), out, engine.Options{Logger: log})
}

func exitCode(err error, stdout io.Writer, log Logger) int {
	if err == nil {
		return exitOK
	}

	var uerr usageError
	if errors.As(err, &uerr) {
		fmt.Fprintln(stdout, usage)
		return uerr.ExitCode()
	}

	class := engine.Classify(err)
	log.Errorf("%s: %v", class, err)
	if class == engine.ClassCanceled {
		return exitInterrupted
	}
	return exitFailure
}
