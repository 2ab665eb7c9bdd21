// Package transform reaches the external script toolchain: an opaque
// source-to-bytecode compiler and its reverse. The codec never depends on
// this package; it exists for tooling that rewrites script payloads
// before packing or after extraction.
//
// The contract is bytes in, bytes out, or failure. Nothing about the
// toolchain's internals leaks past the subprocess boundary.
package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrTransform is returned when the toolchain exits non-zero or cannot
// be started.
var ErrTransform = errors.New("transform: toolchain failure")

// Service converts between script source text and bytecode.
type Service interface {
	// Compile turns source text into bytecode.
	Compile(ctx context.Context, src []byte) ([]byte, error)

	// Decompile turns bytecode back into source text.
	Decompile(ctx context.Context, bytecode []byte) ([]byte, error)
}

// Command is a Service backed by subprocesses: input on stdin, output on
// stdout, non-zero exit is failure.
type Command struct {
	compile   []string
	decompile []string
	logger    *slog.Logger
}

var _ Service = (*Command)(nil)

// CommandOption configures a Command.
type CommandOption func(*Command)

// WithLogger attaches a logger for invocation diagnostics. nil discards.
func WithLogger(logger *slog.Logger) CommandOption {
	return func(c *Command) {
		c.logger = logger
	}
}

// NewCommand creates a subprocess-backed Service. Each argv is the full
// command line for one direction; an empty argv makes that direction
// fail with ErrTransform.
func NewCommand(compileArgv, decompileArgv []string, opts ...CommandOption) *Command {
	c := &Command{compile: compileArgv, decompile: decompileArgv}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Compile implements Service.
func (c *Command) Compile(ctx context.Context, src []byte) ([]byte, error) {
	return c.run(ctx, c.compile, src)
}

// Decompile implements Service.
func (c *Command) Decompile(ctx context.Context, bytecode []byte) ([]byte, error) {
	return c.run(ctx, c.decompile, bytecode)
}

func (c *Command) run(ctx context.Context, argv []string, input []byte) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: no command configured", ErrTransform)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("running toolchain", "command", strings.Join(argv, " "), "input_bytes", len(input))
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrTransform, argv[0], msg)
	}

	return stdout.Bytes(), nil
}
