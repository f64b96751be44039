package installer

import (
	"bytes"
	"context"
	"os/exec"
)

// RunOptions carries per-invocation settings for a package manager call.
type RunOptions struct {
	// Dir is the project directory the command runs in.
	Dir string
}

// RunResult holds the captured output of a finished command. Stderr is kept
// even on failure so install errors can quote the manager's own message.
type RunResult struct {
	Stdout []byte
	Stderr []byte
}

// Runner abstracts package manager process execution so the engine can be
// tested without spawning bun.
type Runner interface {
	Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error)
}

// CmdRunner runs commands through exec.CommandContext.
type CmdRunner struct{}

func (CmdRunner) Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = opts.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return RunResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, err
}

var _ Runner = CmdRunner{}
