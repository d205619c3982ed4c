package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// CommandRunner defines the interface for running external commands
// This allows mocking exec.Command in tests
type CommandRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Start launches a command and returns its stdout. Closing the reader stops the
	// command; once stdout is drained, Close reports a non-zero exit.
	Start(ctx context.Context, name string, args ...string) (io.ReadCloser, error)
}

// ExecCommandRunner is the production implementation using os/exec
type ExecCommandRunner struct{}

// Output executes a command and returns its output
func (r *ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

// Start executes a command and streams its stdout
func (r *ExecCommandRunner) Start(ctx context.Context, name string, args ...string) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &processReader{ReadCloser: stdout, cmd: cmd}, nil
}

type processReader struct {
	io.ReadCloser
	cmd     *exec.Cmd
	drained bool
}

func (p *processReader) Read(b []byte) (int, error) {
	n, err := p.ReadCloser.Read(b)
	if err == io.EOF {
		p.drained = true
	}
	return n, err
}

// Close reaps the process. After the output was read to the end it returns the
// exit error of a failed decode; a process stopped early is killed quietly.
func (p *processReader) Close() error {
	if !p.drained {
		p.ReadCloser.Close()
		p.cmd.Process.Kill()
		p.cmd.Wait()
		return nil
	}
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("%s exited: %w", p.cmd.Path, err)
	}
	return nil
}
