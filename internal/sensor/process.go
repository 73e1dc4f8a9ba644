package sensor

import (
	"fmt"
	"io"
	"os/exec"
	"syscall"
)

// Process is the capability surface the supervisor needs from the external
// sensor: launch it, read its streams, wait for exit, and signal
// termination. The supervisor's retry logic is tested against a fake
// implementation; production uses execProcess.
type Process interface {
	// Start launches the process and returns its stdout and stderr. On a
	// start error the process never ran and the readers are nil.
	Start() (stdout, stderr io.ReadCloser, err error)

	// Wait blocks until the process exits and returns its exit cause.
	// Call only after a successful Start and after both readers are done.
	Wait() error

	// Terminate asks the process to exit. Kill forcibly ends it.
	Terminate() error
	Kill() error
}

// Factory produces a fresh Process for each launch generation, so a
// restarted sensor never shares handles with its predecessor.
type Factory func() Process

// NewExecFactory returns a Factory that runs the executable at path with
// the device/channel selector as its single positional argument.
func NewExecFactory(path, device string) Factory {
	return func() Process {
		return &execProcess{path: path, device: device}
	}
}

// execProcess runs the sensor via os/exec.
type execProcess struct {
	path   string
	device string
	cmd    *exec.Cmd
}

func (p *execProcess) Start() (io.ReadCloser, io.ReadCloser, error) {
	cmd := exec.Command(p.path, p.device)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sensor stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sensor stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to spawn sensor: %w", err)
	}
	p.cmd = cmd
	return stdout, stderr, nil
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *execProcess) Terminate() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Signal(syscall.SIGTERM)
}

func (p *execProcess) Kill() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}
