package evaluator

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// Process is an engine binary running on a pseudo-terminal. Engines flush
// their output per line when attached to a terminal; the terminal is put in
// raw mode so commands are not echoed back.
type Process struct {
	*Stream
	cmd *exec.Cmd
	tty *os.File
}

// StartProcess launches the engine at path and completes the UCI handshake
// before ctx ends.
func StartProcess(ctx context.Context, path string, args ...string) (*Process, error) {
	cmd := exec.Command(path, args...)
	tty, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("start engine %s: %w", path, err)
	}
	if _, err := term.MakeRaw(int(tty.Fd())); err != nil {
		tty.Close()
		cmd.Process.Kill()
		cmd.Wait()
		return nil, fmt.Errorf("raw mode for engine %s: %w", path, err)
	}
	p := &Process{Stream: NewStream(tty, tty), cmd: cmd, tty: tty}
	if err := p.Handshake(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("engine %s handshake: %w", path, err)
	}
	return p, nil
}

func (p *Process) Close() error {
	err := p.Stream.Close()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.cmd.Wait()
	return err
}
