package feedback

import (
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Bell rings the terminal bell regardless of the cue file.
type Bell struct {
	mu sync.Mutex
	W  io.Writer
}

// Play writes BEL.
func (b *Bell) Play(string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.W, "\a")
	return err
}

// CommandPlayer runs an external audio player with the cue file as its last
// argument. Replaying a cue that is still sounding stops the old process
// first, so every play starts from the beginning.
type CommandPlayer struct {
	name string
	args []string

	mu      sync.Mutex
	running map[string]*exec.Cmd
}

// NewCommandPlayer parses a command line such as "aplay -q".
func NewCommandPlayer(command string) (*CommandPlayer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("empty sound command")
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, err
	}
	return &CommandPlayer{
		name:    fields[0],
		args:    fields[1:],
		running: make(map[string]*exec.Cmd),
	}, nil
}

// Play starts the player and waits for it to exit.
func (p *CommandPlayer) Play(path string) error {
	args := append(append([]string{}, p.args...), path)
	cmd := exec.Command(p.name, args...)

	p.mu.Lock()
	if prev, ok := p.running[path]; ok && prev.Process != nil {
		_ = prev.Process.Kill()
	}
	if err := cmd.Start(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.running[path] = cmd
	p.mu.Unlock()

	err := cmd.Wait()

	p.mu.Lock()
	superseded := p.running[path] != cmd
	if !superseded {
		delete(p.running, path)
	}
	p.mu.Unlock()

	if superseded {
		return nil
	}
	return err
}
