// Package feedback plays short audio cues on interaction events.
// Playback is best-effort: nothing here returns an error to the caller or
// blocks the UI loop.
package feedback

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"notebook/internal/config"
	"notebook/internal/logging"

	"go.uber.org/zap"
)

// Cue names an interaction event.
type Cue string

const (
	CueClick   Cue = "click"   // keystroke, credential confirm
	CueSend    Cue = "send"    // chat submit
	CueReceive Cue = "receive" // successful upload or answer
)

var cueFiles = map[Cue]string{
	CueClick:   "click.wav",
	CueSend:    "send.wav",
	CueReceive: "receive.wav",
}

// Emitter is what the UI depends on.
type Emitter interface {
	// Init loads the cue set. Calls after the first are no-ops.
	Init()
	// Play starts a cue if it is loaded and returns immediately.
	Play(Cue)
}

// Player renders one cue file. Implementations may block until playback ends.
type Player interface {
	Play(path string) error
}

// Nop is an Emitter that does nothing.
type Nop struct{}

func (Nop) Init()    {}
func (Nop) Play(Cue) {}

// Registry is the standard Emitter: a fixed cue table resolved once against a
// sound directory and played through a Player.
type Registry struct {
	dir    string
	player Player
	log    *zap.Logger

	once   sync.Once
	mu     sync.RWMutex
	loaded map[Cue]string
	wg     sync.WaitGroup
}

// NewRegistry creates a registry. An empty dir registers every cue without a
// file, for players such as Bell that ignore the path.
func NewRegistry(dir string, player Player) *Registry {
	return &Registry{
		dir:    dir,
		player: player,
		log:    logging.Get(logging.CategoryFeedback),
		loaded: make(map[Cue]string),
	}
}

// New builds the Emitter selected by the sound config.
func New(cfg config.SoundConfig) Emitter {
	switch cfg.Mode {
	case config.SoundBell:
		return NewRegistry("", &Bell{W: os.Stderr})
	case config.SoundCommand:
		p, err := NewCommandPlayer(cfg.Command)
		if err != nil {
			logging.Get(logging.CategoryFeedback).Warn("sound command unusable", zap.Error(err))
			return Nop{}
		}
		return NewRegistry(cfg.Dir, p)
	default:
		return Nop{}
	}
}

// Init registers every cue whose file exists.
func (r *Registry) Init() {
	r.once.Do(r.load)
}

func (r *Registry) load() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for cue, name := range cueFiles {
		if r.dir == "" {
			r.loaded[cue] = ""
			continue
		}
		path := filepath.Join(r.dir, name)
		if _, err := os.Stat(path); err != nil {
			r.log.Debug("cue not available", zap.String("cue", string(cue)), zap.Error(err))
			continue
		}
		r.loaded[cue] = path
	}
	r.log.Debug("cues initialized", zap.Int("count", len(r.loaded)))
}

// Loaded returns the registered cues in name order.
func (r *Registry) Loaded() []Cue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Cue, 0, len(r.loaded))
	for c := range r.loaded {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Play starts the cue in the background. Unloaded cues are ignored.
func (r *Registry) Play(cue Cue) {
	r.mu.RLock()
	path, ok := r.loaded[cue]
	r.mu.RUnlock()
	if !ok {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Warn("cue playback panicked", zap.String("cue", string(cue)), zap.String("panic", fmt.Sprint(rec)))
			}
		}()
		if err := r.player.Play(path); err != nil {
			r.log.Warn("cue playback failed", zap.String("cue", string(cue)), zap.Error(err))
		}
	}()
}

// Wait blocks until every started cue has finished.
func (r *Registry) Wait() {
	r.wg.Wait()
}
