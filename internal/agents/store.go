// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agents manages subagent configurations.
package agents

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// =============================================================================
// TOML-BACKED STORE
// =============================================================================

// Store keeps agent definitions as one TOML file per agent under a
// directory (typically ~/.parley/agents). Files edited outside the TUI are
// picked up by a watcher, so an external editor and the in-app editor can
// coexist.
type Store struct {
	dir string
	log *zap.Logger

	mu     sync.RWMutex
	agents map[string]Agent

	watcher  *fsnotify.Watcher
	onChange func()
	done     chan struct{}
}

// NewStore creates a store over dir, creating it if missing, and loads
// every agent file present.
func NewStore(dir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create agents directory: %w", err)
	}

	s := &Store{
		dir:    dir,
		log:    log,
		agents: make(map[string]Agent),
		done:   make(chan struct{}),
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// All returns every agent, sorted by name.
func (s *Store) All() []Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Agent, 0, len(s.agents))
	for _, a := range s.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the agent with the given name.
func (s *Store) Get(name string) (Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[name]
	return a, ok
}

// Save validates and persists an agent, overwriting any previous
// definition with the same name.
func (s *Store) Save(a Agent) error {
	if problems := a.Validate(); problems != nil {
		for field, err := range problems {
			return fmt.Errorf("invalid agent %q: %s: %w", a.Name, field, err)
		}
	}
	a.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	path := s.pathFor(a.Name)
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("write agent file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(a); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode agent %q: %w", a.Name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write agent file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write agent file: %w", err)
	}

	s.mu.Lock()
	s.agents[a.Name] = a
	s.mu.Unlock()

	s.log.Info("agent saved", zap.String("name", a.Name))
	return nil
}

// Delete removes an agent definition and its file.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	_, ok := s.agents[name]
	delete(s.agents, name)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("agent %q not found", name)
	}
	if err := os.Remove(s.pathFor(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove agent file: %w", err)
	}
	s.log.Info("agent deleted", zap.String("name", name))
	return nil
}

// =============================================================================
// HOT RELOAD
// =============================================================================

// Watch starts watching the agents directory and invokes onChange after
// any external modification has been reloaded. Call Close to stop.
func (s *Store) Watch(onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start agents watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return fmt.Errorf("watch agents directory: %w", err)
	}

	s.watcher = w
	s.onChange = onChange
	go s.processEvents()
	return nil
}

// Close stops the watcher, if running.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	return s.watcher.Close()
}

// processEvents debounces watcher events into whole-directory reloads.
// Agent files are tiny; reloading everything is simpler than tracking
// per-file state.
func (s *Store) processEvents() {
	const debounce = 250 * time.Millisecond

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-s.done:
			return

		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(ev.Name, ".toml") {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("agents watcher error", zap.Error(err))

		case <-fire:
			if err := s.reload(); err != nil {
				s.log.Warn("agents reload failed", zap.Error(err))
				continue
			}
			if s.onChange != nil {
				s.onChange()
			}
		}
	}
}

// reload reads every agent file in the directory, replacing the in-memory
// set wholesale. Unparseable files are skipped with a warning so one bad
// edit cannot take out the rest.
func (s *Store) reload() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read agents directory: %w", err)
	}

	agents := make(map[string]Agent)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		var a Agent
		if _, err := toml.DecodeFile(filepath.Join(s.dir, e.Name()), &a); err != nil {
			s.log.Warn("skipping unparseable agent file",
				zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		if a.Name == "" {
			a.Name = strings.TrimSuffix(e.Name(), ".toml")
		}
		agents[a.Name] = a
	}

	s.mu.Lock()
	s.agents = agents
	s.mu.Unlock()
	return nil
}

func (s *Store) pathFor(name string) string {
	return filepath.Join(s.dir, name+".toml")
}
