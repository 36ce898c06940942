// Package jsonstore provides the document store backing the application: a
// single JSON file per store, guarded by a FIFO mutation queue with one
// worker goroutine, persisted with a temp-file-and-rename write so the file
// on disk is always a complete document.
package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/gptdir/core/internal/infrastructure/logger"
)

const (
	// DefaultQueueSize bounds how many mutations may be admitted but not yet
	// applied before callers block.
	DefaultQueueSize = 64

	filePerms = 0o644
	dirPerms  = 0o755
)

// ErrClosed is returned by Mutate after Close has been called.
var ErrClosed = errors.New("jsonstore: store is closed")

// PersistError reports a failed write of the store file. The mutation that
// triggered the write has already been applied in memory, so memory and disk
// diverge until the next successful persist.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("jsonstore: persist %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Stats is a point-in-time snapshot of store activity.
type Stats struct {
	Applied         int64 // mutations applied and persisted
	MutatorErrors   int64 // mutations rejected by the mutator itself
	PersistFailures int64 // writes that failed after the mutator ran
	QueueDepth      int   // mutations admitted but not yet applied
}

// Option configures a store created by Open.
type Option func(*options)

type options struct {
	logger    *logger.Logger
	queueSize int
}

// WithLogger sets the logger used for load and persist diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithQueueSize sets the mutation queue capacity.
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

type task[T any] struct {
	fn   func(*T) error
	done chan error
}

// Store owns one JSON document file. All writes go through Mutate, which
// serializes them in admission order; reads go through View and never block
// behind the queue.
type Store[T any] struct {
	path   string
	logger *logger.Logger

	mu  sync.RWMutex // guards doc and the stats counters
	doc T

	applied         int64
	mutatorErrors   int64
	persistFailures int64

	queue   chan task[T]
	drained chan struct{}

	closeMu sync.RWMutex // admission vs Close
	closed  bool

	// writeFile is swapped out by tests to inject persist failures.
	writeFile func(data []byte) error
}

// Open loads the document at path, creating it from defaults when the file
// is absent or does not parse, and starts the mutation worker. The returned
// store must be closed to flush admitted mutations.
func Open[T any](path string, defaults func() T, opts ...Option) (*Store[T], error) {
	o := &options{
		logger:    logger.NewNop(),
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(o)
	}

	s := &Store[T]{
		path:    path,
		logger:  o.logger.WithComponent("jsonstore"),
		queue:   make(chan task[T], o.queueSize),
		drained: make(chan struct{}),
	}
	s.writeFile = func(data []byte) error {
		if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
			return err
		}
		// atomic.WriteFile leaves temp-file permissions on newly created files
		return os.Chmod(s.path, filePerms)
	}

	if err := s.load(defaults); err != nil {
		return nil, err
	}

	go s.drain()

	return s, nil
}

// load reads the document from disk, falling back to defaults when the file
// is missing or unreadable as JSON. The fallback document is persisted
// immediately so disk reflects memory from the start.
func (s *Store[T]) load(defaults func() T) error {
	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		var doc T
		if jsonErr := json.Unmarshal(data, &doc); jsonErr != nil {
			s.logger.Warnw("Store file does not parse, starting from defaults",
				"path", s.path,
				"error", jsonErr.Error(),
			)
			return s.initialize(defaults)
		}
		s.doc = doc
		s.logger.Debugw("Store file loaded", "path", s.path, "bytes", len(data))
		return nil

	case errors.Is(err, os.ErrNotExist):
		s.logger.Infow("Store file absent, creating with defaults", "path", s.path)
		return s.initialize(defaults)

	default:
		return fmt.Errorf("jsonstore: read %s: %w", s.path, err)
	}
}

func (s *Store[T]) initialize(defaults func() T) error {
	s.doc = defaults()
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, dirPerms); err != nil {
			return fmt.Errorf("jsonstore: create directory %s: %w", dir, err)
		}
	}
	if err := s.persist(); err != nil {
		return fmt.Errorf("jsonstore: write initial document: %w", err)
	}
	return nil
}

// Mutate submits fn to the mutation queue and waits for the outcome. The
// context applies to admission only: once fn is in the queue it runs and its
// result is persisted regardless of later cancellation. When fn returns an
// error the document is left as fn left it without being persisted, so
// mutators must not modify the document on their error paths.
func (s *Store[T]) Mutate(ctx context.Context, fn func(doc *T) error) error {
	t := task[T]{fn: fn, done: make(chan error, 1)}

	s.closeMu.RLock()
	if s.closed {
		s.closeMu.RUnlock()
		return ErrClosed
	}
	select {
	case s.queue <- t:
		s.closeMu.RUnlock()
	case <-ctx.Done():
		s.closeMu.RUnlock()
		return ctx.Err()
	}

	return <-t.done
}

// View calls fn with the current document under a read lock. fn must treat
// the document as read-only and must not retain it, or any of its slices or
// maps, after returning.
func (s *Store[T]) View(fn func(doc *T)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.doc)
}

// Stats returns a snapshot of store activity counters.
func (s *Store[T]) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Applied:         s.applied,
		MutatorErrors:   s.mutatorErrors,
		PersistFailures: s.persistFailures,
		QueueDepth:      len(s.queue),
	}
}

// Path returns the location of the store file.
func (s *Store[T]) Path() string {
	return s.path
}

// Close stops admission, waits for every already-admitted mutation to be
// applied and persisted, and returns. Close is idempotent.
func (s *Store[T]) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		<-s.drained
		return nil
	}
	s.closed = true
	// Admission holds closeMu.RLock across its send, so nothing can be
	// sending on the queue once we hold the write lock.
	close(s.queue)
	s.closeMu.Unlock()

	<-s.drained
	return nil
}

// drain is the single worker. It applies mutations strictly in admission
// order and resolves each caller only after the persist attempt finished.
func (s *Store[T]) drain() {
	defer close(s.drained)
	for t := range s.queue {
		t.done <- s.apply(t.fn)
	}
}

func (s *Store[T]) apply(fn func(doc *T) error) error {
	s.mu.Lock()
	if err := fn(&s.doc); err != nil {
		s.mutatorErrors++
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		s.mu.Lock()
		s.persistFailures++
		s.mu.Unlock()
		s.logger.Errorw("Persist failed, memory is ahead of disk",
			"path", s.path,
			"error", err.Error(),
		)
		return err
	}

	s.mu.Lock()
	s.applied++
	s.mu.Unlock()
	return nil
}

// persist writes the current document to the store file. The document is
// marshaled under a read lock; the file write itself runs unlocked since
// only the worker goroutine writes.
func (s *Store[T]) persist() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(&s.doc, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return &PersistError{Path: s.path, Err: err}
	}

	if err := s.writeFile(data); err != nil {
		return &PersistError{Path: s.path, Err: err}
	}
	return nil
}
