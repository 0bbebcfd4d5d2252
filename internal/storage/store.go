// Package storage owns the JSON-array task file. Every operation, reads
// included, runs on a single worker goroutine fed by a FIFO channel, so
// concurrent read-modify-write sequences never interleave and operation N
// always observes operation N-1's write. The queue lives in this process
// only; sharing the file across processes is unsafe.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"todo-manager/internal/models"
)

// Store is a file-backed task store with serialized access.
type Store struct {
	path string

	ops chan func()
	wg  sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// queueDepth bounds how many callers can be parked waiting for the worker.
const queueDepth = 64

// NewStore creates a store for the given file path and starts its worker.
// The file is not created until the first write.
func NewStore(path string) *Store {
	s := &Store{
		path: path,
		ops:  make(chan func(), queueDepth),
	}

	s.wg.Add(1)
	go s.worker()

	return s
}

// worker drains the operation queue in submission order.
func (s *Store) worker() {
	defer s.wg.Done()
	for op := range s.ops {
		op()
	}
}

// submit enqueues fn and blocks until the worker has executed it.
func (s *Store) submit(fn func()) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}

	done := make(chan struct{})
	s.ops <- func() {
		fn()
		close(done)
	}
	s.mu.RUnlock()

	<-done
	return nil
}

// Close stops accepting operations, waits for queued ones to finish, and
// stops the worker.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ops)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// ReadAll returns every task in the file. A missing or empty file reads as
// an empty list.
func (s *Store) ReadAll() ([]models.Task, error) {
	var (
		tasks []models.Task
		err   error
	)
	if serr := s.submit(func() {
		tasks, err = s.readFile()
	}); serr != nil {
		return nil, serr
	}
	return tasks, err
}

// WriteAll replaces the file contents with the given list.
func (s *Store) WriteAll(tasks []models.Task) error {
	var err error
	if serr := s.submit(func() {
		err = s.writeFile(tasks)
	}); serr != nil {
		return serr
	}
	return err
}

// Add appends a task. The read and write happen inside one queue slot, so
// concurrent Adds never lose each other's records.
func (s *Store) Add(task models.Task) error {
	var err error
	if serr := s.submit(func() {
		var tasks []models.Task
		tasks, err = s.readFile()
		if err != nil {
			return
		}
		err = s.writeFile(append(tasks, task))
	}); serr != nil {
		return serr
	}
	return err
}

// Update replaces the task with the given id. The returned bool reports
// whether a matching record existed; "not found" is not an error at this
// layer.
func (s *Store) Update(id string, task models.Task) (bool, error) {
	var (
		found bool
		err   error
	)
	if serr := s.submit(func() {
		var tasks []models.Task
		tasks, err = s.readFile()
		if err != nil {
			return
		}
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i] = task
				found = true
				break
			}
		}
		if !found {
			return
		}
		err = s.writeFile(tasks)
	}); serr != nil {
		return false, serr
	}
	return found, err
}

// Remove deletes the task with the given id, reporting whether it existed.
func (s *Store) Remove(id string) (bool, error) {
	var (
		found bool
		err   error
	)
	if serr := s.submit(func() {
		var tasks []models.Task
		tasks, err = s.readFile()
		if err != nil {
			return
		}
		kept := tasks[:0]
		for _, t := range tasks {
			if t.ID == id {
				found = true
				continue
			}
			kept = append(kept, t)
		}
		if !found {
			return
		}
		err = s.writeFile(kept)
	}); serr != nil {
		return false, serr
	}
	return found, err
}

// readFile decodes the backing file. Only the worker goroutine calls this.
func (s *Store) readFile() ([]models.Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Task{}, nil
		}
		return nil, &Error{Kind: KindIO, Path: s.path, Err: err}
	}

	if len(data) == 0 {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		// A type error means the document parsed but the top-level
		// value is not an array of tasks; anything else is broken JSON.
		kind := KindMalformedJSON
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			kind = KindWrongShape
		}
		return nil, &Error{Kind: kind, Path: s.path, Err: err}
	}

	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// writeFile serializes the whole list to a temp file in the target
// directory, fsyncs, and renames it over the target so a crash never leaves
// a partially written file. Only the worker goroutine calls this.
func (s *Store) writeFile(tasks []models.Task) error {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return &Error{Kind: KindIO, Path: s.path, Err: fmt.Errorf("encode tasks: %w", err)}
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tasks-*.json")
	if err != nil {
		return &Error{Kind: KindIO, Path: s.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &Error{Kind: KindIO, Path: s.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &Error{Kind: KindIO, Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &Error{Kind: KindIO, Path: s.path, Err: err}
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &Error{Kind: KindIO, Path: s.path, Err: err}
	}
	return nil
}
