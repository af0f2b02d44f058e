//  Copyright (c) 2020 The Bluge Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 		http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package index

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"sync"
)

// volatileFile is an immutable byte buffer; "atomic replace" means the
// VolatileDirectory swaps the map entry, it never mutates bytes in place.
type volatileFile struct {
	data []byte
}

// VolatileDirectory stores named byte blobs wholly in memory. All writes
// against a Tiered Directory land here; reads succeed if the path is
// present, else fail with ErrNotFound. It is process-local and
// synchronized by a single internal lock guarding the map - not a
// Directory in its own right across processes.
type VolatileDirectory struct {
	mu       sync.RWMutex
	files    map[FilePath]*volatileFile
	watchers []WatchCallback
}

// NewVolatileDirectory returns an empty in-memory store.
func NewVolatileDirectory() *VolatileDirectory {
	return &VolatileDirectory{
		files: make(map[FilePath]*volatileFile),
	}
}

func (d *VolatileDirectory) OpenRead(path FilePath) (io.ReadCloser, error) {
	d.mu.RLock()
	file, ok := d.files[path]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("open read %q: %w", path, ErrNotFound)
	}
	return ioutil.NopCloser(bytes.NewReader(file.data)), nil
}

func (d *VolatileDirectory) OpenWrite(path FilePath) (io.WriteCloser, error) {
	return &volatileWriter{dir: d, path: path}, nil
}

func (d *VolatileDirectory) AtomicRead(path FilePath) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	file, ok := d.files[path]
	if !ok {
		return nil, fmt.Errorf("atomic read %q: %w", path, ErrNotFound)
	}
	rv := make([]byte, len(file.data))
	copy(rv, file.data)
	return rv, nil
}

func (d *VolatileDirectory) AtomicWrite(path FilePath, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	d.mu.Lock()
	d.files[path] = &volatileFile{data: buf}
	watchers := make([]WatchCallback, len(d.watchers))
	copy(watchers, d.watchers)
	d.mu.Unlock()

	// Fire callbacks outside the lock: no external collaborator is ever
	// invoked while holding the map lock.
	for _, cb := range watchers {
		cb()
	}
	return nil
}

func (d *VolatileDirectory) Delete(path FilePath) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.files[path]; !ok {
		return fmt.Errorf("delete %q: %w", path, ErrNotFound)
	}
	delete(d.files, path)
	return nil
}

func (d *VolatileDirectory) Exists(path FilePath) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.files[path]
	return ok, nil
}

func (d *VolatileDirectory) Watch(cb WatchCallback) (WatchHandle, error) {
	d.mu.Lock()
	d.watchers = append(d.watchers, cb)
	idx := len(d.watchers) - 1
	d.mu.Unlock()
	return &volatileWatchHandle{dir: d, index: idx}, nil
}

func (d *VolatileDirectory) SyncDirectory() error {
	return nil
}

func (d *VolatileDirectory) AcquireLock(name string) (LockGuard, error) {
	return noopLockGuard{}, nil
}

// Persist enumerates every path currently held and atomically writes each
// buffer into the target directory. The operation is all-or-nothing
// observable from the caller: on the first failure it returns immediately,
// naming the path that failed, leaving the volatile tier untouched.
// Ordering among files is unspecified.
func (d *VolatileDirectory) Persist(into Directory) error {
	d.mu.RLock()
	paths := make([]FilePath, 0, len(d.files))
	data := make(map[FilePath][]byte, len(d.files))
	for path, file := range d.files {
		paths = append(paths, path)
		buf := make([]byte, len(file.data))
		copy(buf, file.data)
		data[path] = buf
	}
	d.mu.RUnlock()

	for _, path := range paths {
		if err := into.AtomicWrite(path, data[path]); err != nil {
			return fmt.Errorf("persist %q: %w", path, ErrIOError)
		}
	}
	return nil
}

type volatileWriter struct {
	dir  *VolatileDirectory
	path FilePath
	buf  bytes.Buffer
}

func (w *volatileWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *volatileWriter) Close() error {
	return w.dir.AtomicWrite(w.path, w.buf.Bytes())
}

type volatileWatchHandle struct {
	dir   *VolatileDirectory
	index int
}

func (h *volatileWatchHandle) Close() error {
	h.dir.mu.Lock()
	defer h.dir.mu.Unlock()
	if h.index >= 0 && h.index < len(h.dir.watchers) {
		h.dir.watchers[h.index] = func() {}
	}
	return nil
}

type noopLockGuard struct{}

func (noopLockGuard) Close() error { return nil }
