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
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	mmap "github.com/blevesearch/mmap-go"
	segment "github.com/blugelabs/bluge_segment_api"
)

const pidFilename = "bluge-nrt.pid"

// FileSystemDirectory is the backing, durable Directory a Tiered directory
// wraps: cold reads and every Persist land here, memory-mapped the way
// the host engine's own FileSystemDirectory loads segment files.
type FileSystemDirectory struct {
	path        string
	pidFile     *os.File
	newDirPerm  os.FileMode
	newFilePerm os.FileMode
}

// NewFileSystemDirectory returns a durable directory rooted at path. The
// directory is created on first write if it does not already exist.
func NewFileSystemDirectory(path string) *FileSystemDirectory {
	return &FileSystemDirectory{
		path:        path,
		newDirPerm:  0700,
		newFilePerm: 0600,
	}
}

func (d *FileSystemDirectory) ensureDir() error {
	if _, err := os.Stat(d.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %q: %w", d.path, ErrIOError)
	}
	if err := os.MkdirAll(d.path, d.newDirPerm); err != nil {
		return fmt.Errorf("mkdir %q: %w", d.path, ErrIOError)
	}
	return nil
}

func (d *FileSystemDirectory) fullPath(path FilePath) string {
	return filepath.Join(d.path, string(path))
}

func (d *FileSystemDirectory) OpenRead(path FilePath) (io.ReadCloser, error) {
	f, err := os.Open(d.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open read %q: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("open read %q: %w", path, ErrIOError)
	}
	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap %q: %w", path, ErrIOError)
	}
	return &mmapReadCloser{mm: mm, f: f}, nil
}

// OpenData returns path as a segment.Data: the random-access view a
// segment codec wants over a durable file, backed by the same mmap'd
// region OpenRead hands back as a stream. It is not part of the Directory
// interface - callers that only move bytes never need it - but it is the
// capability the real segment codec (an external collaborator to this
// package) is built to consume.
func (d *FileSystemDirectory) OpenData(path FilePath) (*segment.Data, error) {
	f, err := os.Open(d.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open data %q: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("open data %q: %w", path, ErrIOError)
	}
	data, err := segment.NewDataFile(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open data %q: %w", path, ErrIOError)
	}
	return data, nil
}

func (d *FileSystemDirectory) OpenWrite(path FilePath) (io.WriteCloser, error) {
	if err := d.ensureDir(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(d.fullPath(path), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, d.newFilePerm)
	if err != nil {
		return nil, fmt.Errorf("open write %q: %w", path, ErrIOError)
	}
	return f, nil
}

func (d *FileSystemDirectory) AtomicRead(path FilePath) ([]byte, error) {
	data, err := ioutil.ReadFile(d.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("atomic read %q: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("atomic read %q: %w", path, ErrIOError)
	}
	return data, nil
}

// AtomicWrite writes to a temp file and renames it into place, so readers
// never observe a partially written file.
func (d *FileSystemDirectory) AtomicWrite(path FilePath, data []byte) error {
	if err := d.ensureDir(); err != nil {
		return err
	}
	target := d.fullPath(path)
	tmp := target + ".tmp"
	if err := ioutil.WriteFile(tmp, data, d.newFilePerm); err != nil {
		return fmt.Errorf("atomic write %q: %w", path, ErrIOError)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic write %q: %w", path, ErrIOError)
	}
	return nil
}

func (d *FileSystemDirectory) Delete(path FilePath) error {
	err := os.Remove(d.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete %q: %w", path, ErrNotFound)
		}
		return fmt.Errorf("delete %q: %w", path, ErrIOError)
	}
	return nil
}

func (d *FileSystemDirectory) Exists(path FilePath) (bool, error) {
	_, err := os.Stat(d.fullPath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %q: %w", path, ErrIOError)
}

// Watch is unsupported on the durable store directly: in this design, the
// only watch surface the rest of the engine depends on is the volatile
// tier of a Tiered directory (see tiered_directory.go), which is where
// soft-commit notifications originate.
func (d *FileSystemDirectory) Watch(cb WatchCallback) (WatchHandle, error) {
	return noopWatchHandle{}, nil
}

func (d *FileSystemDirectory) SyncDirectory() error {
	dir, err := os.Open(d.path)
	if err != nil {
		return fmt.Errorf("open directory for sync %q: %w", d.path, ErrIOError)
	}
	defer func() { _ = dir.Close() }()
	if err := dir.Sync(); err != nil {
		return fmt.Errorf("sync directory %q: %w", d.path, ErrIOError)
	}
	return nil
}

func (d *FileSystemDirectory) AcquireLock(name string) (LockGuard, error) {
	if err := d.ensureDir(); err != nil {
		return nil, err
	}
	pidPath := filepath.Join(d.path, name+"."+pidFilename)
	f, err := os.OpenFile(pidPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, d.newFilePerm)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %q: %w", name, ErrIOError)
	}
	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write lock %q: %w", name, ErrIOError)
	}
	return &fileLockGuard{path: pidPath, f: f}, nil
}

type fileLockGuard struct {
	path string
	f    *os.File
}

func (g *fileLockGuard) Close() error {
	_ = g.f.Close()
	return os.Remove(g.path)
}

type noopWatchHandle struct{}

func (noopWatchHandle) Close() error { return nil }

type mmapReadCloser struct {
	mm     mmap.MMap
	f      *os.File
	offset int
}

func (r *mmapReadCloser) Read(p []byte) (int, error) {
	if r.offset >= len(r.mm) {
		return 0, io.EOF
	}
	n := copy(p, r.mm[r.offset:])
	r.offset += n
	return n, nil
}

func (r *mmapReadCloser) Close() error {
	err := r.mm.Unmap()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	return err
}
