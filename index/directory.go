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

import "io"

// FilePath names an item stored in a Directory. Leaf-only semantics are
// sufficient; directory structure may be flat.
type FilePath string

// WatchCallback is invoked whenever an atomic write completes against a
// Directory that supports watching.
type WatchCallback func()

// WatchHandle is returned by Watch and released by Close to stop receiving
// notifications.
type WatchHandle interface {
	Close() error
}

// LockGuard is held while a process has exclusive write access to a
// Directory. Release it with Close.
type LockGuard interface {
	Close() error
}

// Directory abstracts over a collection of named byte blobs. It is the
// capability set the core consumes from, and exposes to, the rest of the
// search engine: the inverted-index codec, the document pipeline and the
// query evaluator only ever see segment bytes through this interface.
type Directory interface {
	// OpenRead returns a reader over path, or ErrNotFound if absent.
	OpenRead(path FilePath) (io.ReadCloser, error)

	// OpenWrite returns a writer that creates or truncates path.
	OpenWrite(path FilePath) (io.WriteCloser, error)

	// AtomicRead reads the entire contents of path in one call.
	AtomicRead(path FilePath) ([]byte, error)

	// AtomicWrite replaces the contents of path in one call, observable by
	// readers only once it returns successfully.
	AtomicWrite(path FilePath, data []byte) error

	// Delete removes path. It is not an error to delete a path that does
	// not exist on this tier alone if a fallback tier may still hold it.
	Delete(path FilePath) error

	// Exists reports whether path is currently present.
	Exists(path FilePath) (bool, error)

	// Watch registers cb to be invoked after every successful AtomicWrite.
	Watch(cb WatchCallback) (WatchHandle, error)

	// SyncDirectory flushes directory metadata (not file contents).
	SyncDirectory() error

	// AcquireLock grants this process exclusive write access under name.
	AcquireLock(name string) (LockGuard, error)
}

// TieredDirectory is a Directory that additionally supports draining its
// volatile tier into durable storage.
type TieredDirectory interface {
	Directory

	// Persist writes every file currently held in the volatile tier into
	// the backing directory. It does not clear the volatile tier; a
	// higher-level commit decides when that happens.
	Persist() error
}
