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
	"errors"
	"io"
)

// Tiered wraps one inner (durable) Directory and owns one VolatileDirectory
// (hot tier). Read-family operations attempt volatile first and fall back
// to the inner directory only on ErrNotFound - any other error surfaces
// immediately. Write-family operations target the volatile tier
// exclusively; the inner directory is only ever touched by an explicit
// Persist.
//
// Because Tiered itself satisfies Directory, tiered directories can be
// stacked: the inner directory of one Tiered may be another Tiered.
type Tiered struct {
	inner    Directory
	volatile *VolatileDirectory
}

// NewTiered wraps inner with a fresh volatile hot tier.
func NewTiered(inner Directory) *Tiered {
	return &Tiered{
		inner:    inner,
		volatile: NewVolatileDirectory(),
	}
}

func (t *Tiered) OpenRead(path FilePath) (io.ReadCloser, error) {
	r, err := t.volatile.OpenRead(path)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return t.inner.OpenRead(path)
}

func (t *Tiered) OpenWrite(path FilePath) (io.WriteCloser, error) {
	return t.volatile.OpenWrite(path)
}

func (t *Tiered) AtomicRead(path FilePath) ([]byte, error) {
	data, err := t.volatile.AtomicRead(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return t.inner.AtomicRead(path)
}

func (t *Tiered) AtomicWrite(path FilePath, data []byte) error {
	return t.volatile.AtomicWrite(path, data)
}

// Delete attempts the volatile tier first; on absence it attempts the
// inner directory. This lets deletion of a cold file reach disk, while
// deletion of a hot file never touches disk.
func (t *Tiered) Delete(path FilePath) error {
	err := t.volatile.Delete(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return t.inner.Delete(path)
}

func (t *Tiered) Exists(path FilePath) (bool, error) {
	ok, err := t.volatile.Exists(path)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return t.inner.Exists(path)
}

// Watch forwards registration to the volatile tier: callbacks observe
// in-memory writes, not inner-store changes. This is the mechanism by
// which NRT readers learn of new soft-committed segments.
func (t *Tiered) Watch(cb WatchCallback) (WatchHandle, error) {
	return t.volatile.Watch(cb)
}

// SyncDirectory is a no-op: durability is deferred to Persist.
func (t *Tiered) SyncDirectory() error {
	return nil
}

func (t *Tiered) AcquireLock(name string) (LockGuard, error) {
	return t.inner.AcquireLock(name)
}

// Persist drains the volatile tier into the inner directory. It returns
// success only when every volatile file has been atomically written to
// the inner store. It does not drop the volatile copies; a higher-level
// hard commit decides when those are cleared.
func (t *Tiered) Persist() error {
	return t.volatile.Persist(t.inner)
}

var _ TieredDirectory = (*Tiered)(nil)
