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
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileSystemDirectoryReadNotFound(t *testing.T) {
	dir := NewFileSystemDirectory(t.TempDir())
	_, err := dir.AtomicRead("missing.seg")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestFileSystemDirectoryAtomicWriteThenRead(t *testing.T) {
	dir := NewFileSystemDirectory(t.TempDir())
	require.NoError(t, dir.AtomicWrite("a.seg", []byte("hello")))

	data, err := dir.AtomicRead("a.seg")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)

	ok, err := dir.Exists("a.seg")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFileSystemDirectoryOpenReadMmapsContents(t *testing.T) {
	dir := NewFileSystemDirectory(t.TempDir())
	require.NoError(t, dir.AtomicWrite("b.seg", []byte("world")))

	r, err := dir.OpenRead("b.seg")
	require.NoError(t, err)
	defer r.Close()

	data, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, []byte("world"), data)
}

func TestFileSystemDirectoryOpenDataRandomAccess(t *testing.T) {
	dir := NewFileSystemDirectory(t.TempDir())
	require.NoError(t, dir.AtomicWrite("c.seg", []byte("segmentbytes")))

	data, err := dir.OpenData("c.seg")
	require.NoError(t, err)
	require.Equal(t, len("segmentbytes"), data.Len())

	slice, err := data.Read(7, 12)
	require.NoError(t, err)
	require.Equal(t, []byte("bytes"), slice)
}

func TestFileSystemDirectoryOpenDataNotFound(t *testing.T) {
	dir := NewFileSystemDirectory(t.TempDir())
	_, err := dir.OpenData("missing.seg")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestFileSystemDirectoryAcquireLockExclusive(t *testing.T) {
	dir := NewFileSystemDirectory(t.TempDir())
	guard, err := dir.AcquireLock("writer")
	require.NoError(t, err)

	_, err = dir.AcquireLock("writer")
	require.True(t, errors.Is(err, ErrIOError))

	require.NoError(t, guard.Close())
	guard2, err := dir.AcquireLock("writer")
	require.NoError(t, err)
	require.NoError(t, guard2.Close())
}

func TestFileSystemDirectoryDeleteNotFound(t *testing.T) {
	dir := NewFileSystemDirectory(t.TempDir())
	err := dir.Delete("missing.seg")
	require.True(t, errors.Is(err, ErrNotFound))
}
