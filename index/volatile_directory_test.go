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

func TestVolatileDirectoryReadNotFound(t *testing.T) {
	d := NewVolatileDirectory()
	_, err := d.AtomicRead("missing")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestVolatileDirectoryAtomicWriteThenRead(t *testing.T) {
	d := NewVolatileDirectory()
	require.NoError(t, d.AtomicWrite("a.seg", []byte("hello")))

	data, err := d.AtomicRead("a.seg")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)
}

func TestVolatileDirectoryOpenWriteThenOpenRead(t *testing.T) {
	d := NewVolatileDirectory()
	w, err := d.OpenWrite("b.seg")
	require.NoError(t, err)
	_, err = w.Write([]byte("world"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := d.OpenRead("b.seg")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	data, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, []byte("world"), data)
}

func TestVolatileDirectoryWatchFiresOnAtomicWrite(t *testing.T) {
	d := NewVolatileDirectory()
	fired := 0
	handle, err := d.Watch(func() { fired++ })
	require.NoError(t, err)
	defer func() { _ = handle.Close() }()

	require.NoError(t, d.AtomicWrite("c.seg", []byte("x")))
	require.NoError(t, d.AtomicWrite("d.seg", []byte("y")))
	require.Equal(t, 2, fired)
}

// TestPersistCompleteness covers invariant 6: after Persist returns, every
// path written since the last persist is present with its latest content
// in the inner directory.
func TestPersistCompleteness(t *testing.T) {
	d := NewVolatileDirectory()
	require.NoError(t, d.AtomicWrite("a.seg", []byte("1")))
	require.NoError(t, d.AtomicWrite("b.seg", []byte("2")))
	require.NoError(t, d.AtomicWrite("a.seg", []byte("1-updated")))

	target := NewVolatileDirectory()
	require.NoError(t, d.Persist(target))

	a, err := target.AtomicRead("a.seg")
	require.NoError(t, err)
	require.Equal(t, []byte("1-updated"), a)

	b, err := target.AtomicRead("b.seg")
	require.NoError(t, err)
	require.Equal(t, []byte("2"), b)
}

func TestPersistAbortsOnFirstFailure(t *testing.T) {
	d := NewVolatileDirectory()
	require.NoError(t, d.AtomicWrite("a.seg", []byte("1")))

	err := d.Persist(&failingDirectory{VolatileDirectory: NewVolatileDirectory()})
	require.True(t, errors.Is(err, ErrIOError))
}

type failingDirectory struct {
	*VolatileDirectory
}

func (*failingDirectory) AtomicWrite(FilePath, []byte) error {
	return errors.New("boom")
}
