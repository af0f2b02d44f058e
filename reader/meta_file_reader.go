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

package reader

import "github.com/blugelabs/nrt/index"

// MetaSource reads the persisted meta.json-style document enumerating
// committed segment metadata. It is the durable-store counterpart to
// NRTReader's manager handle, and is what a reader opened from cold
// storage (no writer in-process) falls back to.
type MetaSource func() ([]index.SegmentMeta, error)

// MetaFileReader reads segment metadata from the durable store's meta
// file. Unlike NRTReader, it never observes soft-committed segments:
// those live only in the volatile tier of the process that wrote them.
type MetaFileReader struct {
	readMeta     MetaSource
	openSegments OpenSegments
	numSearchers int
	pool         *Pool
}

// NewMetaFileReader builds a meta-file-backed reader.
func NewMetaFileReader(readMeta MetaSource, openSegments OpenSegments, numSearchers int) *MetaFileReader {
	if numSearchers < 1 {
		numSearchers = 1
	}
	return &MetaFileReader{
		readMeta:     readMeta,
		openSegments: openSegments,
		numSearchers: numSearchers,
		pool:         NewPool(),
	}
}

// Reload re-reads the persisted meta file and rebuilds the searcher pool.
func (r *MetaFileReader) Reload() error {
	metas, err := r.readMeta()
	if err != nil {
		return err
	}

	entries := make([]index.SegmentEntry, 0, len(metas))
	for _, meta := range metas {
		entries = append(entries, index.NewSegmentEntry(meta, index.DeleteCursor{}))
	}

	searcher, err := r.openSegments(entries)
	if err != nil {
		return err
	}

	searchers := make([]Searcher, r.numSearchers)
	for i := range searchers {
		searchers[i] = searcher
	}
	r.pool.Publish(searchers)
	return nil
}

// Searcher leases a searcher from the most recently loaded pool.
func (r *MetaFileReader) Searcher() Searcher {
	return r.pool.Acquire()
}

var _ Reader = (*MetaFileReader)(nil)
