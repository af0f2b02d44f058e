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

import (
	"github.com/blugelabs/nrt/index"
)

// NRTReader reads segment metadata directly from a Tiered Segment
// Manager it holds a non-owning handle to. The manager is exclusively
// owned by the writer; when the writer closes, this handle goes stale and
// the next Reload simply observes whatever state the manager was left in
// (there is no separate liveness signal - see the design notes on cyclic
// ownership).
type NRTReader struct {
	manager      *index.Manager
	openSegments OpenSegments
	numSearchers int
	pool         *Pool
}

// NewNRTReader builds an NRT reader over manager. openSegments is called
// on every Reload to materialize searchers over the union of all three
// tiers; numSearchers controls how many identical searchers populate the
// pool (at least 1).
func NewNRTReader(manager *index.Manager, openSegments OpenSegments, numSearchers int) *NRTReader {
	if numSearchers < 1 {
		numSearchers = 1
	}
	return &NRTReader{
		manager:      manager,
		openSegments: openSegments,
		numSearchers: numSearchers,
		pool:         NewPool(),
	}
}

// Reload snapshots manager.GroupedSegmentEntries and constructs searchers
// over the union of all three tiers - uncommitted, soft-committed and
// committed alike are visible to an NRT reader, which is precisely what
// makes soft commits observable without a hard commit.
func (r *NRTReader) Reload() error {
	committed, softCommitted, uncommitted := r.manager.GroupedSegmentEntries()

	entries := make([]index.SegmentEntry, 0, len(committed)+len(softCommitted)+len(uncommitted))
	entries = append(entries, committed...)
	entries = append(entries, softCommitted...)
	entries = append(entries, uncommitted...)

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
func (r *NRTReader) Searcher() Searcher {
	return r.pool.Acquire()
}

var _ Reader = (*NRTReader)(nil)
