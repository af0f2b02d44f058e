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

// Package reader implements the reader façade: a tagged variant over a
// meta-file-backed reader and an NRT reader tied directly to a Tiered
// Segment Manager. The variant is chosen at index-open time and never
// changes afterward.
package reader

import "github.com/blugelabs/nrt/index"

// Reader is the façade every variant implements. Reload rebuilds the
// searcher pool; Searcher leases a searcher from it.
type Reader interface {
	// Reload rebuilds the searcher pool from the reader's segment source.
	Reload() error

	// Searcher leases a searcher from the most recently loaded pool.
	Searcher() Searcher
}

// OpenSegments builds one Searcher over all the given segment entries. It
// is supplied by the surrounding engine: the real segment codec and query
// evaluator are external collaborators, never reimplemented here. The
// numSearchers argument of NewNRTReader and NewMetaFileReader controls how
// many copies of that Searcher are published into the pool, the same knob
// tantivy's IndexReaderBuilder.num_searchers exposes.
type OpenSegments func(entries []index.SegmentEntry) (Searcher, error)
