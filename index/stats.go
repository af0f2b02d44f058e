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

import "go.uber.org/atomic"

// Stats tracks monotonically increasing counters about a Manager's
// lifetime. Fields prefixed Tot are counters; there are no gauges here
// because, unlike the host engine's on-disk writer, the manager itself
// holds no file handles to report sizes for.
type Stats struct {
	TotAddSegment  atomic.Uint64
	TotSoftCommits atomic.Uint64
	TotCommits     atomic.Uint64
	TotMergesEnded atomic.Uint64
	TotMergeErrors atomic.Uint64
	TotPersists    atomic.Uint64
}

// Snapshot returns a point-in-time copy of every counter.
func (s *Stats) Snapshot() Stats {
	var rv Stats
	rv.TotAddSegment.Store(s.TotAddSegment.Load())
	rv.TotSoftCommits.Store(s.TotSoftCommits.Load())
	rv.TotCommits.Store(s.TotCommits.Load())
	rv.TotMergesEnded.Store(s.TotMergesEnded.Load())
	rv.TotMergeErrors.Store(s.TotMergeErrors.Load())
	rv.TotPersists.Store(s.TotPersists.Load())
	return rv
}
