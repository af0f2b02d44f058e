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

import "errors"

// Sentinel errors for the three recoverable error kinds named by the
// design. Lock poisoning (the fourth, fatal, kind) has no Go analogue and
// is not modeled: a poisoned sync.RWMutex cannot occur, so callers never
// need to distinguish it.
var (
	// ErrNotFound means a path or segment id is absent where presence was
	// expected. Directory implementations return it so a tiered directory
	// can decide whether to fall back to its backing store.
	ErrNotFound = errors.New("index: not found")

	// ErrInvalidArgument means a merge was requested against segment ids
	// that are not all resident in a single tier, or an end_merge
	// before-set is no longer present anywhere (for instance after a
	// rollback). Callers should log and drop the merge.
	ErrInvalidArgument = errors.New("index: invalid argument")

	// ErrIOError wraps an underlying storage failure during persist,
	// atomic write, or lock acquisition.
	ErrIOError = errors.New("index: io error")
)
