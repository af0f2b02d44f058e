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

import "time"

// Event reports a lifecycle occurrence to an optional Config.EventCallback.
type Event struct {
	Kind     EventKind
	Duration time.Duration
}

// EventKind enumerates the occurrences a Manager-backed writer reports.
type EventKind int

// Kinds of events fired during the tiered commit lifecycle.
const (
	EventKindAddSegment EventKind = iota + 1
	EventKindSoftCommitStart
	EventKindSoftCommit
	EventKindCommitStart
	EventKindCommit
	EventKindPersist
)
