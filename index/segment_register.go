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

// SegmentRegister is an ordered mapping from SegmentId to SegmentEntry,
// with insertion order preserved for deterministic enumeration. No two
// entries ever share a SegmentId.
//
// It is not itself synchronized: callers (the Tiered Segment Manager) hold
// whatever lock protects the register for the duration of a call.
type SegmentRegister struct {
	entries map[SegmentId]SegmentEntry
	order   []SegmentId
}

// NewSegmentRegister returns an empty register.
func NewSegmentRegister() SegmentRegister {
	return SegmentRegister{entries: make(map[SegmentId]SegmentEntry)}
}

// NewSegmentRegisterFromMetas reconstructs a register from on-disk
// metadata, initializing every entry's delete cursor to the provided
// snapshot. Used by FromSegments when a manager is built from a reload.
func NewSegmentRegisterFromMetas(metas []SegmentMeta, cursor DeleteCursor) SegmentRegister {
	reg := NewSegmentRegister()
	for _, meta := range metas {
		reg.AddSegmentEntry(NewSegmentEntry(meta, cursor))
	}
	return reg
}

// AddSegmentEntry inserts or replaces entry. Idempotent on identical ids:
// replacing an id already present keeps its position in insertion order.
func (r *SegmentRegister) AddSegmentEntry(entry SegmentEntry) {
	if r.entries == nil {
		r.entries = make(map[SegmentId]SegmentEntry)
	}
	if _, exists := r.entries[entry.Meta.ID]; !exists {
		r.order = append(r.order, entry.Meta.ID)
	}
	r.entries[entry.Meta.ID] = entry
}

// RemoveSegment removes id if present; a no-op otherwise.
func (r *SegmentRegister) RemoveSegment(id SegmentId) {
	if _, exists := r.entries[id]; !exists {
		return
	}
	delete(r.entries, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Clear empties the register.
func (r *SegmentRegister) Clear() {
	r.entries = make(map[SegmentId]SegmentEntry)
	r.order = nil
}

// ContainsAll reports whether every id in ids is present.
func (r SegmentRegister) ContainsAll(ids []SegmentId) bool {
	for _, id := range ids {
		if _, exists := r.entries[id]; !exists {
			return false
		}
	}
	return true
}

// Get retrieves the entry for id, or false if absent.
func (r SegmentRegister) Get(id SegmentId) (SegmentEntry, bool) {
	entry, exists := r.entries[id]
	return entry, exists
}

// GetMergeableSegments returns the metas of every segment NOT in inMerge.
// Which subset of the result to actually merge is the merge scheduler's
// decision, not this register's.
func (r SegmentRegister) GetMergeableSegments(inMerge map[SegmentId]struct{}) []SegmentMeta {
	var rv []SegmentMeta
	for _, id := range r.order {
		if _, excluded := inMerge[id]; excluded {
			continue
		}
		rv = append(rv, r.entries[id].Meta)
	}
	return rv
}

// SegmentEntries enumerates entries in insertion order.
func (r SegmentRegister) SegmentEntries() []SegmentEntry {
	rv := make([]SegmentEntry, 0, len(r.order))
	for _, id := range r.order {
		rv = append(rv, r.entries[id])
	}
	return rv
}

// SegmentMetas enumerates metadata in insertion order.
func (r SegmentRegister) SegmentMetas() []SegmentMeta {
	rv := make([]SegmentMeta, 0, len(r.order))
	for _, id := range r.order {
		rv = append(rv, r.entries[id].Meta)
	}
	return rv
}

// SegmentIds enumerates ids in insertion order.
func (r SegmentRegister) SegmentIds() []SegmentId {
	rv := make([]SegmentId, len(r.order))
	copy(rv, r.order)
	return rv
}

// Len reports the number of entries currently registered.
func (r SegmentRegister) Len() int {
	return len(r.order)
}
