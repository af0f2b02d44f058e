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
	"github.com/RoaringBitmap/roaring"
	"github.com/gofrs/uuid"
)

// SegmentId opaquely and uniquely identifies a segment. It is comparable
// and hashable as-is, so it is used directly as a Go map key.
type SegmentId uuid.UUID

// NewSegmentId returns a fresh random SegmentId.
func NewSegmentId() SegmentId {
	return SegmentId(uuid.Must(uuid.NewV4()))
}

func (id SegmentId) String() string {
	return uuid.UUID(id).String()
}

// SegmentMeta describes a segment on disk. It is immutable after creation;
// Extra carries whatever bookkeeping the surrounding engine needs (codec
// name, segment format version) without this package needing to know the
// engine's segment format.
type SegmentMeta struct {
	ID       SegmentId
	DocCount uint64
	Extra    map[string]string
}

// DeleteCursor is a monotonically advancing position into a stream of
// tombstones applicable to a segment. The cursor itself only counts
// batches; SegmentEntry.ApplyDeletes folds the next batch of deletes into
// the segment's own bitmap and advances the cursor, the same way the host
// engine's introducer folds an obsoletes delta into
// segmentSnapshot.deleted via roaring.Or.
type DeleteCursor struct {
	position uint64
}

// Position reports how many tombstone batches have been folded in so far.
func (c DeleteCursor) Position() uint64 {
	return c.position
}

// Advanced returns a cursor moved past one more applied batch.
func (c DeleteCursor) Advanced() DeleteCursor {
	return DeleteCursor{position: c.position + 1}
}

// SegmentEntry pairs a SegmentMeta with the delete cursor snapshot that was
// current when the entry was created. It is mutable only by replacement:
// callers build a new SegmentEntry and overwrite the old one in a
// SegmentRegister, they never mutate Deleted or Cursor of a live entry in
// place.
type SegmentEntry struct {
	Meta    SegmentMeta
	Deleted *roaring.Bitmap
	Cursor  DeleteCursor
}

// NewSegmentEntry builds an entry with an empty tombstone set at the given
// cursor position.
func NewSegmentEntry(meta SegmentMeta, cursor DeleteCursor) SegmentEntry {
	return SegmentEntry{
		Meta:    meta,
		Deleted: roaring.NewBitmap(),
		Cursor:  cursor,
	}
}

// LiveCount returns the number of non-tombstoned documents in the segment.
func (e SegmentEntry) LiveCount() uint64 {
	if e.Deleted == nil {
		return e.Meta.DocCount
	}
	live := e.Meta.DocCount - e.Deleted.GetCardinality()
	if live > e.Meta.DocCount {
		// defensive against an over-large bitmap; cardinality can never
		// exceed DocCount in a well-formed entry
		return 0
	}
	return live
}

// ApplyDeletes folds a batch of local doc numbers into the entry's
// tombstone set, returning a new entry (entries are replace-only).
func (e SegmentEntry) ApplyDeletes(batch *roaring.Bitmap) SegmentEntry {
	merged := e.Deleted
	if merged == nil {
		merged = roaring.NewBitmap()
	}
	merged = roaring.Or(merged, batch)
	return SegmentEntry{
		Meta:    e.Meta,
		Deleted: merged,
		Cursor:  e.Cursor.Advanced(),
	}
}
