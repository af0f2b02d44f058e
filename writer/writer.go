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

// Package writer is the orchestration glue a host search engine's writer
// consumes: it composes a Tiered Directory and a Tiered Segment Manager
// into the single set of writer-facing operations spec'd for the tiered
// commit lifecycle - add_segment, soft_commit, commit, start_merge,
// end_merge, remove_all_segments and get_mergeable_segments - the same
// grouping bluge's own Writer exposes around its rootLock/Snapshot pair.
package writer

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/blugelabs/nrt/index"
)

// metaFilePath names the durable record of committed segment metadata,
// the tiered analogue of tantivy's meta.json.
const metaFilePath index.FilePath = "meta.json"

// SegmentPayload is what the surrounding engine hands the writer after it
// has built a new segment: the encoded files to store plus the metadata
// the manager needs to track it. The segment codec itself is an external
// collaborator; this package only ever moves bytes and bookkeeping.
type SegmentPayload struct {
	Files    map[index.FilePath][]byte
	DocCount uint64
	Extra    map[string]string
}

// Writer composes C2 (the tiered directory) and C4 (the tiered segment
// manager) into the operations a host engine's writer calls directly. A
// single mutex serializes the writer-facing calls themselves; Manager's
// own lock additionally protects concurrent readers from ever observing a
// half-built tier.
type Writer struct {
	config    index.Config
	directory index.TieredDirectory
	manager   *index.Manager
	logger    *zap.Logger

	mu      sync.Mutex
	inMerge map[index.SegmentId]struct{}
}

// Open builds the Writer's durable directory from config.DirectoryFunc,
// wraps it in a fresh Tiered hot tier, and starts with whatever committed
// segments metas already describes - the durable state a reader opened
// from cold storage would also see. This mirrors the host engine's own
// OpenWriter, which likewise builds its directory from
// config.DirectoryFunc() at construction time rather than taking one as
// a parameter.
func Open(config index.Config, metas []index.SegmentMeta) *Writer {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	directoryFunc := config.DirectoryFunc
	if directoryFunc == nil {
		directoryFunc = func() index.Directory { return index.NewVolatileDirectory() }
	}

	return &Writer{
		config:    config,
		directory: index.NewTiered(directoryFunc()),
		manager:   index.FromSegments(metas, index.DeleteCursor{}, logger),
		logger:    logger,
		inMerge:   make(map[index.SegmentId]struct{}),
	}
}

// Manager exposes the underlying Tiered Segment Manager, the handle an
// NRT reader needs; it is a non-owning view, matching the relationship
// bluge's Snapshot holds back to its parent Writer.
func (w *Writer) Manager() *index.Manager {
	return w.manager
}

func (w *Writer) fireEvent(kind index.EventKind, start time.Time) {
	if w.config.EventCallback != nil {
		w.config.EventCallback(index.Event{Kind: kind, Duration: time.Since(start)})
	}
}

// AddSegment writes payload's files into the tiered directory's volatile
// tier and registers the resulting segment in the uncommitted tier. It
// performs no durable I/O: the files are only ever visible through the
// directory's hot tier until a hard commit persists them.
func (w *Writer) AddSegment(payload SegmentPayload) (index.SegmentId, error) {
	start := time.Now()
	defer w.fireEvent(index.EventKindAddSegment, start)

	w.mu.Lock()
	defer w.mu.Unlock()

	id := index.NewSegmentId()
	for path, data := range payload.Files {
		if err := w.directory.AtomicWrite(path, data); err != nil {
			return id, fmt.Errorf("add segment: write %s: %w", path, err)
		}
	}

	meta := index.SegmentMeta{ID: id, DocCount: payload.DocCount, Extra: payload.Extra}
	w.manager.AddSegment(index.NewSegmentEntry(meta, index.DeleteCursor{}))
	w.logger.Debug("added segment", zap.String("segment_id", id.String()), zap.Uint64("doc_count", payload.DocCount))
	return id, nil
}

// SoftCommit makes every currently uncommitted and committed segment
// visible to NRT readers without any durable I/O: it only rebuilds C4's
// in-memory soft-committed tier. This is the operation that lets Scenario
// A's newly added document become visible, and Scenario B's reader opened
// from the durable meta file alone stay blind to it.
func (w *Writer) SoftCommit() error {
	start := time.Now()
	w.fireEvent(index.EventKindSoftCommitStart, start)
	defer w.fireEvent(index.EventKindSoftCommit, start)

	w.mu.Lock()
	defer w.mu.Unlock()

	committed, softCommitted, uncommitted := w.manager.GroupedSegmentEntries()
	next := append(append([]index.SegmentEntry{}, committed...), softCommitted...)
	next = append(next, uncommitted...)
	w.manager.SoftCommit(nil, next)
	w.logger.Debug("soft commit", zap.Int("num_segments", len(next)))
	return nil
}

// Commit writes the updated meta file into the volatile tier, drains the
// volatile tier into durable storage and only then promotes every live
// segment into C4's committed tier. If persistence fails partway, no segment is promoted:
// the manager's tiers are left untouched and the caller sees the error
// from whichever file failed first.
func (w *Writer) Commit() error {
	start := time.Now()
	w.fireEvent(index.EventKindCommitStart, start)
	defer w.fireEvent(index.EventKindCommit, start)

	w.mu.Lock()
	defer w.mu.Unlock()

	committed, softCommitted, uncommitted := w.manager.GroupedSegmentEntries()
	entries := append(append([]index.SegmentEntry{}, committed...), softCommitted...)
	entries = append(entries, uncommitted...)

	metas := make([]index.SegmentMeta, 0, len(entries))
	for _, e := range entries {
		metas = append(metas, e.Meta)
	}
	encoded, err := json.Marshal(metas)
	if err != nil {
		return fmt.Errorf("commit: encode meta: %w", err)
	}
	if err := w.directory.AtomicWrite(metaFilePath, encoded); err != nil {
		return fmt.Errorf("commit: write meta: %w", err)
	}

	persistStart := time.Now()
	err = w.directory.Persist()
	w.fireEvent(index.EventKindPersist, persistStart)
	if err != nil {
		return fmt.Errorf("commit: persist: %w", err)
	}
	w.manager.Stats.TotPersists.Inc()

	w.manager.Commit(entries)
	w.logger.Info("commit", zap.Int("num_segments", len(entries)))
	return nil
}

// StartMerge returns the live entries for ids and marks them as being
// merged, so a subsequent GetMergeableSegments call excludes them from
// every tier's candidate list.
func (w *Writer) StartMerge(ids []index.SegmentId) ([]index.SegmentEntry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries, err := w.manager.StartMerge(ids)
	if err != nil {
		return nil, fmt.Errorf("start merge: %w", err)
	}
	for _, id := range ids {
		w.inMerge[id] = struct{}{}
	}
	return entries, nil
}

// EndMerge replaces beforeIds with the single merged entry described by
// payload, wherever beforeIds currently reside, and clears their
// in-merge marking regardless of outcome.
func (w *Writer) EndMerge(beforeIds []index.SegmentId, payload SegmentPayload) (index.SegmentsStatus, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	defer func() {
		for _, id := range beforeIds {
			delete(w.inMerge, id)
		}
	}()

	id := index.NewSegmentId()
	for path, data := range payload.Files {
		if err := w.directory.AtomicWrite(path, data); err != nil {
			return 0, fmt.Errorf("end merge: write %s: %w", path, err)
		}
	}

	meta := index.SegmentMeta{ID: id, DocCount: payload.DocCount, Extra: payload.Extra}
	afterEntry := index.NewSegmentEntry(meta, index.DeleteCursor{})

	status, err := w.manager.EndMerge(beforeIds, afterEntry)
	if err != nil {
		return 0, fmt.Errorf("end merge: %w", err)
	}
	return status, nil
}

// RemoveAllSegments is the rollback primitive: it clears every tier and
// forgets any in-progress merge tracking.
func (w *Writer) RemoveAllSegments() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.manager.RemoveAllSegments()
	w.inMerge = make(map[index.SegmentId]struct{})
}

// GetMergeableSegments returns the three tiers' mergeable subsets, each
// excluding segments currently marked in-merge by StartMerge.
func (w *Writer) GetMergeableSegments() (committed, softCommitted, uncommitted []index.SegmentMeta) {
	w.mu.Lock()
	inMerge := make(map[index.SegmentId]struct{}, len(w.inMerge))
	for id := range w.inMerge {
		inMerge[id] = struct{}{}
	}
	w.mu.Unlock()

	return w.manager.GetMergeableSegments(inMerge)
}
