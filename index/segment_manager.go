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
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// SegmentsStatus classifies which tier a set of segment ids was found in.
type SegmentsStatus int

const (
	// StatusUncommitted means the segments live in the uncommitted tier.
	StatusUncommitted SegmentsStatus = iota
	// StatusSoftCommitted means the segments live in the soft-committed tier.
	StatusSoftCommitted
	// StatusCommitted means the segments live in the committed tier.
	StatusCommitted
)

func (s SegmentsStatus) String() string {
	switch s {
	case StatusUncommitted:
		return "uncommitted"
	case StatusSoftCommitted:
		return "soft-committed"
	case StatusCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

// tieredRegisters is the triple {uncommitted, soft_committed, committed} of
// SegmentRegisters. The three registers are pairwise disjoint by
// SegmentId at every observable moment: a segment inhabits at most one
// tier.
type tieredRegisters struct {
	uncommitted   SegmentRegister
	softCommitted SegmentRegister
	committed     SegmentRegister
}

// tierOrder fixes the deterministic search order used by every "find the
// tier containing these ids" operation. Because the tiers are pairwise
// disjoint, at most one can match; the order only matters for reporting.
var tierOrder = [3]SegmentsStatus{StatusUncommitted, StatusSoftCommitted, StatusCommitted}

func (t *tieredRegisters) registerFor(status SegmentsStatus) *SegmentRegister {
	switch status {
	case StatusUncommitted:
		return &t.uncommitted
	case StatusSoftCommitted:
		return &t.softCommitted
	default:
		return &t.committed
	}
}

// segmentsStatus finds the unique tier containing every id in ids. It
// returns false if no single tier contains all of them.
func (t *tieredRegisters) segmentsStatus(ids []SegmentId) (SegmentsStatus, bool) {
	for _, status := range tierOrder {
		if t.registerFor(status).ContainsAll(ids) {
			return status, true
		}
	}
	return 0, false
}

// Manager holds the three Segment Registers under a single reader-writer
// lock and serves as the transactional entry point for every segment-state
// transition visible to readers and the merge scheduler. Lock scope is
// always strictly bounded by one public method; no method ever performs
// I/O or invokes a callback while holding the lock.
type Manager struct {
	mu        sync.RWMutex
	registers tieredRegisters

	logger *zap.Logger
	Stats  Stats
}

// NewManager returns a Manager with every tier empty.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		registers: tieredRegisters{
			uncommitted:   NewSegmentRegister(),
			softCommitted: NewSegmentRegister(),
			committed:     NewSegmentRegister(),
		},
		logger: logger,
	}
}

// FromSegments constructs a manager with metas placed in the committed
// tier, reflecting a reloaded on-disk state. The uncommitted and
// soft-committed tiers start empty.
func FromSegments(metas []SegmentMeta, cursor DeleteCursor, logger *zap.Logger) *Manager {
	m := NewManager(logger)
	m.registers.committed = NewSegmentRegisterFromMetas(metas, cursor)
	return m
}

// AddSegment atomically inserts entry into the uncommitted tier.
func (m *Manager) AddSegment(entry SegmentEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registers.uncommitted.AddSegmentEntry(entry)
	m.Stats.TotAddSegment.Inc()
}

// SoftCommit atomically clears all three tiers and rebuilds the
// soft-committed tier as committedEntries followed by
// softCommittedEntries, preserving the caller's ordering. The committed
// tier ends empty: once a soft commit has been taken, readers merge
// visibility through the soft-committed tier alone until the next hard
// commit.
func (m *Manager) SoftCommit(committedEntries, softCommittedEntries []SegmentEntry) {
	next := NewSegmentRegister()
	for _, entry := range committedEntries {
		next.AddSegmentEntry(entry)
	}
	for _, entry := range softCommittedEntries {
		next.AddSegmentEntry(entry)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.registers.uncommitted.Clear()
	m.registers.committed.Clear()
	m.registers.softCommitted = next
	m.Stats.TotSoftCommits.Inc()
}

// Commit atomically clears all three tiers and places entries into the
// committed tier. Callers invoke this only after durable persistence has
// already succeeded.
func (m *Manager) Commit(entries []SegmentEntry) {
	next := NewSegmentRegister()
	for _, entry := range entries {
		next.AddSegmentEntry(entry)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.registers.uncommitted.Clear()
	m.registers.softCommitted.Clear()
	m.registers.committed = next
	m.Stats.TotCommits.Inc()
}

// StartMerge locates the unique tier containing every id, and returns its
// SegmentEntries. It does not mutate state: the merge scheduler tracks
// "in-merge" membership itself. Returns ErrInvalidArgument if no single
// tier contains all of ids.
func (m *Manager) StartMerge(ids []SegmentId) ([]SegmentEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, ok := m.registers.segmentsStatus(ids)
	if !ok {
		m.logger.Warn("merge requested for segments that are not uniformly resident in one tier",
			zap.Int("num_segments", len(ids)))
		return nil, fmt.Errorf("start merge: %w", ErrInvalidArgument)
	}

	register := m.registers.registerFor(status)
	entries := make([]SegmentEntry, 0, len(ids))
	for _, id := range ids {
		entry, _ := register.Get(id)
		entries = append(entries, entry)
	}
	return entries, nil
}

// EndMerge atomically locates the tier containing beforeIds, removes them
// from it, and inserts afterEntry in their place. It returns the tier
// classification the merge took place in. Returns ErrInvalidArgument if
// beforeIds is not uniformly resident in one tier - this may legitimately
// happen after a rollback and is not a bug.
func (m *Manager) EndMerge(beforeIds []SegmentId, afterEntry SegmentEntry) (SegmentsStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, ok := m.registers.segmentsStatus(beforeIds)
	if !ok {
		m.logger.Warn("end merge: segments not found in a single tier, possibly after a rollback",
			zap.Int("num_segments", len(beforeIds)))
		m.Stats.TotMergeErrors.Inc()
		return 0, fmt.Errorf("end merge: %w", ErrInvalidArgument)
	}

	register := m.registers.registerFor(status)
	for _, id := range beforeIds {
		register.RemoveSegment(id)
	}
	register.AddSegmentEntry(afterEntry)
	m.Stats.TotMergesEnded.Inc()
	return status, nil
}

// GetMergeableSegments returns three lists - committed, soft-committed,
// uncommitted - each the tier's mergeable subset under inMerge.
func (m *Manager) GetMergeableSegments(inMerge map[SegmentId]struct{}) (committed, softCommitted, uncommitted []SegmentMeta) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registers.committed.GetMergeableSegments(inMerge),
		m.registers.softCommitted.GetMergeableSegments(inMerge),
		m.registers.uncommitted.GetMergeableSegments(inMerge)
}

// SegmentEntries returns all entries across every tier: uncommitted, then
// soft-committed, then committed.
func (m *Manager) SegmentEntries() []SegmentEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.registers.uncommitted.SegmentEntries()
	entries = append(entries, m.registers.softCommitted.SegmentEntries()...)
	entries = append(entries, m.registers.committed.SegmentEntries()...)
	return entries
}

// GroupedSegmentEntries returns entries grouped by tier: committed,
// soft-committed, uncommitted. The NRT reader snapshots this to build
// searchers over the union of all three tiers.
func (m *Manager) GroupedSegmentEntries() (committed, softCommitted, uncommitted []SegmentEntry) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registers.committed.SegmentEntries(),
		m.registers.softCommitted.SegmentEntries(),
		m.registers.uncommitted.SegmentEntries()
}

// removeEmptySegments deletes committed entries with a zero doc count.
// Soft-committed empties are intentionally left alone - see the asymmetric
// GC open question resolution.
func (m *Manager) removeEmptySegments() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.registers.committed.SegmentEntries() {
		if entry.Meta.DocCount == 0 {
			m.registers.committed.RemoveSegment(entry.Meta.ID)
		}
	}
}

// CommittedSegmentMetas first garbage-collects empty committed segments,
// then returns the concatenation of committed and soft-committed metadata.
// This is the source of truth for meta.json during a hard commit.
func (m *Manager) CommittedSegmentMetas() []SegmentMeta {
	m.removeEmptySegments()

	m.mu.RLock()
	defer m.mu.RUnlock()
	metas := m.registers.committed.SegmentMetas()
	metas = append(metas, m.registers.softCommitted.SegmentMetas()...)
	return metas
}

// RemoveAllSegments is the rollback primitive: it clears every tier.
func (m *Manager) RemoveAllSegments() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registers.uncommitted.Clear()
	m.registers.softCommitted.Clear()
	m.registers.committed.Clear()
}
