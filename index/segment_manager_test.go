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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func ids(entries []SegmentEntry) []SegmentId {
	rv := make([]SegmentId, len(entries))
	for i, e := range entries {
		rv[i] = e.Meta.ID
	}
	return rv
}

// TestTierDisjointness covers invariant 1: at every reachable state the
// three tiers never share a SegmentId.
func TestTierDisjointness(t *testing.T) {
	m := NewManager(nil)
	u1, u2 := newTestEntry(), newTestEntry()
	m.AddSegment(u1)
	m.AddSegment(u2)
	m.SoftCommit(nil, []SegmentEntry{u1})
	m.AddSegment(u2)

	committed, soft, uncommitted := m.GroupedSegmentEntries()
	seen := map[SegmentId]int{}
	for _, group := range [][]SegmentEntry{committed, soft, uncommitted} {
		for _, e := range group {
			seen[e.Meta.ID]++
		}
	}
	for id, count := range seen {
		require.Equal(t, 1, count, "segment %s appeared in more than one tier", id)
	}
}

// TestSoftCommitShape covers invariant 2 and Scenario C's accumulation
// property: soft_committed becomes exactly committed+soft inputs in
// order, and the other two tiers end empty.
func TestSoftCommitShape(t *testing.T) {
	m := NewManager(nil)
	c1 := newTestEntry()
	s1 := newTestEntry()
	m.Commit([]SegmentEntry{c1})
	m.AddSegment(newTestEntry())

	m.SoftCommit([]SegmentEntry{c1}, []SegmentEntry{s1})

	committed, soft, uncommitted := m.GroupedSegmentEntries()
	require.Empty(t, committed)
	require.Empty(t, uncommitted)
	require.Equal(t, []SegmentId{c1.Meta.ID, s1.Meta.ID}, ids(soft))
}

// TestCommitShape covers invariant 3.
func TestCommitShape(t *testing.T) {
	m := NewManager(nil)
	m.AddSegment(newTestEntry())
	m.SoftCommit(nil, []SegmentEntry{newTestEntry()})

	c1, c2 := newTestEntry(), newTestEntry()
	m.Commit([]SegmentEntry{c1, c2})

	committed, soft, uncommitted := m.GroupedSegmentEntries()
	require.Empty(t, soft)
	require.Empty(t, uncommitted)
	require.Equal(t, []SegmentId{c1.Meta.ID, c2.Meta.ID}, ids(committed))
}

// TestMergeTierPreservation covers invariant 4.
func TestMergeTierPreservation(t *testing.T) {
	m := NewManager(nil)
	s1, s2 := newTestEntry(), newTestEntry()
	m.SoftCommit(nil, []SegmentEntry{s1, s2})

	before := []SegmentId{s1.Meta.ID, s2.Meta.ID}
	entries, err := m.StartMerge(before)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	merged := SegmentEntry{Meta: SegmentMeta{ID: NewSegmentId(), DocCount: 2}}
	status, err := m.EndMerge(before, merged)
	require.NoError(t, err)
	require.Equal(t, StatusSoftCommitted, status)

	_, soft, _ := m.GroupedSegmentEntries()
	require.Equal(t, []SegmentId{merged.Meta.ID}, ids(soft))
}

// TestEmptyCommittedGC covers invariant 7: committed_segment_metas GCs
// zero-doc-count committed entries but leaves soft-committed ones alone
// (the asymmetric-GC open question, resolved in SPEC_FULL.md).
func TestEmptyCommittedGC(t *testing.T) {
	m := NewManager(nil)
	nonEmpty := SegmentEntry{Meta: SegmentMeta{ID: NewSegmentId(), DocCount: 3}}
	empty := SegmentEntry{Meta: SegmentMeta{ID: NewSegmentId(), DocCount: 0}}
	m.Commit([]SegmentEntry{nonEmpty, empty})

	metas := m.CommittedSegmentMetas()
	require.Len(t, metas, 1)
	require.Equal(t, nonEmpty.Meta.ID, metas[0].ID)

	committed, _, _ := m.GroupedSegmentEntries()
	require.Len(t, committed, 1)
}

// TestEmptySoftCommittedSurvivesGC asserts the asymmetry explicitly: an
// empty soft-committed segment is not collected by CommittedSegmentMetas.
func TestEmptySoftCommittedSurvivesGC(t *testing.T) {
	m := NewManager(nil)
	emptySoft := SegmentEntry{Meta: SegmentMeta{ID: NewSegmentId(), DocCount: 0}}
	m.SoftCommit(nil, []SegmentEntry{emptySoft})

	metas := m.CommittedSegmentMetas()
	require.Len(t, metas, 1)
	require.Equal(t, emptySoft.Meta.ID, metas[0].ID)
}

// TestStartMergeMixedTierRejected covers Scenario E: a mixed-tier merge is
// rejected and leaves state untouched.
func TestStartMergeMixedTierRejected(t *testing.T) {
	m := NewManager(nil)
	s1 := newTestEntry()
	s2 := newTestEntry()
	m.Commit([]SegmentEntry{s1})
	m.AddSegment(s2)

	_, err := m.StartMerge([]SegmentId{s1.Meta.ID, s2.Meta.ID})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidArgument))

	committed, soft, uncommitted := m.GroupedSegmentEntries()
	require.Equal(t, []SegmentId{s1.Meta.ID}, ids(committed))
	require.Empty(t, soft)
	require.Equal(t, []SegmentId{s2.Meta.ID}, ids(uncommitted))
}

// TestEndMergeAfterRollback covers Scenario F: starting a merge, then
// rolling back before EndMerge completes, must fail cleanly with no panic
// and leave the manager empty.
func TestEndMergeAfterRollback(t *testing.T) {
	m := NewManager(nil)
	s1, s2, s3 := newTestEntry(), newTestEntry(), newTestEntry()
	m.AddSegment(s1)
	m.AddSegment(s2)
	m.AddSegment(s3)

	before := []SegmentId{s1.Meta.ID, s2.Meta.ID, s3.Meta.ID}
	_, err := m.StartMerge(before)
	require.NoError(t, err)

	m.RemoveAllSegments()

	merged := SegmentEntry{Meta: SegmentMeta{ID: NewSegmentId(), DocCount: 3}}
	_, err = m.EndMerge(before, merged)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidArgument))

	require.Empty(t, m.SegmentEntries())
}

func TestFromSegmentsPlacesMetasInCommittedTier(t *testing.T) {
	metas := []SegmentMeta{
		{ID: NewSegmentId(), DocCount: 5},
		{ID: NewSegmentId(), DocCount: 7},
	}
	m := FromSegments(metas, DeleteCursor{}, nil)

	committed, soft, uncommitted := m.GroupedSegmentEntries()
	require.Empty(t, soft)
	require.Empty(t, uncommitted)
	require.Len(t, committed, 2)
}

func TestGetMergeableSegmentsPerTier(t *testing.T) {
	m := NewManager(nil)
	c1 := newTestEntry()
	s1 := newTestEntry()
	u1 := newTestEntry()
	m.Commit([]SegmentEntry{c1})
	m.SoftCommit([]SegmentEntry{c1}, []SegmentEntry{s1})
	m.AddSegment(u1)

	committed, soft, uncommitted := m.GetMergeableSegments(map[SegmentId]struct{}{})
	require.Empty(t, committed)
	require.Len(t, soft, 2)
	require.Len(t, uncommitted, 1)
}
