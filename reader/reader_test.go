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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blugelabs/nrt/index"
)

// fakeSearcher stands in for the real query evaluator (out of scope):
// it counts live documents across whatever segment entries were open
// when it was built, which is exactly the contract Scenarios A-D need.
type fakeSearcher struct {
	count uint64
}

func (f fakeSearcher) Count() uint64 { return f.count }

func openFakeSegments(entries []index.SegmentEntry) (Searcher, error) {
	var total uint64
	for _, e := range entries {
		total += e.LiveCount()
	}
	return fakeSearcher{count: total}, nil
}

func segmentEntry(docCount uint64) index.SegmentEntry {
	return index.NewSegmentEntry(index.SegmentMeta{ID: index.NewSegmentId(), DocCount: docCount}, index.DeleteCursor{})
}

// TestScenarioA_NRTVisibilityOfSoftCommit mirrors spec Scenario A: add one
// document, soft commit, and the NRT reader's searcher must count it.
func TestScenarioA_NRTVisibilityOfSoftCommit(t *testing.T) {
	manager := index.NewManager(nil)
	r := NewNRTReader(manager, openFakeSegments, 1)

	manager.AddSegment(segmentEntry(1))
	manager.SoftCommit(nil, []index.SegmentEntry{segmentEntryFromManager(manager)})

	require.NoError(t, r.Reload())
	require.EqualValues(t, 1, r.Searcher().Count())
}

// segmentEntryFromManager pulls the single uncommitted entry a test just
// added, used to hand it to SoftCommit the way a writer would after
// draining its uncommitted list.
func segmentEntryFromManager(m *index.Manager) index.SegmentEntry {
	_, _, uncommitted := m.GroupedSegmentEntries()
	return uncommitted[0]
}

// TestScenarioB_SoftCommitsAreNotDurable mirrors Scenario B: reopening
// from the durable meta file alone (no tiered directory, no manager) must
// not see the soft-committed document.
func TestScenarioB_SoftCommitsAreNotDurable(t *testing.T) {
	readEmptyMeta := func() ([]index.SegmentMeta, error) {
		return nil, nil
	}
	r := NewMetaFileReader(readEmptyMeta, openFakeSegments, 1)

	require.NoError(t, r.Reload())
	require.EqualValues(t, 0, r.Searcher().Count())
}

// TestScenarioC_RepeatedSoftCommitsAccumulate mirrors Scenario C: four
// single-document soft commits must leave four documents visible.
func TestScenarioC_RepeatedSoftCommitsAccumulate(t *testing.T) {
	manager := index.NewManager(nil)
	r := NewNRTReader(manager, openFakeSegments, 1)

	var softCommitted []index.SegmentEntry
	for i := 0; i < 4; i++ {
		manager.AddSegment(segmentEntry(1))
		newEntry := segmentEntryFromManager(manager)
		softCommitted = append(softCommitted, newEntry)
		manager.SoftCommit(nil, softCommitted)
	}

	require.NoError(t, r.Reload())
	require.EqualValues(t, 4, r.Searcher().Count())
}

// TestScenarioD_HardCommitPromotes mirrors Scenario D: after a hard
// commit, the manager's committed tier totals the same document count and
// the other tiers are empty.
func TestScenarioD_HardCommitPromotes(t *testing.T) {
	manager := index.NewManager(nil)

	var entries []index.SegmentEntry
	for i := 0; i < 4; i++ {
		entries = append(entries, segmentEntry(1))
	}
	manager.SoftCommit(nil, entries)

	manager.Commit(entries)

	committed, soft, uncommitted := manager.GroupedSegmentEntries()
	require.Empty(t, soft)
	require.Empty(t, uncommitted)

	var total uint64
	for _, e := range committed {
		total += e.LiveCount()
	}
	require.EqualValues(t, 4, total)
}

func TestPoolAcquireRoundRobinsAndNilWhenEmpty(t *testing.T) {
	p := NewPool()
	require.Nil(t, p.Acquire())

	p.Publish([]Searcher{fakeSearcher{count: 1}, fakeSearcher{count: 2}})
	first := p.Acquire()
	second := p.Acquire()
	third := p.Acquire()
	require.EqualValues(t, 1, first.Count())
	require.EqualValues(t, 2, second.Count())
	require.EqualValues(t, 1, third.Count())
}
