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
	"go.uber.org/atomic"
)

// Searcher is the reader-facing view of a query evaluator lease. The real
// query evaluator is an external collaborator (out of scope for this
// package); Count stands in for the minimal contract a scenario test needs
// to observe NRT visibility without depending on the real engine.
type Searcher interface {
	Count() uint64
}

// Pool leases Searchers from the most recently published generation. It
// generalizes the host engine's whole-generation swap
// (Writer.rootLock/currentSnapshot) into a tiny round-robin leasing pool:
// Publish atomically swaps in a new generation, Acquire hands back the
// next searcher from whichever generation is current.
type Pool struct {
	generation atomic.Value // holds []Searcher
	next       atomic.Uint64
}

// NewPool returns a pool with no generation published yet.
func NewPool() *Pool {
	p := &Pool{}
	p.generation.Store([]Searcher{})
	return p
}

// Publish atomically replaces the current generation of searchers.
func (p *Pool) Publish(searchers []Searcher) {
	p.generation.Store(searchers)
}

// Acquire leases the next searcher from the current generation, cycling
// round-robin across calls. It returns nil if no generation has ever been
// published or the published generation is empty.
func (p *Pool) Acquire() Searcher {
	searchers, _ := p.generation.Load().([]Searcher)
	if len(searchers) == 0 {
		return nil
	}
	idx := p.next.Inc() - 1
	return searchers[idx%uint64(len(searchers))]
}
