// Copyright 2026 The duplicityfs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package duplicity

import "time"

// sliceStream is an EntryStream over a fixed, already-materialised slice
// of entries. It is the concrete stream type returned by both the
// in-memory backend and the directory backend, since both load a
// snapshot's records eagerly off disk (or out of a test fixture) and only
// need to expose them through the forward-only, peekable contract.
type sliceStream struct {
	entries []Entry
	pos     int
}

// NewSliceStream wraps a pre-built, depth-first-ordered slice of entries
// as an EntryStream.
func NewSliceStream(entries []Entry) EntryStream {
	return &sliceStream{entries: entries}
}

func (s *sliceStream) Next() (Entry, bool) {
	if s.pos >= len(s.entries) {
		return nil, false
	}
	e := s.entries[s.pos]
	s.pos++
	return e, true
}

func (s *sliceStream) Peek() (Entry, bool) {
	if s.pos >= len(s.entries) {
		return nil, false
	}
	return s.entries[s.pos], true
}

type memorySnapshot struct {
	time    time.Time
	entries []Entry
}

func (s *memorySnapshot) Time() time.Time { return s.time }

func (s *memorySnapshot) Entries() (EntryStream, error) {
	return NewSliceStream(s.entries), nil
}

type memoryBackup struct {
	snapshots []Snapshot
}

func (b *memoryBackup) Snapshots() ([]Snapshot, error) {
	return b.snapshots, nil
}

// MemorySnapshotSpec describes one snapshot to build into a MemoryBackup:
// a capture time and its depth-first signature records (the first of
// which must be the synthetic root, with an empty Path).
type MemorySnapshotSpec struct {
	Time    time.Time
	Entries []Entry
}

// NewMemoryBackup builds a Backup entirely in memory from literal
// snapshot specs. It is the test double used throughout the
// snapshotindex, registry and fsadapter test suites in place of a real
// backup reader; the tree tests feed NewSliceStream directly.
func NewMemoryBackup(specs []MemorySnapshotSpec) Backup {
	snaps := make([]Snapshot, len(specs))
	for i, spec := range specs {
		snaps[i] = &memorySnapshot{time: spec.Time, entries: spec.Entries}
	}
	return &memoryBackup{snapshots: snaps}
}
