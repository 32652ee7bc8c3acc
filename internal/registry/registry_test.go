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

package registry

import (
	"testing"
	"time"

	"github.com/mbrt/ruplicity-fuse/internal/duplicity"
	"github.com/mbrt/ruplicity-fuse/internal/snapshotindex"
)

func rec(etype duplicity.EntryType, path ...string) duplicity.Entry {
	if path == nil {
		path = []string{}
	}
	return &duplicity.Record{PathComponents: path, EntryType: etype}
}

func smallSnapshotEntries() []duplicity.Entry {
	return []duplicity.Entry{rec(duplicity.Dir), rec(duplicity.File, "a")}
}

func largeSnapshotEntries() []duplicity.Entry {
	return []duplicity.Entry{
		rec(duplicity.Dir),
		rec(duplicity.Dir, "a"),
		rec(duplicity.File, "a", "b"),
		rec(duplicity.File, "c"),
	}
}

func newTwoSnapshotRegistry() (*TreeRegistry, *snapshotindex.SnapshotIndex) {
	backup := duplicity.NewMemoryBackup([]duplicity.MemorySnapshotSpec{
		{Time: time.Unix(1000, 0), Entries: smallSnapshotEntries()},
		{Time: time.Unix(2000, 0), Entries: largeSnapshotEntries()},
	})
	idx, err := snapshotindex.New(backup)
	if err != nil {
		panic(err)
	}
	return New(backup, idx), idx
}

// TestAccessOrderLazyBuild pins the "lazy, access-order-dependent" policy
// decision: accessing sid 1 before sid 0 gives sid 1 the lower inode
// block, not the block its position would imply.
func TestAccessOrderLazyBuild(t *testing.T) {
	reg, idx := newTwoSnapshotRegistry()
	startIno := idx.LastIno() + 1

	t1, _, err := reg.Ensure(1)
	if err != nil {
		t.Fatalf("Ensure(1): %v", err)
	}
	if t1.FirstAssignedIno() != startIno {
		t.Fatalf("first tree built should start at %d, got %d", startIno, t1.FirstAssignedIno())
	}

	t0, _, err := reg.Ensure(0)
	if err != nil {
		t.Fatalf("Ensure(0): %v", err)
	}
	if t0.FirstAssignedIno() <= t1.LastAssignedIno() {
		t.Fatalf("second tree built (sid 0) should start after sid 1's block")
	}
}

func TestEnsureIdempotent(t *testing.T) {
	reg, _ := newTwoSnapshotRegistry()
	t1, _, err := reg.Ensure(0)
	if err != nil {
		t.Fatal(err)
	}
	t2, _, err := reg.Ensure(0)
	if err != nil {
		t.Fatal(err)
	}
	if t1 != t2 {
		t.Fatal("Ensure(0) returned different trees on second call")
	}
}

// TestNoInodeCollisionAcrossTrees is S6: after materialising every tree,
// the multiset of assigned inodes has no duplicates.
func TestNoInodeCollisionAcrossTrees(t *testing.T) {
	reg, idx := newTwoSnapshotRegistry()
	seen := map[uint64]bool{}
	for sid := 0; sid < idx.Len(); sid++ {
		tr, _, err := reg.Ensure(sid)
		if err != nil {
			t.Fatalf("Ensure(%d): %v", sid, err)
		}
		first := tr.FirstAssignedIno()
		last := tr.LastAssignedIno()
		for ino := first; ino <= last; ino++ {
			if seen[ino] {
				t.Fatalf("duplicate inode %d across trees", ino)
			}
			seen[ino] = true
		}
	}
}

func TestFindTreeContaining(t *testing.T) {
	reg, idx := newTwoSnapshotRegistry()
	tr, _, err := reg.Ensure(0)
	if err != nil {
		t.Fatal(err)
	}
	snapIno := snapshotindex.InoFromSid(0)
	_ = idx

	if got, sid, ok := reg.FindTreeContaining(snapIno); !ok || got != tr || sid != 0 {
		t.Fatalf("FindTreeContaining(snapshot ino) = %v, %d, %v", got, sid, ok)
	}

	first, last, ok := tr.Inodes()
	if !ok {
		t.Fatal("expected non-empty tree")
	}
	if got, sid, ok := reg.FindTreeContaining(first); !ok || got != tr || sid != 0 {
		t.Fatalf("FindTreeContaining(first entry ino) = %v, %d, %v", got, sid, ok)
	}
	if _, _, ok := reg.FindTreeContaining(last + 1000); ok {
		t.Fatal("FindTreeContaining matched an inode outside any tree")
	}

	if _, _, ok := reg.FindTreeContaining(snapshotindex.InoFromSid(1)); ok {
		t.Fatal("FindTreeContaining matched an un-materialised snapshot's directory inode")
	}
}
