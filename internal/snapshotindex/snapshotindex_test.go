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

package snapshotindex

import (
	"testing"
	"time"

	"github.com/mbrt/ruplicity-fuse/internal/duplicity"
)

func TestS1NameAndBijection(t *testing.T) {
	when := time.Unix(1_000_000_000, 0)
	backup := duplicity.NewMemoryBackup([]duplicity.MemorySnapshotSpec{
		{Time: when, Entries: []duplicity.Entry{&duplicity.Record{EntryType: duplicity.Dir}}},
	})

	idx, err := New(backup)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", idx.Len())
	}

	want := when.Local().Format(NameLayout)
	if got := idx.NameFromSid(0); got != want {
		t.Fatalf("NameFromSid(0) = %q, want %q", got, want)
	}

	sid, ok := idx.SidFromPath(want)
	if !ok || sid != 0 {
		t.Fatalf("SidFromPath(%q) = (%d, %v), want (0, true)", want, sid, ok)
	}

	if _, ok := idx.SidFromPath("bogus"); ok {
		t.Fatal("SidFromPath(bogus) unexpectedly found")
	}

	if InoFromSid(sid) != 2 || SidFromIno(2) != 0 {
		t.Fatalf("ino/sid bijection broken")
	}
	if !idx.IsSnapshot(2) || idx.IsSnapshot(3) || idx.IsSnapshot(1) {
		t.Fatalf("IsSnapshot classification wrong")
	}
	if idx.LastIno() != 3 {
		t.Fatalf("LastIno() = %d, want 3", idx.LastIno())
	}
}

func TestBijectionRoundTrip(t *testing.T) {
	for sid := 0; sid < 100; sid++ {
		ino := InoFromSid(sid)
		if SidFromIno(ino) != sid {
			t.Fatalf("round trip broke at sid=%d", sid)
		}
	}
	for ino := uint64(2); ino < 102; ino++ {
		sid := SidFromIno(ino)
		if InoFromSid(sid) != ino {
			t.Fatalf("round trip broke at ino=%d", ino)
		}
	}
}

func TestEmptyBackup(t *testing.T) {
	backup := duplicity.NewMemoryBackup(nil)
	idx, err := New(backup)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !idx.IsEmpty() {
		t.Fatal("expected empty index")
	}
	if idx.LastIno() != 2 {
		t.Fatalf("LastIno() = %d, want 2", idx.LastIno())
	}
}

func TestDuplicateSnapshotNameRejected(t *testing.T) {
	when := time.Unix(1_000_000_000, 0)
	backup := duplicity.NewMemoryBackup([]duplicity.MemorySnapshotSpec{
		{Time: when, Entries: []duplicity.Entry{&duplicity.Record{EntryType: duplicity.Dir}}},
		{Time: when, Entries: []duplicity.Entry{&duplicity.Record{EntryType: duplicity.Dir}}},
	})
	if _, err := New(backup); err == nil {
		t.Fatal("expected duplicate-name error")
	}
}
