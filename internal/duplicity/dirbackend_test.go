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

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSnapshotDir(t *testing.T, root string, when time.Time, records []*Record) {
	t.Helper()
	dir := filepath.Join(root, when.UTC().Format(snapshotDirLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, signatureFileName), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpenDirRoundTrip(t *testing.T) {
	root := t.TempDir()
	when := time.Date(2000, 9, 9, 1, 46, 40, 0, time.UTC)
	writeSnapshotDir(t, root, when, []*Record{
		{PathComponents: []string{}, EntryType: Dir},
		{PathComponents: []string{"a"}, EntryType: File},
	})

	backup, err := OpenDir(root)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	snaps, err := backup.Snapshots()
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(snaps))
	}
	if !snaps[0].Time().Equal(when) {
		t.Fatalf("got time %v, want %v", snaps[0].Time(), when)
	}

	stream, err := snaps[0].Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	var got []string
	for {
		e, ok := stream.Next()
		if !ok {
			break
		}
		got = append(got, pathJoin(e.Path()))
	}
	if len(got) != 2 || got[0] != "" || got[1] != "a" {
		t.Fatalf("got %v", got)
	}
}

func pathJoin(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "/"
		}
		out += p
	}
	return out
}

func TestOpenDirNotFound(t *testing.T) {
	if _, err := OpenDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing backup directory")
	}
}
