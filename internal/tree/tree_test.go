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

package tree

import (
	"testing"

	"github.com/mbrt/ruplicity-fuse/internal/duplicity"
)

func rec(etype duplicity.EntryType, path ...string) duplicity.Entry {
	if path == nil {
		path = []string{}
	}
	return &duplicity.Record{PathComponents: path, EntryType: etype}
}

// buildS2 constructs the S2 scenario from the spec: records
// [root, "a", "a/b", "a/b/c", "d"] starting the inode allocator at 3.
func buildS2(t *testing.T) *SnapshotTree {
	t.Helper()
	entries := []duplicity.Entry{
		rec(duplicity.Dir),
		rec(duplicity.Dir, "a"),
		rec(duplicity.Dir, "a", "b"),
		rec(duplicity.File, "a", "b", "c"),
		rec(duplicity.File, "d"),
	}
	stream := duplicity.NewSliceStream(entries)
	root := Build(stream, 3)
	return New(root, 1000) // snapshot ino is irrelevant to tree shape
}

func TestBuildS2Shape(t *testing.T) {
	st := buildS2(t)

	first, last, ok := st.Inodes()
	if !ok || first != 4 || last != 7 {
		t.Fatalf("Inodes() = (%d, %d, %v), want (4, 7, true)", first, last, ok)
	}

	a, ok := st.FindNode(4)
	if !ok {
		t.Fatal("FindNode(4) not found")
	}
	if len(a.Children) != 1 || a.Children[0].Ino != 5 {
		t.Fatalf("node a children = %+v, want single child ino 5", a.Children)
	}

	b, ok := st.FindNode(5)
	if !ok || len(b.Children) != 1 || b.Children[0].Ino != 6 {
		t.Fatalf("node b = %+v, %v", b, ok)
	}

	c, ok := st.FindNode(6)
	if !ok || c.Depth != 3 {
		t.Fatalf("FindNode(6) = %+v, %v, want depth 3", c, ok)
	}

	d, ok := st.FindNode(7)
	if !ok || len(d.Children) != 0 {
		t.Fatalf("FindNode(7) = %+v, %v", d, ok)
	}

	if _, ok := st.FindNode(99); ok {
		t.Fatal("FindNode(99) unexpectedly found")
	}
}

func TestBuildS2TopLevelReaddir(t *testing.T) {
	st := buildS2(t)
	entries := []duplicity.Entry{
		rec(duplicity.Dir),
		rec(duplicity.Dir, "a"),
		rec(duplicity.Dir, "a", "b"),
		rec(duplicity.File, "a", "b", "c"),
		rec(duplicity.File, "d"),
	}
	children := st.Children(duplicity.NewSliceStream(entries))
	if len(children) != 2 {
		t.Fatalf("got %d top-level children, want 2", len(children))
	}
	name0, ok0 := children[0].Path()
	name1, ok1 := children[1].Path()
	if !ok0 || !ok1 || name0 != "a" || name1 != "d" {
		t.Fatalf("got names %q(%v), %q(%v)", name0, ok0, name1, ok1)
	}
	if children[0].Ino() != 4 || children[1].Ino() != 7 {
		t.Fatalf("got inos %d, %d, want 4, 7", children[0].Ino(), children[1].Ino())
	}
}

func TestBuildS2LookupCUnderB(t *testing.T) {
	st := buildS2(t)
	entries := []duplicity.Entry{
		rec(duplicity.Dir),
		rec(duplicity.Dir, "a"),
		rec(duplicity.Dir, "a", "b"),
		rec(duplicity.File, "a", "b", "c"),
		rec(duplicity.File, "d"),
	}
	b, ok := st.FindNode(5)
	if !ok {
		t.Fatal("FindNode(5) not found")
	}
	children := b.ChildEntries(duplicity.NewSliceStream(entries))
	if len(children) != 1 {
		t.Fatalf("got %d children under b, want 1", len(children))
	}
	name, ok := children[0].Path()
	if !ok || name != "c" || children[0].Ino() != 6 {
		t.Fatalf("got %q(%v) ino %d, want c ino 6", name, ok, children[0].Ino())
	}
}

func TestEmptySnapshotOnlyRoot(t *testing.T) {
	entries := []duplicity.Entry{rec(duplicity.Dir)}
	root := Build(duplicity.NewSliceStream(entries), 10)
	st := New(root, 2)
	if _, _, ok := st.Inodes(); ok {
		t.Fatal("expected no children for empty snapshot")
	}
	if st.LastAssignedIno() != 10 {
		t.Fatalf("LastAssignedIno() = %d, want 10", st.LastAssignedIno())
	}
}

func TestEmptyStreamSynthesizesRoot(t *testing.T) {
	root := Build(duplicity.NewSliceStream(nil), 5)
	st := New(root, 2)
	if st.LastAssignedIno() != 5 {
		t.Fatalf("LastAssignedIno() = %d, want 5", st.LastAssignedIno())
	}
}

func TestLargeDirChildrenListsEveryEntryOnce(t *testing.T) {
	const n = 1000
	entries := []duplicity.Entry{rec(duplicity.Dir)}
	names := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		name := indexName(i)
		entries = append(entries, rec(duplicity.File, name))
		names[name] = true
	}

	root := Build(duplicity.NewSliceStream(entries), 100)
	st := New(root, 2)

	children := st.Children(duplicity.NewSliceStream(entries))
	if len(children) != n {
		t.Fatalf("got %d children, want %d", len(children), n)
	}
	seen := map[uint64]bool{}
	for _, c := range children {
		name, ok := c.Path()
		if !ok || !names[name] {
			t.Fatalf("unexpected child name %q", name)
		}
		if seen[c.Ino()] {
			t.Fatalf("duplicate inode %d", c.Ino())
		}
		seen[c.Ino()] = true
	}
}

func indexName(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "f0"
	}
	out := ""
	for i > 0 {
		out = string(digits[i%10]) + out
		i /= 10
	}
	return "f" + out
}
