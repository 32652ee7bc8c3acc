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

import "github.com/mbrt/ruplicity-fuse/internal/duplicity"

// SnapshotTree is the fully-constructed tree for one snapshot, together
// with the inode of the snapshot directory that contains it. Once built,
// a SnapshotTree is immutable.
type SnapshotTree struct {
	root        *TreeNode
	snapshotIno uint64
}

// New wraps a built root node as a SnapshotTree for snapshotIno.
func New(root *TreeNode, snapshotIno uint64) *SnapshotTree {
	return &SnapshotTree{root: root, snapshotIno: snapshotIno}
}

// SnapshotIno returns the inode of the snapshot directory itself (not
// the tree's internal dummy root inode, which is never exposed to a VFS
// caller).
func (t *SnapshotTree) SnapshotIno() uint64 { return t.snapshotIno }

// Inodes returns the inode interval spanned by the tree's top-level
// children: (first child's inode, last descendant's inode). ok is false
// if the snapshot is empty (root has no children).
func (t *SnapshotTree) Inodes() (first, last uint64, ok bool) {
	if len(t.root.Children) == 0 {
		return 0, 0, false
	}
	first = t.root.Children[0].Ino
	_, last = t.root.inodeRange()
	return first, last, true
}

// FirstAssignedIno returns the internal dummy root's own inode, the
// smallest inode this tree ever hands out.
func (t *SnapshotTree) FirstAssignedIno() uint64 {
	return t.root.Ino
}

// LastAssignedIno returns the largest inode this tree has handed out,
// including the internal root inode if the tree has no children. It is
// used by the registry to advance its monotonic allocator.
func (t *SnapshotTree) LastAssignedIno() uint64 {
	_, last := t.root.inodeRange()
	return last
}

// Children returns the tree's top-level entries (the snapshot's direct
// children), pairing each with its signature record read off stream.
// stream must be a freshly opened stream for this tree's snapshot.
func (t *SnapshotTree) Children(stream duplicity.EntryStream) []PathEntry {
	stream.Next() // discard the root's own record
	return collectChildren(stream, 0, t.root.Children)
}

// ChildEntries returns n's direct children, pairing each with its
// signature record read off stream. stream must be a freshly opened
// stream for the snapshot owning n.
func (n *TreeNode) ChildEntries(stream duplicity.EntryStream) []PathEntry {
	skip(stream, n.Index)
	stream.Next() // consume n's own record
	return collectChildren(stream, n.Index, n.Children)
}

// FindNode performs the recursive, binary-search descent of §4.4: it
// locates the node whose inode equals ino, relying on the invariant that
// every node's children occupy contiguous, sorted, non-overlapping inode
// ranges.
func (t *SnapshotTree) FindNode(ino uint64) (*TreeNode, bool) {
	return findNode(t.root, ino)
}

func findNode(n *TreeNode, ino uint64) (*TreeNode, bool) {
	if n.Ino == ino {
		return n, true
	}
	first, last := n.inodeRange()
	if ino < first || ino > last {
		return nil, false
	}

	lo, hi := 0, len(n.Children)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		cf, cl := n.Children[mid].inodeRange()
		switch {
		case ino < cf:
			hi = mid - 1
		case ino > cl:
			lo = mid + 1
		default:
			return findNode(n.Children[mid], ino)
		}
	}
	return nil, false
}

// ParentIno returns the inode of ino's parent directory within the tree.
// Since the tree's internal dummy root is never itself exposed to a VFS
// caller, a top-level entry's parent is reported as the snapshot
// directory's own inode instead.
func (t *SnapshotTree) ParentIno(ino uint64) (uint64, bool) {
	_, parentIno, ok := findNodeParent(t.root, t.root.Ino, ino)
	if !ok {
		return 0, false
	}
	if parentIno == t.root.Ino {
		return t.snapshotIno, true
	}
	return parentIno, true
}

func findNodeParent(n *TreeNode, parentIno, ino uint64) (*TreeNode, uint64, bool) {
	if n.Ino == ino {
		return n, parentIno, true
	}
	first, last := n.inodeRange()
	if ino < first || ino > last {
		return nil, 0, false
	}

	lo, hi := 0, len(n.Children)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		cf, cl := n.Children[mid].inodeRange()
		switch {
		case ino < cf:
			hi = mid - 1
		case ino > cl:
			lo = mid + 1
		default:
			return findNodeParent(n.Children[mid], n.Ino, ino)
		}
	}
	return nil, 0, false
}
