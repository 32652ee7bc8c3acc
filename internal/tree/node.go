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

// Package tree reconstructs a snapshot's directory hierarchy from its
// linear, depth-first signature stream and assigns each entry a stable
// inode, so that later VFS requests (arbitrary inode, arbitrary order)
// can be served by O(log N) lookups instead of re-scanning the stream.
package tree

import "github.com/mbrt/ruplicity-fuse/internal/duplicity"

// TreeNode is one node of a SnapshotTree: the dummy root, or an entry
// reconstructed from the signature stream. Children are stored in stream
// order, which by construction keeps their inode ranges contiguous,
// non-overlapping and strictly increasing.
type TreeNode struct {
	// Index is the ordinal position of this node's record within the
	// snapshot's signature stream.
	Index uint64
	// Ino is the inode assigned to this node.
	Ino uint64
	// Depth is the node's depth in the tree; the root is 0, and depth
	// equals the number of path components terminating at this node.
	Depth int

	Children []*TreeNode
}

// inodeRange returns the contiguous inode interval spanned by n's own
// subtree: n.Ino through the last inode of its last child.
func (n *TreeNode) inodeRange() (first, last uint64) {
	first, last = n.Ino, n.Ino
	if len(n.Children) > 0 {
		_, clast := n.Children[len(n.Children)-1].inodeRange()
		if clast > last {
			last = clast
		}
	}
	return first, last
}

// build consumes one record from stream (the record terminating at this
// node) and recursively builds its children. depth is this node's own
// depth. It returns ok == false if the stream had no record to consume.
func build(depth int, index, ino uint64, stream duplicity.EntryStream) (*TreeNode, bool) {
	if _, ok := stream.Next(); !ok {
		return nil, false
	}
	node := &TreeNode{Index: index, Ino: ino, Depth: depth}
	node.Children = buildChildren(depth, index+1, ino+1, stream)
	return node, true
}

// buildChildren repeatedly peeks the stream: a record belongs to this
// subtree only if its path has a component at position depth (depth
// equal to the parent's own depth). As soon as the path is too short, the
// stream has advanced past this subtree into an ancestor's remaining
// siblings, and iteration stops without consuming that record.
func buildChildren(depth int, index, ino uint64, stream duplicity.EntryStream) []*TreeNode {
	var children []*TreeNode
	cursorIndex, cursorIno := index, ino
	for {
		peek, ok := stream.Peek()
		if !ok || len(peek.Path()) <= depth {
			break
		}
		child, ok := build(depth+1, cursorIndex, cursorIno, stream)
		if !ok {
			break
		}
		_, last := child.inodeRange()
		span := last - cursorIno + 1
		cursorIno += span
		cursorIndex += span
		children = append(children, child)
	}
	return children
}

// Build constructs a tree's dummy root (and, transitively, every
// descendant) from a fresh snapshot signature stream, starting inode
// assignment at firstIno. If the stream yields no record at all (not
// even a root), a childless dummy root is synthesized instead.
func Build(stream duplicity.EntryStream, firstIno uint64) *TreeNode {
	root, ok := build(0, 0, firstIno, stream)
	if !ok {
		return &TreeNode{Index: 0, Ino: firstIno}
	}
	return root
}
