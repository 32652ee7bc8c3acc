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
	"strings"

	"github.com/mbrt/ruplicity-fuse/internal/duplicity"
)

// PathEntry pairs a tree node with the signature record reached by
// advancing a fresh stream to that node's index.
type PathEntry struct {
	node *TreeNode
	rec  duplicity.Entry
}

// Ino returns the node's inode.
func (p PathEntry) Ino() uint64 { return p.node.Ino }

// Node returns the underlying tree node, e.g. to recurse further.
func (p PathEntry) Node() *TreeNode { return p.node }

// AsSignature returns the underlying signature record.
func (p PathEntry) AsSignature() duplicity.Entry { return p.rec }

// Path returns the single path component at this node's depth. ok is
// false if that component is not a plain name (empty, ".", "..", or
// containing a path separator) — such records should not occur in a
// well-formed signature stream but are defensively rejected rather than
// surfaced as bogus directory entries.
func (p PathEntry) Path() (name string, ok bool) {
	parts := p.rec.Path()
	if len(parts) == 0 {
		return "", false
	}
	name = parts[len(parts)-1]
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, '/') {
		return "", false
	}
	return name, true
}

// skip discards n records from stream.
func skip(stream duplicity.EntryStream, n uint64) {
	for i := uint64(0); i < n; i++ {
		stream.Next()
	}
}

// collectChildren advances stream (currently positioned right after the
// record at cursorIndex) through each child's record in turn, skipping
// the intervening descendants of earlier children, and pairs each child
// node with its own record.
func collectChildren(stream duplicity.EntryStream, cursorIndex uint64, children []*TreeNode) []PathEntry {
	entries := make([]PathEntry, 0, len(children))
	cursor := cursorIndex
	for _, child := range children {
		skip(stream, child.Index-cursor-1)
		rec, ok := stream.Next()
		cursor = child.Index
		if !ok {
			break
		}
		entries = append(entries, PathEntry{node: child, rec: rec})
	}
	return entries
}
