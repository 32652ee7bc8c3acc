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

package fsadapter

import (
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/mbrt/ruplicity-fuse/internal/snapshotindex"
	"github.com/mbrt/ruplicity-fuse/internal/tree"
)

// readdirRoot serves the mount root: "." and ".." on the first page,
// then one directory entry per snapshot. Offsets are dense cookies: "."
// carries cookie 0, ".." carries cookie 1, and the k-th snapshot
// (1-indexed) carries cookie k+1, which coincides with its own inode.
func (fs *FsAdapter) readdirRoot(op *fuseops.ReadDirOp) error {
	var dirents []fuseutil.Dirent
	startSid := 0 // first sid (0-indexed) to emit

	if op.Offset == 0 {
		dirents = append(dirents,
			fuseutil.Dirent{
				Offset: 0,
				Inode:  fuseops.RootInodeID,
				Name:   ".",
				Type:   fuseutil.DT_Directory,
			},
			fuseutil.Dirent{
				Offset: 1,
				Inode:  fuseops.RootInodeID,
				Name:   "..",
				Type:   fuseutil.DT_Directory,
			},
		)
	} else {
		// Cookie n >= 1 means "resume after the (n-1)-th snapshot was
		// emitted" (n == 1 resumes right after "..", with no snapshots
		// emitted yet).
		startSid = int(op.Offset) - 1
	}

	for sid := startSid; sid < fs.index.Len(); sid++ {
		ino := snapshotindex.InoFromSid(sid)
		dirents = append(dirents, fuseutil.Dirent{
			Offset: fuseops.DirOffset(ino),
			Inode:  fuseops.InodeID(ino),
			Name:   fs.index.NameFromSid(sid),
			Type:   fuseutil.DT_Directory,
		})
	}

	writeDirents(op, dirents)
	return nil
}

// writeDirListing serves a snapshot or entry directory: "." (this
// directory's own inode) and ".." (parentIno) on the first page, then
// one entry per child, in tree order, with cookies starting at 2.
func writeDirListing(op *fuseops.ReadDirOp, selfIno, parentIno uint64, children []tree.PathEntry) {
	var dirents []fuseutil.Dirent
	startIdx := 0

	if op.Offset == 0 {
		dirents = append(dirents,
			fuseutil.Dirent{
				Offset: 0,
				Inode:  fuseops.InodeID(selfIno),
				Name:   ".",
				Type:   fuseutil.DT_Directory,
			},
			fuseutil.Dirent{
				Offset: 1,
				Inode:  fuseops.InodeID(parentIno),
				Name:   "..",
				Type:   fuseutil.DT_Directory,
			},
		)
	} else {
		// Cookie n >= 2 means "just emitted the (n-2)-th child"; resume
		// from the next one.
		startIdx = int(op.Offset) - 1
	}

	for i := startIdx; i >= 0 && i < len(children); i++ {
		c := children[i]
		name, ok := c.Path()
		if !ok {
			continue
		}
		dirents = append(dirents, fuseutil.Dirent{
			Offset: fuseops.DirOffset(i + 2),
			Inode:  fuseops.InodeID(c.Ino()),
			Name:   name,
			Type:   direntType(c.AsSignature().Type()),
		})
	}

	writeDirents(op, dirents)
}

// writeDirents serializes dirents into op.Dst in order, stopping as soon
// as one does not fit. The kernel will re-issue ReadDir with the offset
// of the last dirent actually written to resume from there.
func writeDirents(op *fuseops.ReadDirOp, dirents []fuseutil.Dirent) {
	for _, d := range dirents {
		n := fuseutil.WriteDirent(op.Dst[op.BytesRead:], d)
		if n == 0 {
			break
		}
		op.BytesRead += n
	}
}
