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
	"os"
	"time"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/jacobsa/timeutil"

	"github.com/mbrt/ruplicity-fuse/internal/duplicity"
)

// ttl is the cache-validity duration advertised on getattr/lookup
// replies. The backup is immutable for the lifetime of a mount, so a
// long TTL is safe.
const ttl = 3600 * time.Second

// dirMode is the permission bits reported for the root and every
// snapshot directory: read/execute for everyone, no writes.
const dirMode = os.FileMode(0o555)

func rootAttrs(clock timeutil.Clock) fuseops.InodeAttributes {
	now := clock.Now()
	return fuseops.InodeAttributes{
		Mode:   dirMode | os.ModeDir,
		Uid:    0,
		Gid:    0,
		Atime:  now,
		Mtime:  now,
		Ctime:  now,
		Crtime: now,
	}
}

func snapshotAttrs(t time.Time) fuseops.InodeAttributes {
	return fuseops.InodeAttributes{
		Mode:   dirMode | os.ModeDir,
		Uid:    0,
		Gid:    0,
		Atime:  t,
		Mtime:  t,
		Ctime:  t,
		Crtime: t,
	}
}

// entryKindBits returns the os.FileMode type bits matching the entry's
// type, per the mapping table: files, hard links and unknown records are
// regular files (no bits set); devices and sockets have no
// representation in the backup format.
func entryKindBits(t duplicity.EntryType) os.FileMode {
	switch t {
	case duplicity.Dir:
		return os.ModeDir
	case duplicity.SymLink:
		return os.ModeSymlink
	case duplicity.Fifo:
		return os.ModeNamedPipe
	default:
		return 0
	}
}

// direntType maps an entry's type to the directory-entry type fuseutil
// expects in a readdir reply.
func direntType(t duplicity.EntryType) fuseutil.DirentType {
	switch t {
	case duplicity.Dir:
		return fuseutil.DT_Directory
	case duplicity.SymLink:
		return fuseutil.DT_Link
	case duplicity.Fifo:
		return fuseutil.DT_FIFO
	default:
		return fuseutil.DT_File
	}
}

// entryAttrs builds the attribute reply for a signature record, per §3:
// stored values are used where present, with documented defaults
// otherwise.
func entryAttrs(rec duplicity.Entry) fuseops.InodeAttributes {
	attrs := fuseops.InodeAttributes{
		Mode: entryKindBits(rec.Type()),
	}

	if size, ok := rec.SizeHint(); ok {
		attrs.Size = size
	}

	mode := uint32(0o777)
	if m, ok := rec.Mode(); ok {
		mode = m
	}
	attrs.Mode |= os.FileMode(mode & 0o777)

	attrs.Uid = 100
	if uid, ok := rec.UID(); ok {
		attrs.Uid = uid
	}
	attrs.Gid = 100
	if gid, ok := rec.GID(); ok {
		attrs.Gid = gid
	}

	var mtime time.Time
	if t, ok := rec.MTime(); ok {
		mtime = t
	}
	attrs.Atime, attrs.Mtime, attrs.Ctime, attrs.Crtime = mtime, mtime, mtime, mtime

	return attrs
}
