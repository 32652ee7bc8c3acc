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

// Package snapshotindex maps between a backup's snapshots and the inode
// block the mount root exposes them under.
package snapshotindex

import (
	"fmt"
	"time"

	"github.com/mbrt/ruplicity-fuse/internal/duplicity"
)

// NameLayout is the mount-visible snapshot directory name format: local
// time, dash-separated. An earlier iteration used colon separators,
// which POSIX paths reject.
const NameLayout = "2006-01-02_15-04-05"

// ErrDuplicateSnapshotName is returned by New when two snapshots format
// to the same directory name. Duplicity backups are expected to
// guarantee second-resolution-unique snapshot times; a collision most
// likely indicates a corrupt or hand-assembled backup, and silently
// keeping one of the two would misassign an entire inode block to the
// wrong snapshot, so New fails loudly instead.
type ErrDuplicateSnapshotName struct {
	Name string
}

func (e *ErrDuplicateSnapshotName) Error() string {
	return fmt.Sprintf("snapshotindex: duplicate snapshot name %q", e.Name)
}

// SnapshotIndex is the bijection between a snapshot's sid (its ordinal
// position in the backup), its mount-visible directory name, and the
// inode the root directory assigns to it.
type SnapshotIndex struct {
	byName []string // sid -> name, in enumeration order
	sids   map[string]int
}

// New enumerates backup's snapshots and builds the index. It fails only
// if snapshot enumeration fails or two snapshots format to the same
// name.
func New(backup duplicity.Backup) (*SnapshotIndex, error) {
	snaps, err := backup.Snapshots()
	if err != nil {
		return nil, fmt.Errorf("enumerating snapshots: %w", err)
	}

	idx := &SnapshotIndex{
		byName: make([]string, len(snaps)),
		sids:   make(map[string]int, len(snaps)),
	}
	for i, s := range snaps {
		name := FormatName(s.Time())
		if _, exists := idx.sids[name]; exists {
			return nil, &ErrDuplicateSnapshotName{Name: name}
		}
		idx.byName[i] = name
		idx.sids[name] = i
	}
	return idx, nil
}

// FormatName renders t as the mount-visible snapshot directory name.
func FormatName(t time.Time) string {
	return t.Local().Format(NameLayout)
}

// SidFromPath looks up the sid of the snapshot named name.
func (idx *SnapshotIndex) SidFromPath(name string) (sid int, ok bool) {
	sid, ok = idx.sids[name]
	return sid, ok
}

// NameFromSid returns the mount-visible name for sid.
func (idx *SnapshotIndex) NameFromSid(sid int) string {
	return idx.byName[sid]
}

// SidFromIno returns the sid for a snapshot inode. Precondition: ino >= 2.
func SidFromIno(ino uint64) int {
	return int(ino - 2)
}

// InoFromSid returns the inode assigned to sid.
func InoFromSid(sid int) uint64 {
	return uint64(sid) + 2
}

// LastIno returns the first inode beyond the snapshot block. The tree
// registry starts its allocator here and builds the first materialised
// tree at LastIno()+1 (that tree's internal root), so the tree's first
// entry receives LastIno()+2.
func (idx *SnapshotIndex) LastIno() uint64 {
	return uint64(len(idx.byName)) + 2
}

// IsSnapshot reports whether ino falls within the snapshot inode block.
func (idx *SnapshotIndex) IsSnapshot(ino uint64) bool {
	return ino >= 2 && ino < idx.LastIno()
}

// Len returns the number of snapshots.
func (idx *SnapshotIndex) Len() int { return len(idx.byName) }

// IsEmpty reports whether the backup has no snapshots.
func (idx *SnapshotIndex) IsEmpty() bool { return len(idx.byName) == 0 }
