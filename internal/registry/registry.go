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

// Package registry owns the lazily-built SnapshotTree for each snapshot
// and the single monotonic inode allocator shared across all of them.
package registry

import (
	"fmt"
	"sort"

	"github.com/jacobsa/syncutil"

	"github.com/mbrt/ruplicity-fuse/internal/duplicity"
	"github.com/mbrt/ruplicity-fuse/internal/metrics"
	"github.com/mbrt/ruplicity-fuse/internal/snapshotindex"
	"github.com/mbrt/ruplicity-fuse/internal/tree"
)

// TreeRegistry lazily materialises one SnapshotTree per snapshot. Once
// built, a tree is never rebuilt or discarded for the lifetime of the
// mount, and inode intervals of any two materialised trees never
// overlap, because lastIno only ever grows.
type TreeRegistry struct {
	mu syncutil.InvariantMutex

	backup  duplicity.Backup
	index   *snapshotindex.SnapshotIndex
	trees   []*tree.SnapshotTree // GUARDED_BY(mu); nil until Ensure(sid)
	lastIno uint64               // GUARDED_BY(mu)
}

// New returns a registry for backup's snapshots, as enumerated by index.
// The inode allocator starts just past the snapshot inode block.
func New(backup duplicity.Backup, index *snapshotindex.SnapshotIndex) *TreeRegistry {
	r := &TreeRegistry{
		backup:  backup,
		index:   index,
		trees:   make([]*tree.SnapshotTree, index.Len()),
		lastIno: index.LastIno(),
	}
	r.mu = syncutil.NewInvariantMutex(r.checkInvariants)
	return r
}

func (r *TreeRegistry) checkInvariants() {
	type interval struct{ first, last uint64 }
	var intervals []interval
	for _, t := range r.trees {
		if t == nil {
			continue
		}
		intervals = append(intervals, interval{t.FirstAssignedIno(), t.LastAssignedIno()})
		if t.LastAssignedIno() > r.lastIno {
			panic("registry: lastIno fell behind a materialised tree")
		}
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].first < intervals[j].first })
	for i := 1; i < len(intervals); i++ {
		if intervals[i].first <= intervals[i-1].last {
			panic("registry: materialised tree inode intervals overlap")
		}
	}
}

// Ensure returns the tree for sid, building it from the backup's
// signature stream on first access and advancing the shared inode
// allocator past every inode the new tree assigned. It is idempotent: a
// second call for the same sid returns the already-built tree without
// rebuilding it or reading its signature stream; it still enumerates the
// backup's snapshots to return the matching Snapshot.
func (r *TreeRegistry) Ensure(sid int) (*tree.SnapshotTree, duplicity.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t := r.trees[sid]; t != nil {
		snap, err := r.snapshot(sid)
		return t, snap, err
	}

	snap, err := r.snapshot(sid)
	if err != nil {
		return nil, nil, err
	}

	stream, err := snap.Entries()
	if err != nil {
		return nil, nil, fmt.Errorf("opening signature stream for sid %d: %w", sid, err)
	}

	root := tree.Build(stream, r.lastIno+1)
	t := tree.New(root, snapshotindex.InoFromSid(sid))
	r.trees[sid] = t
	r.lastIno = t.LastAssignedIno()
	metrics.TreesBuilt.Inc()

	return t, snap, nil
}

func (r *TreeRegistry) snapshot(sid int) (duplicity.Snapshot, error) {
	snaps, err := r.backup.Snapshots()
	if err != nil {
		return nil, fmt.Errorf("enumerating snapshots: %w", err)
	}
	if sid < 0 || sid >= len(snaps) {
		return nil, fmt.Errorf("registry: sid %d out of range", sid)
	}
	return snaps[sid], nil
}

// FindTreeContaining performs the linear scan of §4.6: S is expected to
// be small, so a sorted interval map is an available upgrade but not
// required. It only considers trees that have already been materialised
// by a prior Ensure call.
func (r *TreeRegistry) FindTreeContaining(ino uint64) (*tree.SnapshotTree, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sid, t := range r.trees {
		if t == nil {
			continue
		}
		if ino == t.SnapshotIno() {
			return t, sid, true
		}
		if first, last, ok := t.Inodes(); ok && ino >= first && ino <= last {
			return t, sid, true
		}
	}
	return nil, 0, false
}
