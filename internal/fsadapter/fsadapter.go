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

// Package fsadapter implements the fuseutil.FileSystem operation set
// (getattr, readdir, lookup, readlink) on top of the snapshotindex, tree
// and registry packages, dispatching each request by classifying its
// inode as the root, a snapshot directory, or an entry inside some
// snapshot's tree.
package fsadapter

import (
	"fmt"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/jacobsa/timeutil"

	"github.com/mbrt/ruplicity-fuse/internal/duplicity"
	"github.com/mbrt/ruplicity-fuse/internal/logger"
	"github.com/mbrt/ruplicity-fuse/internal/metrics"
	"github.com/mbrt/ruplicity-fuse/internal/pathutil"
	"github.com/mbrt/ruplicity-fuse/internal/registry"
	"github.com/mbrt/ruplicity-fuse/internal/snapshotindex"
	"github.com/mbrt/ruplicity-fuse/internal/tree"
)

// FsAdapter implements fuseutil.FileSystem over a duplicity-style
// backup. Every operation not explicitly implemented here — anything
// that would mutate the mount, plus file content reads — falls through
// NotImplementedFileSystem to ENOSYS, keeping the mount read-only and
// metadata-only.
type FsAdapter struct {
	fuseutil.NotImplementedFileSystem

	clock    timeutil.Clock
	backup   duplicity.Backup
	index    *snapshotindex.SnapshotIndex
	registry *registry.TreeRegistry
}

// New builds an FsAdapter over backup. It fails only if enumerating the
// backup's snapshots fails or two snapshots format to the same name.
func New(backup duplicity.Backup, clock timeutil.Clock) (*FsAdapter, error) {
	index, err := snapshotindex.New(backup)
	if err != nil {
		return nil, fmt.Errorf("fsadapter: %w", err)
	}
	return &FsAdapter{
		clock:    clock,
		backup:   backup,
		index:    index,
		registry: registry.New(backup, index),
	}, nil
}

func (fs *FsAdapter) Init(op *fuseops.InitOp) error {
	return nil
}

func (fs *FsAdapter) LookUpInode(op *fuseops.LookUpInodeOp) error {
	metrics.OpsTotal.WithLabelValues("lookup").Inc()

	switch {
	case op.Parent == fuseops.RootInodeID:
		sid, ok := fs.index.SidFromPath(op.Name)
		if !ok {
			return fuse.ENOENT
		}
		snaps, err := fs.backup.Snapshots()
		if err != nil {
			logger.Errorf("lookup: enumerating snapshots: %v", err)
			return fuse.ENOENT
		}
		now := fs.clock.Now()
		op.Entry.Child = fuseops.InodeID(snapshotindex.InoFromSid(sid))
		op.Entry.Attributes = snapshotAttrs(snaps[sid].Time())
		op.Entry.AttributesExpiration = now.Add(ttl)
		op.Entry.EntryExpiration = now.Add(ttl)
		return nil

	case fs.index.IsSnapshot(uint64(op.Parent)):
		sid := snapshotindex.SidFromIno(uint64(op.Parent))
		tr, snap, err := fs.registry.Ensure(sid)
		if err != nil {
			logger.Errorf("lookup: materialising snapshot %d: %v", sid, err)
			return fuse.ENOENT
		}
		stream, err := snap.Entries()
		if err != nil {
			logger.Errorf("lookup: opening signature stream: %v", err)
			return fuse.ENOENT
		}
		return fs.lookupAmong(op, tr.Children(stream))

	default:
		tr, sid, ok := fs.registry.FindTreeContaining(uint64(op.Parent))
		if !ok {
			return fuse.ENOENT
		}
		node, ok := tr.FindNode(uint64(op.Parent))
		if !ok {
			return fuse.ENOENT
		}
		_, snap, err := fs.registry.Ensure(sid)
		if err != nil {
			logger.Errorf("lookup: re-materialising snapshot %d: %v", sid, err)
			return fuse.ENOENT
		}
		stream, err := snap.Entries()
		if err != nil {
			logger.Errorf("lookup: opening signature stream: %v", err)
			return fuse.ENOENT
		}
		return fs.lookupAmong(op, node.ChildEntries(stream))
	}
}

func (fs *FsAdapter) lookupAmong(op *fuseops.LookUpInodeOp, children []tree.PathEntry) error {
	for _, c := range children {
		name, ok := c.Path()
		if !ok || name != op.Name {
			continue
		}
		now := fs.clock.Now()
		op.Entry.Child = fuseops.InodeID(c.Ino())
		op.Entry.Attributes = entryAttrs(c.AsSignature())
		op.Entry.AttributesExpiration = now.Add(ttl)
		op.Entry.EntryExpiration = now.Add(ttl)
		return nil
	}
	return fuse.ENOENT
}

func (fs *FsAdapter) GetInodeAttributes(op *fuseops.GetInodeAttributesOp) error {
	metrics.OpsTotal.WithLabelValues("getattr").Inc()

	switch {
	case op.Inode == fuseops.RootInodeID:
		op.Attributes = rootAttrs(fs.clock)

	case fs.index.IsSnapshot(uint64(op.Inode)):
		sid := snapshotindex.SidFromIno(uint64(op.Inode))
		snaps, err := fs.backup.Snapshots()
		if err != nil {
			logger.Errorf("getattr: enumerating snapshots: %v", err)
			return err
		}
		if sid < 0 || sid >= len(snaps) {
			return fuse.ENOSYS
		}
		op.Attributes = snapshotAttrs(snaps[sid].Time())

	default:
		tr, sid, ok := fs.registry.FindTreeContaining(uint64(op.Inode))
		if !ok {
			return fuse.ENOSYS
		}
		node, ok := tr.FindNode(uint64(op.Inode))
		if !ok {
			return fuse.ENOENT
		}
		_, snap, err := fs.registry.Ensure(sid)
		if err != nil {
			logger.Errorf("getattr: re-materialising snapshot %d: %v", sid, err)
			return err
		}
		stream, err := snap.Entries()
		if err != nil {
			logger.Errorf("getattr: opening signature stream: %v", err)
			return err
		}
		rec, err := recordAt(stream, node.Index)
		if err != nil {
			logger.Errorf("getattr: reading record at index %d: %v", node.Index, err)
			return err
		}
		op.Attributes = entryAttrs(rec)
	}

	op.AttributesExpiration = fs.clock.Now().Add(ttl)
	return nil
}

func (fs *FsAdapter) OpenDir(op *fuseops.OpenDirOp) error {
	// No per-handle state is kept: every ReadDir reply is recomputed
	// fresh from (inode, offset) via the registry and tree, so a handle
	// ID carries no information.
	op.Handle = 0
	return nil
}

func (fs *FsAdapter) ReleaseDirHandle(op *fuseops.ReleaseDirHandleOp) error {
	return nil
}

func (fs *FsAdapter) ReadDir(op *fuseops.ReadDirOp) error {
	metrics.OpsTotal.WithLabelValues("readdir").Inc()

	switch {
	case op.Inode == fuseops.RootInodeID:
		return fs.readdirRoot(op)

	case fs.index.IsSnapshot(uint64(op.Inode)):
		sid := snapshotindex.SidFromIno(uint64(op.Inode))
		tr, snap, err := fs.registry.Ensure(sid)
		if err != nil {
			logger.Errorf("readdir: materialising snapshot %d: %v", sid, err)
			return fuse.ENOENT
		}
		stream, err := snap.Entries()
		if err != nil {
			logger.Errorf("readdir: opening signature stream: %v", err)
			return fuse.ENOENT
		}
		children := tr.Children(stream)
		writeDirListing(op, uint64(op.Inode), uint64(fuseops.RootInodeID), children)
		return nil

	default:
		tr, sid, ok := fs.registry.FindTreeContaining(uint64(op.Inode))
		if !ok {
			return fuse.ENOENT
		}
		node, ok := tr.FindNode(uint64(op.Inode))
		if !ok {
			return fuse.ENOENT
		}
		_, snap, err := fs.registry.Ensure(sid)
		if err != nil {
			logger.Errorf("readdir: re-materialising snapshot %d: %v", sid, err)
			return fuse.ENOENT
		}
		stream, err := snap.Entries()
		if err != nil {
			logger.Errorf("readdir: opening signature stream: %v", err)
			return fuse.ENOENT
		}
		parentIno, ok := tr.ParentIno(uint64(op.Inode))
		if !ok {
			parentIno = tr.SnapshotIno()
		}
		children := node.ChildEntries(stream)
		writeDirListing(op, uint64(op.Inode), parentIno, children)
		return nil
	}
}

func (fs *FsAdapter) ReadSymlink(op *fuseops.ReadSymlinkOp) error {
	metrics.OpsTotal.WithLabelValues("readlink").Inc()

	tr, sid, ok := fs.registry.FindTreeContaining(uint64(op.Inode))
	if !ok {
		return fuse.ENOSYS
	}
	node, ok := tr.FindNode(uint64(op.Inode))
	if !ok {
		return fuse.ENOENT
	}
	_, snap, err := fs.registry.Ensure(sid)
	if err != nil {
		logger.Errorf("readlink: re-materialising snapshot %d: %v", sid, err)
		return err
	}
	stream, err := snap.Entries()
	if err != nil {
		logger.Errorf("readlink: opening signature stream: %v", err)
		return err
	}
	rec, err := recordAt(stream, node.Index)
	if err != nil {
		logger.Errorf("readlink: reading record at index %d: %v", node.Index, err)
		return err
	}

	target, ok := rec.LinkedPath()
	if !ok {
		return fuse.ENOSYS
	}
	op.Target = string(pathutil.PathBytes(target))
	return nil
}

// recordAt re-opens a fresh stream position at index by discarding the
// first index records, per the design note that tree nodes store only a
// stream index, never a borrowed record.
func recordAt(stream duplicity.EntryStream, index uint64) (duplicity.Entry, error) {
	for i := uint64(0); i < index; i++ {
		if _, ok := stream.Next(); !ok {
			return nil, fmt.Errorf("stream exhausted before index %d", index)
		}
	}
	rec, ok := stream.Next()
	if !ok {
		return nil, fmt.Errorf("stream exhausted at index %d", index)
	}
	return rec, nil
}
