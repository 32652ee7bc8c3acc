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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// snapshotDirLayout is the on-disk timestamp format used to name a
// snapshot's directory under a backup root. It intentionally differs from
// the mount-visible "%Y-%m-%d_%H-%M-%S" name (local time, dash-separated)
// used by the fsadapter: this one is UTC and carries a "T"/"Z" so it
// sorts lexically and survives round-tripping through filesystems that
// are case- or colon-hostile.
const snapshotDirLayout = "2006-01-02T15-04-05Z"

const signatureFileName = "signature.json"

// dirSnapshot is a Snapshot backed by a directory on local disk holding a
// single signature.json file.
type dirSnapshot struct {
	time time.Time
	path string
}

func (s *dirSnapshot) Time() time.Time { return s.time }

func (s *dirSnapshot) Entries() (EntryStream, error) {
	f, err := os.Open(filepath.Join(s.path, signatureFileName))
	if err != nil {
		return nil, fmt.Errorf("opening signature stream: %w", err)
	}
	defer f.Close()

	var records []*Record
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding signature stream: %w", err)
	}

	entries := make([]Entry, len(records))
	for i, r := range records {
		entries[i] = r
	}
	return NewSliceStream(entries), nil
}

// dirBackup is a Backup rooted at a directory containing one
// subdirectory per snapshot, each named per snapshotDirLayout.
type dirBackup struct {
	root string
}

func (b *dirBackup) Snapshots() ([]Snapshot, error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var snaps []Snapshot
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		t, err := time.Parse(snapshotDirLayout, e.Name())
		if err != nil {
			// Not a snapshot directory; the backup root may carry other
			// bookkeeping files alongside snapshot directories.
			continue
		}
		snaps = append(snaps, &dirSnapshot{
			time: t,
			path: filepath.Join(b.root, e.Name()),
		})
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Time().Before(snaps[j].Time())
	})
	return snaps, nil
}

// OpenDir opens a backup stored as a directory tree on local disk. It
// fails only if the root directory cannot be read.
func OpenDir(root string) (Backup, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}
	return &dirBackup{root: root}, nil
}
