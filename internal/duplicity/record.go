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

import "time"

// Record is a plain-data implementation of Entry, used directly by the
// in-memory backend and decoded from JSON by the directory backend.
type Record struct {
	PathComponents []string  `json:"path"`
	EntryType      EntryType `json:"type"`
	ModeVal        *uint32   `json:"mode,omitempty"`
	UIDVal         *uint32   `json:"uid,omitempty"`
	GIDVal         *uint32   `json:"gid,omitempty"`
	MTimeVal       *time.Time `json:"mtime,omitempty"`
	SizeHintVal    *uint64   `json:"size_hint,omitempty"`
	LinkedPathVal  *string   `json:"linked_path,omitempty"`
}

func (r *Record) Path() []string { return r.PathComponents }
func (r *Record) Type() EntryType { return r.EntryType }

func (r *Record) Mode() (uint32, bool) {
	if r.ModeVal == nil {
		return 0, false
	}
	return *r.ModeVal, true
}

func (r *Record) UID() (uint32, bool) {
	if r.UIDVal == nil {
		return 0, false
	}
	return *r.UIDVal, true
}

func (r *Record) GID() (uint32, bool) {
	if r.GIDVal == nil {
		return 0, false
	}
	return *r.GIDVal, true
}

func (r *Record) MTime() (time.Time, bool) {
	if r.MTimeVal == nil {
		return time.Time{}, false
	}
	return *r.MTimeVal, true
}

func (r *Record) SizeHint() (uint64, bool) {
	if r.SizeHintVal == nil {
		return 0, false
	}
	return *r.SizeHintVal, true
}

func (r *Record) LinkedPath() (string, bool) {
	if r.LinkedPathVal == nil {
		return "", false
	}
	return *r.LinkedPathVal, true
}
