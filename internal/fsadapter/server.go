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
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseutil"
)

// NewServer adapts fs to the fuse.Server interface expected by
// fuse.Mount, dispatching each incoming op to the matching FsAdapter
// method.
func NewServer(fs *FsAdapter) fuse.Server {
	return fuseutil.NewFileSystemServer(fs)
}
