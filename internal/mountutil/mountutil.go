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

// Package mountutil parses the "-o key=value,key2=value2" mount option
// strings accepted by --mount-option/-o, the way mount(8) and most FUSE
// front ends do, and applies the ones this filesystem understands to a
// jacobsa/fuse MountConfig.
package mountutil

import (
	"strings"

	"github.com/jacobsa/fuse"
)

// ParseOptions splits a comma-separated "-o" argument into m, merging
// flag-only options (no "=") in as the empty string so callers can
// still detect their presence. Later options win over earlier ones
// with the same key, matching mount(8)'s last-wins behavior.
func ParseOptions(m map[string]string, s string) {
	if s == "" {
		return
	}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		if i := strings.IndexByte(pair, '='); i >= 0 {
			m[pair[:i]] = pair[i+1:]
		} else {
			m[pair] = ""
		}
	}
}

// ApplyReadOnlyMountConfig builds the fuse.MountConfig for a read-only
// mount, folding in any recognized passthrough options from opts.
// Unrecognized keys are ignored: they may be destined for a different
// layer (e.g. a future cache), not an error in this filesystem.
func ApplyReadOnlyMountConfig(opts map[string]string, fsName string) *fuse.MountConfig {
	cfg := &fuse.MountConfig{
		ReadOnly: true,
		FSName:   fsName,
		Options:  map[string]string{},
	}

	if v, ok := opts["allow_other"]; ok && v != "false" {
		cfg.Options["allow_other"] = ""
	}

	return cfg
}
