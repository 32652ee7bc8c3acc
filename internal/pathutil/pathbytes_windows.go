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

//go:build windows

package pathutil

import "unicode/utf8"

// PathBytes returns the UTF-8 encoding of p, or an empty slice if p is not
// valid UTF-8 (Windows paths carry no implicit byte encoding of their own).
func PathBytes(p string) []byte {
	if !utf8.ValidString(p) {
		return []byte{}
	}
	return []byte(p)
}
