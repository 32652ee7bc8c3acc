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

// Package metrics exposes lightweight Prometheus counters for FUSE
// operation activity. Exposition over HTTP is optional and left to the
// CLI (see cmd); the counters themselves are always registered so the
// adapter never needs a nil check.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OpsTotal counts FUSE operations served by the adapter, labeled by
// operation name (lookup, getattr, readdir, readlink).
var OpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "duplicityfs",
		Name:      "fuse_ops_total",
		Help:      "Total number of FUSE operations served, by operation.",
	},
	[]string{"op"},
)

// TreesBuilt counts the number of snapshot trees materialised by the
// tree registry over the mount's lifetime.
var TreesBuilt = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "duplicityfs",
		Name:      "trees_built_total",
		Help:      "Total number of snapshot trees materialised.",
	},
)
