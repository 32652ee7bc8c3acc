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

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/timeutil"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbrt/ruplicity-fuse/internal/config"
	"github.com/mbrt/ruplicity-fuse/internal/duplicity"
	"github.com/mbrt/ruplicity-fuse/internal/fsadapter"
	"github.com/mbrt/ruplicity-fuse/internal/logger"
	"github.com/mbrt/ruplicity-fuse/internal/mountutil"
)

// runMount opens backupDir as a duplicity backup, mounts the resulting
// read-only filesystem at mountPoint, and blocks until it is unmounted
// (by a caller running fusermount -u, or by our own SIGINT/SIGTERM
// handler).
func runMount(backupDir, mountPoint string, cfg *config.Config) error {
	logger.Init(cfg.Logging.Severity, cfg.Logging.Format)
	if err := logger.InitLogFile(cfg.Logging); err != nil {
		return err
	}

	backup, err := duplicity.OpenDir(backupDir)
	if err != nil {
		return fmt.Errorf("opening backup %s: %w", backupDir, err)
	}

	fs, err := fsadapter.New(backup, timeutil.RealClock())
	if err != nil {
		return fmt.Errorf("building filesystem: %w", err)
	}

	if metricsAddr != "" {
		serveMetrics(metricsAddr)
	}

	mountCfg := mountutil.ApplyReadOnlyMountConfig(cfg.MountOptions, "duplicityfs")
	server := fsadapter.NewServer(fs)

	mfs, err := fuse.Mount(mountPoint, server, mountCfg)
	if err != nil {
		return fmt.Errorf("mounting at %s: %w", mountPoint, err)
	}

	registerSignalHandler(mountPoint)

	logger.Infof("file system mounted at %s", mountPoint)
	if err := mfs.Join(context.Background()); err != nil {
		return fmt.Errorf("waiting for unmount: %w", err)
	}
	return nil
}

// registerSignalHandler lets the user stop the mount with Ctrl-C or a
// regular SIGTERM, unmounting instead of leaving a stale mount point
// behind.
func registerSignalHandler(mountPoint string) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for range signalChan {
			logger.Infof("received interrupt, attempting to unmount %s", mountPoint)
			if err := fuse.Unmount(mountPoint); err != nil {
				logger.Errorf("failed to unmount in response to interrupt: %v", err)
				continue
			}
			logger.Infof("successfully unmounted %s", mountPoint)
			return
		}
	}()
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Errorf("metrics server stopped: %v", err)
		}
	}()
}
