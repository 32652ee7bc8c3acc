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
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbrt/ruplicity-fuse/internal/config"
	"github.com/mbrt/ruplicity-fuse/internal/mountutil"
)

var (
	cfgFile      string
	logSeverity  string
	logFormat    string
	logFilePath  string
	mountOptsRaw string
	metricsAddr  string

	bindErr       error
	configFileErr error
	unmarshalErr  error

	// MountConfig is populated by viper from flags and (optionally) a
	// config file before rootCmd's RunE fires.
	MountConfig = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "duplicityfs [flags] mount_point backup_dir",
	Short: "Mount a duplicity-style backup repository as a read-only directory tree",
	Long: `duplicityfs is a FUSE adapter that presents a duplicity-style
incremental backup repository as a hierarchical, read-only directory
tree: one directory per snapshot, laid out the way the backup looked
at the time it was taken.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}

		mountPoint, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving mount point: %w", err)
		}
		backupDir, err := filepath.Abs(args[1])
		if err != nil {
			return fmt.Errorf("resolving backup directory: %w", err)
		}

		if MountConfig.MountOptions == nil {
			MountConfig.MountOptions = map[string]string{}
		}
		mountutil.ParseOptions(MountConfig.MountOptions, mountOptsRaw)
		return runMount(backupDir, mountPoint, &MountConfig)
	},
}

// Execute runs the root command, exiting the process on failure the
// way a standalone CLI tool is expected to.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config-file", "", "path to a YAML config file")
	flags.StringVar(&logSeverity, "log-severity", config.INFO, "log severity: TRACE, DEBUG, INFO, WARNING, ERROR, or OFF")
	flags.StringVar(&logFormat, "log-format", "text", "log output format: text or json")
	flags.StringVar(&logFilePath, "log-file", "", "path to a log file (rotated); empty logs to stderr")
	flags.StringVarP(&mountOptsRaw, "mount-option", "o", "", "comma-separated FUSE mount options (key=value)")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on; empty disables the endpoint")

	bindErr = viper.BindPFlag("logging.severity", flags.Lookup("log-severity"))
	if bindErr == nil {
		bindErr = viper.BindPFlag("logging.format", flags.Lookup("log-format"))
	}
	if bindErr == nil {
		bindErr = viper.BindPFlag("logging.filepath", flags.Lookup("log-file"))
	}
}

func initConfig() {
	if cfgFile == "" {
		unmarshalErr = viper.Unmarshal(&MountConfig)
		return
	}

	resolved, err := filepath.Abs(cfgFile)
	if err != nil {
		configFileErr = fmt.Errorf("resolving config file path: %w", err)
		return
	}
	viper.SetConfigFile(resolved)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("reading config file: %w", err)
		return
	}
	unmarshalErr = viper.Unmarshal(&MountConfig)
}
