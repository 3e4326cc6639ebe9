// Copyright 2024 The University of Queensland
// Copyright 2025 Contriboss
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

// Package cli implements the elmgrub command tree.
package cli

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	logLevel string
}

// NewRootCmd builds the elmgrub command with its sub-commands.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "elmgrub",
		Short: "Resolve package dependencies with PubGrub",
		Long: `elmgrub resolves the dependencies of a project against a registry file
and explains why resolution failed when it does.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newSolveCommand(opts))
	rootCmd.AddCommand(newCheckCommand(opts))

	return rootCmd
}

// logger writes structured logs to the command's stderr.
func (o *globalOptions) logger(cmd *cobra.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, errors.Wrapf(err, "invalid --log-level %q", o.logLevel)
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}
