// Copyright 2025 Zintix Labs
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
package main

import (
	"github.com/spf13/cobra"
	"github.com/zintix-labs/bitrot"
	"github.com/zintix-labs/bitrot/server/logger"
)

func newSurveyCmd(g *globals) *cobra.Command {
	var (
		sf settingFlags
		rf reportFlags
	)
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Measure the real bit error rate on zero-filled buffers",
		Long: `Corrupt many zero-filled buffers and compare the measured bit error rate
with the requested p. Each worker uses a sub-seed derived from --seed, so a run
is reproducible for a fixed worker count.`,
		Example: "  bitrot survey --p 1e-4 --buffers 100000 --workers 8",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := sf.resolve(cmd)
			if err != nil {
				return err
			}
			log, err := g.logger(logger.ModeSilence)
			if err != nil {
				return err
			}
			drawn := set.Seed == nil
			sv, err := bitrot.NewSurveyor(set, log)
			if err != nil {
				return err
			}
			if drawn {
				newPrinter().Fprintf(cmd.ErrOrStderr(), "seed: %d\n", sv.Seed())
			}
			rep, err := sv.Run(cmd.Context(), set.Buffers, set.Workers, !g.quiet)
			if err != nil {
				return err
			}
			return rf.emit(g, cmd.OutOrStdout(), rep)
		},
	}
	fs := cmd.Flags()
	sf.bind(fs, true)
	fs.StringVar(&rf.path, "report", "", "write the report to FILE instead of stdout (.zst compresses)")
	fs.StringVarP(&rf.format, "format", "f", "table", "report format: table, json, yaml")
	return cmd
}
