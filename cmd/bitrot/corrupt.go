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
	"github.com/zintix-labs/bitrot/sdk/perf"
	"github.com/zintix-labs/bitrot/server/logger"
)

func newCorruptCmd(g *globals) *cobra.Command {
	var (
		sf        settingFlags
		rf        reportFlags
		offsets   bool
		pprofMode string
	)
	cmd := &cobra.Command{
		Use:   "corrupt IN OUT",
		Short: "Corrupt IN with probability p per bit and write OUT",
		Long: `Corrupt IN with probability p per bit and write OUT atomically.

Running corrupt again on OUT with the same seed, p, subdivisions, buffer size
and generator restores IN. IN and OUT may be the same file.`,
		Example: "  bitrot corrupt --p 1e-6 --seed 42 disk.img disk.rot\n  bitrot corrupt --p 1e-6 --seed 42 disk.rot disk.img",
		Args:    cobra.ExactArgs(2),
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
			sess, err := bitrot.NewSession(set, log)
			if err != nil {
				return err
			}
			sess.ByteOffsets = offsets

			p := newPrinter()
			if drawn {
				p.Fprintf(cmd.ErrOrStderr(), "seed: %d (pass --seed %d to reproduce or undo)\n", sess.Seed(), sess.Seed())
			}
			return perf.Run(perf.DefaultDir, pprofMode, func() error {
				rep, err := sess.CorruptFile(cmd.Context(), args[0], args[1], !g.quiet)
				if err != nil {
					return err
				}
				return rf.emit(g, cmd.OutOrStdout(), rep)
			})
		},
	}
	fs := cmd.Flags()
	sf.bind(fs, false)
	fs.StringVar(&rf.path, "report", "", "write the report to FILE instead of stdout (.zst compresses)")
	fs.StringVarP(&rf.format, "format", "f", "table", "report format: table, json, yaml")
	fs.BoolVar(&offsets, "bytes", false, "include per-byte-offset counts in the report")
	fs.StringVar(&pprofMode, "pprof", "", "profile the run: cpu, heap, allocs (written to "+perf.DefaultDir+")")
	return cmd
}
