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
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/zintix-labs/bitrot/entropy"
	"github.com/zintix-labs/bitrot/errs"
)

type entropyResult struct {
	File        string  `json:"file"`
	Bytes       int64   `json:"bytes"`
	EntropyBits float64 `json:"entropy_bits"`
}

func newEntropyCmd(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "entropy FILE...",
		Short: "Print the Shannon entropy of each file in bits per byte",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]entropyResult, 0, len(args))
			for _, name := range args {
				res, err := fileEntropy(cmd, name)
				if err != nil {
					return err
				}
				results = append(results, res)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			p := newPrinter()
			for _, r := range results {
				p.Fprintf(out, "%s: %.6f bits/byte (%d bytes)\n", r.File, r.EntropyBits, r.Bytes)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func fileEntropy(cmd *cobra.Command, name string) (entropyResult, error) {
	f, err := os.Open(name)
	if err != nil {
		return entropyResult{}, errs.Wrap(err, "open file failed")
	}
	defer f.Close()
	h, err := entropy.OfReader(cmd.Context(), f)
	if err != nil {
		return entropyResult{}, err
	}
	return entropyResult{File: name, Bytes: h.Total, EntropyBits: h.Bits()}, nil
}
