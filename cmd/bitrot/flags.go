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
	"github.com/spf13/pflag"
	"github.com/zintix-labs/bitrot/setting"
)

// settingFlags 設定檔 + 命令列覆寫。命令列只覆寫實際有給的 flag。
type settingFlags struct {
	config       string
	seed         int64
	p            float64
	subdivisions int
	bufferSize   int
	generator    string
	buffers      int
	workers      int
}

func (sf *settingFlags) bind(fs *pflag.FlagSet, survey bool) {
	fs.StringVarP(&sf.config, "config", "c", "", "setting file (.yaml, .yml, .json, .jsonc)")
	fs.Int64Var(&sf.seed, "seed", 0, "random seed (drawn and printed when omitted)")
	fs.Float64VarP(&sf.p, "p", "p", 0, "per-bit error probability, 0 < p < 1")
	fs.IntVarP(&sf.subdivisions, "subdivisions", "d", setting.DefaultSubdivisions, "independent blocks per buffer")
	fs.IntVarP(&sf.bufferSize, "buffer-size", "b", setting.DefaultBufferSize, "bytes per buffer")
	fs.StringVar(&sf.generator, "generator", "", "random generator: pcg64 (default), pcg32")
	if survey {
		fs.IntVarP(&sf.buffers, "buffers", "n", setting.DefaultBuffers, "buffers to corrupt")
		fs.IntVarP(&sf.workers, "workers", "w", setting.DefaultWorkers, "parallel workers")
	}
}

// resolve 讀設定檔（若有）後套用有給的 flag，並檢查。
func (sf *settingFlags) resolve(cmd *cobra.Command) (*setting.Setting, error) {
	set := setting.Default()
	if sf.config != "" {
		loaded, err := setting.Load(sf.config)
		if err != nil {
			return nil, err
		}
		set = loaded
	}
	fs := cmd.Flags()
	if fs.Changed("seed") {
		seed := sf.seed
		set.Seed = &seed
	}
	if fs.Changed("p") {
		set.Probability = sf.p
	}
	if fs.Changed("subdivisions") {
		set.Subdivisions = sf.subdivisions
	}
	if fs.Changed("buffer-size") {
		set.BufferSize = sf.bufferSize
	}
	if fs.Changed("generator") {
		set.Generator = sf.generator
	}
	if fs.Changed("buffers") {
		set.Buffers = sf.buffers
	}
	if fs.Changed("workers") {
		set.Workers = sf.workers
	}
	if err := set.Valid(); err != nil {
		return nil, err
	}
	return set, nil
}
