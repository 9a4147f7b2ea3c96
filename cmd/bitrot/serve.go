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
	"github.com/zintix-labs/bitrot/server"
	"github.com/zintix-labs/bitrot/server/logger"
	"github.com/zintix-labs/bitrot/server/netsvr"
	"github.com/zintix-labs/bitrot/server/svrcfg"
)

func newServeCmd(g *globals) *cobra.Command {
	cfg := &svrcfg.SvrCfg{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the corrupt, survey and entropy operations over HTTP",
		Long: `Serve the corrupt, survey and entropy operations over HTTP.

  POST /v1/corrupt?p=&seed=&subdivisions=&buffer_size=   body in, corrupted body out
  GET|POST /v1/survey                                   JSON report
  POST /v1/entropy                                      {"bytes", "entropy_bits"}
  GET /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := logger.ModeDev
			if g.logMode != "" {
				m, err := logger.ParseMode(g.logMode)
				if err != nil {
					return err
				}
				mode = m
			}
			log, ah := logger.NewAsync(8192, mode)
			defer ah.Close()
			cfg.Log = log
			return server.Run(cmd.Context(), cfg)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&cfg.Addr, "addr", netsvr.DefaultAddr, "listen address")
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body", svrcfg.DefaultMaxBodyBytes, "request body limit in bytes")
	fs.IntVar(&cfg.MaxSurveyBuffers, "max-buffers", svrcfg.DefaultMaxSurveyBuffers, "survey buffers limit per request")
	fs.IntVar(&cfg.MaxWorkers, "max-workers", svrcfg.DefaultMaxWorkers, "survey workers limit per request")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", svrcfg.DefaultRequestTimeout, "per-request processing deadline")
	return cmd
}
