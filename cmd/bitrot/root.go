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
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/zintix-labs/bitrot/server/logger"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Version is injected during build
var Version = "dev"

// globals 所有子命令共用的 persistent flags。
type globals struct {
	logMode string
	quiet   bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "bitrot",
		Short: "Inject sparse random bit errors into files",
		Long: `bitrot flips each bit of its input independently with probability p,
without drawing one random number per bit.

The same seed, p, subdivisions and buffer size applied to a corrupted file
restores the original, because every error is an XOR.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.logMode, "log", "", "log mode: dev, prod, silence (default silence, dev for serve)")
	root.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "no progress bar and no report on stdout")

	root.AddCommand(
		newCorruptCmd(g),
		newSurveyCmd(g),
		newEntropyCmd(g),
		newServeCmd(g),
	)
	return root
}

// logger 依 --log 建立 logger；未指定時使用 fallback。
func (g *globals) logger(fallback logger.LogMode) (*slog.Logger, error) {
	if g.logMode == "" {
		return logger.NewDefaultLogger(fallback), nil
	}
	mode, err := logger.ParseMode(g.logMode)
	if err != nil {
		return nil, err
	}
	return logger.NewDefaultLogger(mode), nil
}

// newPrinter 數字帶千分位
func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}
