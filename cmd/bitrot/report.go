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
	"io"
	"strings"

	"github.com/zintix-labs/bitrot"
	"github.com/zintix-labs/bitrot/stats"
)

// reportFlags 報告輸出位置與格式。
type reportFlags struct {
	path   string
	format string
}

// emit 有 --report 時寫檔；否則在非 quiet 時寫到 w（table 格式附上用時）。
func (rf *reportFlags) emit(g *globals, w io.Writer, rep *stats.Report) error {
	if rf.path != "" {
		return bitrot.WriteReport(rf.path, rf.format, rep)
	}
	if g.quiet {
		return nil
	}
	switch strings.ToLower(rf.format) {
	case "", "table":
		return rep.StdOut(w)
	default:
		return bitrot.EncodeReport(w, "", rf.format, rep)
	}
}
