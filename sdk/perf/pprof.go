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
// Package perf 以 runtime/pprof 包住一段工作，寫出 CPU / heap / allocs profile。
//
// 輸出的 cpu.pprof 也可直接拿來做 PGO（default.pgo）。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/bitrot/errs"
)

// DefaultDir profile 預設寫入路徑
const DefaultDir = "build/profiling"

// Modes 支援的 profile 種類
var Modes = []string{"cpu", "heap", "allocs"}

// Run 依 mode 執行 exe 並寫出 profile 到 dir；mode 為空字串時只執行 exe。
// exe 的錯誤優先回傳，profile 寫出失敗次之。
func Run(dir, mode string, exe func() error) error {
	if mode == "" {
		return exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(err, "create profiling dir failed")
	}
	switch mode {
	case "cpu":
		return cpu(filepath.Join(dir, "cpu.pprof"), exe)
	case "heap":
		return after(filepath.Join(dir, "heap.pprof"), "heap", exe)
	case "allocs":
		return after(filepath.Join(dir, "allocs.pprof"), "allocs", exe)
	default:
		return errs.Warnf("unknown pprof mode: %q", mode)
	}
}

func cpu(path string, exe func() error) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create cpu profile failed")
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile failed")
	}
	err = exe()
	pprof.StopCPUProfile()
	return err
}

// after 在 exe 結束後寫出一次 profile；heap 前先 GC 讓 live objects 貼近最新狀態。
func after(path, name string, exe func() error) error {
	if err := exe(); err != nil {
		return err
	}
	if name == "heap" {
		runtime.GC()
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create "+name+" profile failed")
	}
	defer f.Close()
	prof := pprof.Lookup(name)
	if prof == nil {
		return errs.Fatalf("unknown runtime profile: %s", name)
	}
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+name+" profile failed")
	}
	return nil
}
