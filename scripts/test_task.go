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
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

var (
	pass = color.New(color.FgGreen)
	fail = color.New(color.FgRed)
	warn = color.New(color.FgYellow)
)

// lineFilter 回傳 false 表示該行不印
type lineFilter func(line string) bool

// onlyResult 只留每個套件的 ok / FAIL 與建置錯誤
func onlyResult(line string) bool {
	return strings.HasPrefix(line, "ok") ||
		strings.HasPrefix(line, "FAIL") ||
		strings.Contains(line, "build failed") ||
		strings.Contains(line, "setup failed")
}

func skipNoTests(line string) bool {
	return !strings.Contains(line, "[no test files]")
}

func cleanCache() error {
	cmd := exec.Command("go", "clean", "-testcache")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go clean -testcache failed: %w", err)
	}
	return nil
}

// goTest 執行 go test，合併 stdout/stderr 並逐行上色輸出。
func goTest(title string, keep lineFilter, args ...string) error {
	pass.Println(title)
	if err := cleanCache(); err != nil {
		return err
	}
	cmd := exec.Command("go", append([]string{"test", "./..."}, args...)...)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start go test: %w", err)
	}
	go func() {
		pw.CloseWithError(cmd.Wait())
	}()

	sc := bufio.NewScanner(pr)
	for sc.Scan() {
		line := sc.Text()
		if keep != nil && !keep(line) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ok"):
			pass.Println(line)
		case strings.HasPrefix(line, "FAIL"):
			fail.Println(line)
		default:
			fmt.Println(line)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%s finished with errors: %w", title, err)
	}
	return nil
}

func runTest() error {
	return goTest("running tests", onlyResult, "-cover", "-count=1")
}

func runTestAll() error {
	return goTest("running tests (all with coverage)", nil, "-cover")
}

func runTestDetail() error {
	return goTest("running tests (detail)", skipNoTests, "-v", "-count=1")
}

// runPGO 把 bitrot corrupt --pprof cpu 產生的 profile 放到 cmd/bitrot/default.pgo，
// 下次 go build 會自動套用。
func runPGO() error {
	src := filepath.Join("build", "profiling", "cpu.pprof")
	dst := filepath.Join("cmd", "bitrot", "default.pgo")
	b, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s (run: bitrot corrupt --pprof cpu IN OUT): %w", src, err)
	}
	if err := os.WriteFile(dst, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	pass.Printf("%s -> %s\n", src, dst)
	return nil
}
