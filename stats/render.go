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

package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/bitrot/errs"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Render 定義報表輸出行為
type Render interface {
	Write(w io.Writer, r *Report) error
}

// RenderByName 依名稱取得 Render：table / json / yaml。
func RenderByName(name string) (Render, error) {
	switch strings.ToLower(name) {
	case "", "table":
		return &TableRender{}, nil
	case "json":
		return &JSONRender{}, nil
	case "yaml", "yml":
		return &YAMLRender{}, nil
	default:
		return nil, errs.Warnf("unknown report format: %q", name)
	}
}

// Json渲染
type JSONRender struct{}

func (jr *JSONRender) Write(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// YAML渲染
type YAMLRender struct{}

func (yr *YAMLRender) Write(w io.Writer, r *Report) error {
	return forceReadableList(w, r)
}

// 計數陣列一律輸出成 flow style：[..., ...]，避免 ByteOffset 展開成幾千行。
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
	case yaml.SequenceNode:
		hasChildSeq := false
		for _, c := range n.Content {
			if c != nil && c.Kind == yaml.SequenceNode {
				hasChildSeq = true
			}
			styleReadableSequences(c)
		}
		if !hasChildSeq {
			n.Style = yaml.FlowStyle
		}
	}
}

// TableRender 人類可讀的表格輸出。
//
// ShowOffsets 為 true 時另外列出被選中過的 byte 位置（只列計數非零者）。
type TableRender struct {
	ShowOffsets bool
}

func (tr *TableRender) Write(w io.Writer, r *Report) error {
	p := message.NewPrinter(lang)

	keys, vals := fmtSummary(p, r)
	out := fmtTable(fmt.Sprintf("bitrot %s", r.Source), keys, vals)

	keys, vals = fmtCounts(p, "bit errors", r.ByteErrors)
	out += fmtTable("bit errors in same byte", keys, vals)

	keys, vals = fmtCounts(p, "bit", r.BitPosition)
	out += fmtTable("bit chosen for error", keys, vals)

	if tr.ShowOffsets && len(r.ByteOffset) > 0 {
		keys, vals = fmtOffsets(p, r.ByteOffset)
		if len(keys) > 0 {
			out += fmtTable("byte chosen for error", keys, vals)
		}
	}
	_, err := io.WriteString(w, out)
	return err
}

func fmtSummary(p *message.Printer, r *Report) ([]string, map[string]string) {
	m := map[string]string{
		"Run ID":          r.RunID,
		"Seed":            fmt.Sprintf("%d", r.Seed),
		"Requested p":     fmt.Sprintf("%g", r.Requested),
		"Subdivisions":    p.Sprintf("%d", r.Subdivisions),
		"Buffer Size":     p.Sprintf("%d", r.BufferSize),
		"Buffers":         p.Sprintf("%d", r.Buffers),
		"Total Bytes":     p.Sprintf("%d", r.TotalBytes),
		"Corrupted Bytes": p.Sprintf("%d", r.CorruptedBytes),
		"Bits Corrupted":  p.Sprintf("%d of %d", r.FlippedBits, r.TotalBits),
		"Measured p":      fmt.Sprintf("%.6g", r.Measured),
		"Measured 95% CI": fmt.Sprintf("[%.6g, %.6g]", r.MeasuredCI.Lo, r.MeasuredCI.Hi),
		"Bias Ratio":      fmt.Sprintf("%.3f", r.BiasRatio),
		"Z Score":         fmt.Sprintf("%.2f", r.ZScore),
		"Bit Uniform p":   fmt.Sprintf("%.4f", r.BitUniformityP),
	}
	keys := []string{"Run ID", "Seed", "Requested p", "Subdivisions", "Buffer Size", "Buffers", "Total Bytes", "Corrupted Bytes", "Bits Corrupted", "Measured p", "Measured 95% CI", "Bias Ratio", "Z Score", "Bit Uniform p"}
	if r.Survey != nil {
		m["Workers"] = p.Sprintf("%d", r.Survey.Workers)
		m["Per-Buffer Mean"] = fmt.Sprintf("%.6g", r.Survey.PerBufferMean)
		m["Per-Buffer Std"] = fmt.Sprintf("%.6g", r.Survey.PerBufferStd)
		keys = append(keys, "Workers", "Per-Buffer Mean", "Per-Buffer Std")
	}
	return keys, m
}

func fmtCounts(p *message.Printer, label string, counts []int64) ([]string, map[string]string) {
	keys := make([]string, 0, len(counts))
	m := make(map[string]string, len(counts))
	for i, c := range counts {
		k := fmt.Sprintf("%s %d", label, i)
		keys = append(keys, k)
		m[k] = p.Sprintf("%d", c)
	}
	return keys, m
}

func fmtOffsets(p *message.Printer, offsets []int64) ([]string, map[string]string) {
	keys := make([]string, 0, 16)
	m := make(map[string]string, 16)
	for j, c := range offsets {
		if c == 0 {
			continue
		}
		k := fmt.Sprintf("byte %d", j)
		keys = append(keys, k)
		m[k] = p.Sprintf("%d", c)
	}
	return keys, m
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW > totalInner {
		maxValLen += titleW - totalInner
		totalInner = titleW
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString("|" + blank(left) + title + blank(right) + "|\n")
	sb.WriteString(divider)
	for _, k := range keys {
		v := msg[k]
		sb.WriteString("| " + k + blank(maxKeyLen-2-runewidth.StringWidth(k)) + " | " + v + blank(maxValLen-2-runewidth.StringWidth(v)) + " |\n")
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
