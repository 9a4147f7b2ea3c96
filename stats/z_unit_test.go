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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/bitrot/stats"
	"gopkg.in/yaml.v3"
)

// buildErrorStats 模擬 2 個 16-byte buffer：共 32 byte，其中 3 個 1-bit、1 個 3-bit。
func buildErrorStats() *stats.ErrorStats {
	es := stats.NewErrorStats(16)
	es.RecordBuffer()
	es.RecordBuffer()
	es.RecordClean(28)
	for _, k := range []int{1, 1, 1, 3} {
		es.RecordByteErrors(k)
	}
	for _, b := range []int{0, 3, 3, 5, 6, 7} {
		es.RecordBitPosition(b)
	}
	for _, j := range []int{2, 2, 9, 15} {
		es.RecordByteOffset(j)
	}
	return es
}

func TestErrorStatsDerived(t *testing.T) {
	es := buildErrorStats()
	require.EqualValues(t, 32, es.TotalBytes())
	require.EqualValues(t, 256, es.TotalBits())
	require.EqualValues(t, 6, es.TotalFlipped())
	require.EqualValues(t, 4, es.CorruptedBytes())
	require.InDelta(t, 6.0/256.0, es.MeasuredProbability(), 1e-15)
}

func TestErrorStatsReset(t *testing.T) {
	es := buildErrorStats()
	es.Reset()
	require.Zero(t, es.TotalBytes())
	require.Zero(t, es.Buffers)
	require.Len(t, es.ByteOffset, 16)
	for _, v := range es.ByteOffset {
		require.Zero(t, v)
	}
	require.Zero(t, es.MeasuredProbability())
}

func TestErrorStatsGrowAndMerge(t *testing.T) {
	a := stats.NewErrorStats(4)
	a.RecordByteOffset(10)
	require.Len(t, a.ByteOffset, 11)
	require.EqualValues(t, 1, a.ByteOffset[10])

	b := buildErrorStats()
	merged := a.Clone()
	merged.Merge(b)
	merged.Merge(nil)

	require.Len(t, merged.ByteOffset, 16)
	require.EqualValues(t, 2, merged.ByteOffset[2])
	require.EqualValues(t, 1, merged.ByteOffset[10])
	require.Equal(t, b.ByteErrors, merged.ByteErrors)
	require.Equal(t, b.BitPosition, merged.BitPosition)

	// Clone 不可與來源共用底層陣列
	merged.ByteOffset[10] = 99
	require.EqualValues(t, 1, a.ByteOffset[10])
}

func TestProportionCI(t *testing.T) {
	ci := stats.ProportionCI(50, 1000, 0.95)
	require.True(t, ci.Contains(0.05))
	require.Less(t, ci.Lo, 0.05)
	require.Greater(t, ci.Hi, 0.05)

	for _, n := range []int64{1, 7, 10, 1000, 4096 * 8, 1 << 30} {
		zero := stats.ProportionCI(0, n, 0.95)
		require.Equal(t, 0.0, zero.Lo, "n=%d", n)
		require.Greater(t, zero.Hi, 0.0, "n=%d", n)
		require.True(t, zero.Contains(0), "n=%d", n)

		all := stats.ProportionCI(n, n, 0.95)
		require.Equal(t, 1.0, all.Hi, "n=%d", n)
		require.Less(t, all.Lo, 1.0, "n=%d", n)
		require.True(t, all.Contains(1), "n=%d", n)
	}

	empty := stats.ProportionCI(0, 0, 0.95)
	require.Equal(t, stats.CI{Lo: 0, Hi: 1}, empty)
}

func TestZScore(t *testing.T) {
	require.InDelta(t, 0, stats.ZScore(100, 1000, 0.1), 1e-12)
	want := (0.2 - 0.1) / math.Sqrt(0.1*0.9/1000)
	require.InDelta(t, want, stats.ZScore(200, 1000, 0.1), 1e-9)
	require.Zero(t, stats.ZScore(1, 0, 0.1))
}

func TestUniformityPValue(t *testing.T) {
	require.Equal(t, 1.0, stats.UniformityPValue(make([]int64, 8)))
	require.InDelta(t, 1.0, stats.UniformityPValue([]int64{100, 100, 100, 100, 100, 100, 100, 100}), 1e-12)
	skew := stats.UniformityPValue([]int64{800, 0, 0, 0, 0, 0, 0, 0})
	require.Less(t, skew, 1e-6)
}

func TestSpread(t *testing.T) {
	m, s := stats.Spread(nil)
	require.Zero(t, m)
	require.Zero(t, s)
	m, s = stats.Spread([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.InDelta(t, 5, m, 1e-12)
	require.InDelta(t, math.Sqrt(32.0/7.0), s, 1e-12)
}

func TestNewReport(t *testing.T) {
	es := buildErrorStats()
	meta := stats.Meta{Source: "unit", Seed: 42, Probability: 0.01, Subdivisions: 2, BufferSize: 16}
	r := stats.NewReport(es, meta, false)

	require.NotEmpty(t, r.RunID)
	require.EqualValues(t, 6, r.FlippedBits)
	require.EqualValues(t, 256, r.TotalBits)
	require.InDelta(t, (6.0/256.0)/0.01, r.BiasRatio, 1e-12)
	require.True(t, r.MeasuredCI.Contains(r.Measured))
	require.Nil(t, r.ByteOffset)
	require.Len(t, r.ByteErrors, stats.MaxBitErrors+1)

	withOffsets := stats.NewReport(es, meta, true)
	if diff := cmp.Diff(es.ByteOffset, withOffsets.ByteOffset); diff != "" {
		t.Fatalf("byte offsets mismatch (-want +got):\n%s", diff)
	}
}

func TestRenders(t *testing.T) {
	es := buildErrorStats()
	r := stats.NewReport(es, stats.Meta{Source: "unit", Seed: 1, Probability: 0.01, Subdivisions: 1, BufferSize: 16}, true)

	var jb bytes.Buffer
	jr, err := stats.RenderByName("json")
	require.NoError(t, err)
	require.NoError(t, jr.Write(&jb, r))
	var back stats.Report
	require.NoError(t, json.Unmarshal(jb.Bytes(), &back))
	require.Equal(t, r.FlippedBits, back.FlippedBits)
	require.Equal(t, r.ByteErrors, back.ByteErrors)

	var yb bytes.Buffer
	yr, err := stats.RenderByName("yaml")
	require.NoError(t, err)
	require.NoError(t, yr.Write(&yb, r))
	require.Contains(t, yb.String(), "bit_position: [")
	var m map[string]any
	require.NoError(t, yaml.Unmarshal(yb.Bytes(), &m))
	require.EqualValues(t, 6, m["flipped_bits"])

	var tb bytes.Buffer
	require.NoError(t, r.StdOut(&tb))
	out := tb.String()
	for _, want := range []string{"bitrot unit", "Measured p", "bit errors 3", "bit 7", "byte 15"} {
		require.Contains(t, out, want)
	}
	// 每一列寬度一致
	var width int
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if width == 0 {
			width = len(line)
			continue
		}
		if strings.HasPrefix(line, "+") && strings.Count(line, "+") == 2 {
			// 新表格的頂線
			width = len(line)
			continue
		}
		require.Equal(t, width, len(line), "line %q", line)
	}

	_, err = stats.RenderByName("xml")
	require.Error(t, err)
}
