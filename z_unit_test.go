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
package bitrot

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/bitrot/corrupt"
	"github.com/zintix-labs/bitrot/errs"
	"github.com/zintix-labs/bitrot/sdk/core"
	"github.com/zintix-labs/bitrot/setting"
	"github.com/zintix-labs/bitrot/stats"
)

func newSetting(seed int64, p float64, subdivisions, bufferSize int) *setting.Setting {
	s := setting.Default()
	s.Seed = &seed
	s.Probability = p
	s.Subdivisions = subdivisions
	s.BufferSize = bufferSize
	return s
}

func sample(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + i/256)
	}
	return b
}

func TestSessionSelfInverse(t *testing.T) {
	orig := sample(10000) // 不是 buffer size 的倍數
	sess, err := NewSession(newSetting(99, 0.002, 4, 1024), nil)
	require.NoError(t, err)

	var once bytes.Buffer
	rep, err := sess.Corrupt(context.Background(), bytes.NewReader(orig), &once)
	require.NoError(t, err)
	require.Len(t, once.Bytes(), len(orig))
	require.NotEqual(t, orig, once.Bytes())
	require.EqualValues(t, len(orig), rep.TotalBytes)
	require.EqualValues(t, 10, rep.Buffers)
	require.Equal(t, "stream", rep.Source)
	require.Positive(t, rep.Elapsed)

	var twice bytes.Buffer
	rep2, err := sess.Corrupt(context.Background(), bytes.NewReader(once.Bytes()), &twice)
	require.NoError(t, err)
	require.Equal(t, orig, twice.Bytes())
	require.Equal(t, rep.FlippedBits, rep2.FlippedBits)
}

// 串流結果必須等於手動逐 chunk 呼叫 CorruptBuffer，且與讀取切片方式無關。
func TestSessionMatchesChunkedCorruptor(t *testing.T) {
	orig := sample(5000)
	const size = 2048

	want := bytes.Clone(orig)
	cr := corrupt.New(core.New(core.Default().New(5)), nil)
	for from := 0; from < len(want); from += size {
		to := min(from+size, len(want))
		require.NoError(t, cr.CorruptBuffer(want[from:to], 0.01, 3))
	}

	sess, err := NewSession(newSetting(5, 0.01, 3, size), nil)
	require.NoError(t, err)
	var got bytes.Buffer
	rep, err := sess.Corrupt(context.Background(), iotest.OneByteReader(bytes.NewReader(orig)), &got)
	require.NoError(t, err)
	require.Equal(t, want, got.Bytes())
	require.Equal(t, cr.Stats().TotalFlipped(), rep.FlippedBits)
}

func TestSessionEmptyInput(t *testing.T) {
	sess, err := NewSession(newSetting(1, 0.1, 1, 16), nil)
	require.NoError(t, err)
	var out bytes.Buffer
	rep, err := sess.Corrupt(context.Background(), bytes.NewReader(nil), &out)
	require.NoError(t, err)
	require.Zero(t, out.Len())
	require.Zero(t, rep.TotalBytes)
	require.Zero(t, rep.Measured)
}

func TestSessionCancelled(t *testing.T) {
	sess, err := NewSession(newSetting(1, 0.1, 1, 16), nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sess.Corrupt(ctx, bytes.NewReader(sample(64)), io.Discard)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSessionReadError(t *testing.T) {
	sess, err := NewSession(newSetting(1, 0.1, 1, 16), nil)
	require.NoError(t, err)
	_, err = sess.Corrupt(context.Background(), iotest.ErrReader(io.ErrClosedPipe), io.Discard)
	require.ErrorIs(t, err, io.ErrClosedPipe)
	require.Equal(t, errs.Fatal, errs.LevelOf(err))
}

func TestNewSessionRejectsBadSetting(t *testing.T) {
	_, err := NewSession(newSetting(1, 0, 1, 16), nil)
	require.ErrorIs(t, err, corrupt.ErrInvalidProbability)
	_, err = NewSession(nil, nil)
	require.Error(t, err)

	// 未指定 seed 時自動產生，且不回寫到呼叫端的設定
	s := setting.Default()
	s.Probability = 0.1
	sess, err := NewSession(s, nil)
	require.NoError(t, err)
	require.Nil(t, s.Seed)
	require.NotNil(t, sess.Setting().Seed)
	require.Equal(t, sess.Seed(), *sess.Setting().Seed)
}

func TestSessionSnapshotCore(t *testing.T) {
	sess, err := NewSession(newSetting(3, 0.05, 1, 64), nil)
	require.NoError(t, err)
	snap, err := sess.SnapshotCore()
	require.NoError(t, err)
	require.Nil(t, snap)

	_, err = sess.Corrupt(context.Background(), bytes.NewReader(sample(300)), io.Discard)
	require.NoError(t, err)
	snap, err = sess.SnapshotCore()
	require.NoError(t, err)

	replay := core.New(core.Default().New(0))
	require.NoError(t, replay.Restore(snap))
	require.Equal(t, sess.core.Uint64(), replay.Uint64())
}

func TestCorruptFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.bin")
	mid := filepath.Join(dir, "mid.bin")
	orig := sample(40000)
	require.NoError(t, os.WriteFile(in, orig, 0o644))

	sess, err := NewSession(newSetting(2024, 0.001, 2, 4096), nil)
	require.NoError(t, err)
	sess.ByteOffsets = true
	rep, err := sess.CorruptFile(context.Background(), in, mid, false)
	require.NoError(t, err)
	require.Equal(t, in, rep.Source)
	require.NotNil(t, rep.ByteOffset)

	damaged, err := os.ReadFile(mid)
	require.NoError(t, err)
	require.Len(t, damaged, len(orig))
	require.NotEqual(t, orig, damaged)

	// 原地還原
	_, err = sess.CorruptFile(context.Background(), mid, mid, false)
	require.NoError(t, err)
	restored, err := os.ReadFile(mid)
	require.NoError(t, err)
	require.Equal(t, orig, restored)
}

func TestCorruptFileErrors(t *testing.T) {
	dir := t.TempDir()
	sess, err := NewSession(newSetting(1, 0.01, 1, 64), nil)
	require.NoError(t, err)

	_, err = sess.CorruptFile(context.Background(), filepath.Join(dir, "nope"), filepath.Join(dir, "out"), false)
	require.Error(t, err)

	in := filepath.Join(dir, "in")
	require.NoError(t, os.WriteFile(in, sample(1000), 0o644))
	_, err = sess.CorruptFile(context.Background(), in, filepath.Join(dir, "missing", "out"), false)
	require.Error(t, err)

	// 取消時輸出檔保持原狀
	out := filepath.Join(dir, "keep")
	require.NoError(t, os.WriteFile(out, []byte("keep"), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sess.CorruptFile(ctx, in, out, false)
	require.ErrorIs(t, err, context.Canceled)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "keep", string(got))
}

func TestSurveyDeterministic(t *testing.T) {
	run := func(workers int) *stats.Report {
		sv, err := NewSurveyor(newSetting(11, 0.001, 1, 1024), nil)
		require.NoError(t, err)
		rep, err := sv.Run(context.Background(), 64, workers, false)
		require.NoError(t, err)
		return rep
	}
	a := run(4)
	b := run(4)
	opt := cmpopts.IgnoreFields(stats.Report{}, "RunID", "Elapsed")
	if diff := cmp.Diff(a, b, opt); diff != "" {
		t.Fatalf("survey not reproducible (-first +second):\n%s", diff)
	}
	require.EqualValues(t, 64, a.Buffers)
	require.EqualValues(t, 64*1024, a.TotalBytes)
	require.Equal(t, 4, a.Survey.Workers)
	require.InDelta(t, a.Measured, a.Survey.PerBufferMean, 1e-12)
	require.Greater(t, a.BiasRatio, 1.0)
}

func TestSurveyClampsWorkers(t *testing.T) {
	sv, err := NewSurveyor(newSetting(1, 0.01, 1, 128), nil)
	require.NoError(t, err)
	rep, err := sv.Run(context.Background(), 3, 8, false)
	require.NoError(t, err)
	require.Equal(t, 3, rep.Survey.Workers)
	require.EqualValues(t, 3, rep.Buffers)

	_, err = sv.Run(context.Background(), 0, 1, false)
	require.Equal(t, errs.Warn, errs.LevelOf(err))
	_, err = sv.Run(context.Background(), 1, 0, false)
	require.Equal(t, errs.Warn, errs.LevelOf(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sv.Run(ctx, 10, 2, false)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSeedMakerDistinct(t *testing.T) {
	sm := newSeedMaker(42)
	seen := make(map[int64]bool)
	for range 10000 {
		s := sm.next()
		require.GreaterOrEqual(t, s, int64(0))
		require.False(t, seen[s])
		seen[s] = true
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	sess, err := NewSession(newSetting(8, 0.01, 1, 256), nil)
	require.NoError(t, err)
	rep, err := sess.Corrupt(context.Background(), bytes.NewReader(sample(1000)), io.Discard)
	require.NoError(t, err)

	plain := filepath.Join(dir, "r.json")
	require.NoError(t, WriteReport(plain, "json", rep))
	raw, err := os.ReadFile(plain)
	require.NoError(t, err)
	var back stats.Report
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, rep.FlippedBits, back.FlippedBits)

	packed := filepath.Join(dir, "r.json.zst")
	require.NoError(t, WriteReport(packed, "json", rep))
	f, err := os.Open(packed)
	require.NoError(t, err)
	defer f.Close()
	zr, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()
	unpacked, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.JSONEq(t, string(raw), string(unpacked))

	require.Error(t, WriteReport(filepath.Join(dir, "r.xml"), "xml", rep))
}
