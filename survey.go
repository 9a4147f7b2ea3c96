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
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/bitrot/corrupt"
	"github.com/zintix-labs/bitrot/errs"
	"github.com/zintix-labs/bitrot/sdk/core"
	"github.com/zintix-labs/bitrot/setting"
	"github.com/zintix-labs/bitrot/stats"
)

// Surveyor 量測偏差：對大量全零 buffer 注入錯誤，統計實際被翻轉的 bit 比例。
//
// 每個 worker 使用由 base seed 決定性派生的 sub-seed，worker 數固定時結果可重現；
// 不同 worker 數會得到不同（但統計上等價）的結果。
type Surveyor struct {
	set  setting.Setting
	seed int64
	log  *slog.Logger
}

// NewSurveyor 以設定建立 Surveyor；log 為 nil 時不輸出日誌。
func NewSurveyor(set *setting.Setting, log *slog.Logger) (*Surveyor, error) {
	cp, seed, err := prepare(set)
	if err != nil {
		return nil, err
	}
	return &Surveyor{set: cp, seed: seed, log: orDiscard(log)}, nil
}

func (sv *Surveyor) Seed() int64 {
	return sv.seed
}

// worker 一個併發單位的私有狀態。
type worker struct {
	cr      *corrupt.Corruptor
	es      *stats.ErrorStats
	buf     []byte
	buffers int
	perBuf  []float64 // 每個 buffer 的實測錯誤率
	err     error
}

// Run 以 workers 個 goroutine 處理共 buffers 個 buffer，合併統計後回傳報告。
// 報告的 Survey 欄位帶有逐 buffer 實測錯誤率的平均與標準差。
func (sv *Surveyor) Run(ctx context.Context, buffers, workers int, showpb bool) (*stats.Report, error) {
	if buffers < 1 {
		return nil, errs.Warnf("buffers must be >= 1, got %d", buffers)
	}
	if workers < 1 {
		return nil, errs.Warnf("workers must be >= 1, got %d", workers)
	}
	workers = min(workers, buffers)
	size := sv.set.BufferSize
	factory := sv.set.Factory()

	// sub-seed 在啟動 goroutine 前依序取出，與排程無關
	sm := newSeedMaker(sv.seed)
	ws := make([]*worker, workers)
	for i := range ws {
		es := stats.NewErrorStats(size)
		n := buffers / workers
		if i < buffers%workers {
			n++
		}
		ws[i] = &worker{
			cr:      corrupt.New(core.New(factory.New(sm.next())), es),
			es:      es,
			buf:     make([]byte, size),
			buffers: n,
			perBuf:  make([]float64, 0, n),
		}
	}

	start := time.Now()
	bar := pb.New(buffers)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	bar.Start()

	wg := new(sync.WaitGroup)
	wg.Add(workers)
	for _, w := range ws {
		go func(w *worker) {
			defer wg.Done()
			w.err = sv.survey(ctx, w, bar)
		}(w)
	}
	wg.Wait()
	bar.Finish()

	merged := stats.NewErrorStats(size)
	perBuf := make([]float64, 0, buffers)
	for _, w := range ws {
		if w.err != nil {
			return nil, w.err
		}
		merged.Merge(w.es)
		perBuf = append(perBuf, w.perBuf...)
	}

	rep := stats.NewReport(merged, stats.Meta{
		Source:       "survey",
		Seed:         sv.seed,
		Probability:  sv.set.Probability,
		Subdivisions: sv.set.Subdivisions,
		BufferSize:   size,
	}, false)
	mean, std := stats.Spread(perBuf)
	rep.Survey = &stats.SurveyReport{Workers: workers, PerBufferMean: mean, PerBufferStd: std}
	rep.Elapsed = time.Since(start)

	sv.log.Info("bitrot.survey.done",
		slog.String("run_id", rep.RunID),
		slog.Int64("seed", sv.seed),
		slog.Int("workers", workers),
		slog.Int("buffers", buffers),
		slog.Float64("requested", rep.Requested),
		slog.Float64("measured", rep.Measured),
		slog.Float64("bias_ratio", rep.BiasRatio),
		slog.Duration("elapsed", rep.Elapsed),
	)
	return rep, nil
}

func (sv *Surveyor) survey(ctx context.Context, w *worker, bar *pb.ProgressBar) error {
	bits := float64(8 * len(w.buf))
	for range w.buffers {
		if err := ctx.Err(); err != nil {
			return err
		}
		clear(w.buf)
		before := w.es.TotalFlipped()
		if err := w.cr.CorruptBuffer(w.buf, sv.set.Probability, sv.set.Subdivisions); err != nil {
			return err
		}
		w.perBuf = append(w.perBuf, float64(w.es.TotalFlipped()-before)/bits)
		bar.Increment()
	}
	return nil
}

const mask63 = uint64(1<<63) - 1

// seedMaker 由一個 base seed 派生一串互不重複的 sub-seed。
type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// next 推進 state（mod 2^63 全週期 LCG，不重複），再以可逆的 mix63 打散後回傳。
// 可被多個 goroutine 同時呼叫：以 CAS 迴圈確保每次呼叫取得唯一的 state。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()
		next := (old*6364136223846793005 + 1442695040888963407) & mask63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
