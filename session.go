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
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/natefinch/atomic"
	"github.com/zintix-labs/bitrot/corrupt"
	"github.com/zintix-labs/bitrot/errs"
	"github.com/zintix-labs/bitrot/sdk/core"
	"github.com/zintix-labs/bitrot/setting"
	"github.com/zintix-labs/bitrot/stats"
)

// Session 一次損壞工作（一個串流或一個檔案）。
//
// 並發語意：
//   - Session 內含可重用的 chunk buffer 與統計收集器，Corrupt / CorruptFile 以 mutex 串行化。
//   - 每次執行都以 seed 重新建立亂數核心，所以同一個 Session 對同一份輸入永遠產生同一份輸出。
//
// Buffer 語意：
//   - 串流以 BufferSize 為單位讀取；最後不足一個 buffer 的 chunk 以實際長度損壞並寫出。
//   - subdivisions 大於 chunk 長度時以 chunk 長度計。
type Session struct {
	set     setting.Setting    // 複本，建立後不受外部修改影響
	seed    int64              // 實際使用的 seed（未指定時為新產生的）
	factory core.PRNGFactory   // 亂數產生器工廠
	core    *core.Core         // 本次執行的亂數核心
	es      *stats.ErrorStats  // 跨 chunk 累積的統計
	cr      *corrupt.Corruptor // 損壞器（綁定 core 與 es）
	buf     []byte             // 可重用的 chunk buffer
	log     *slog.Logger       // 每次執行結束記一筆 summary
	mu      sync.Mutex

	// ByteOffsets 為 true 時報告附上 buffer 內逐 byte 位置的計數。
	ByteOffsets bool
}

// NewSession 以設定建立 Session；log 為 nil 時不輸出日誌。
func NewSession(set *setting.Setting, log *slog.Logger) (*Session, error) {
	cp, seed, err := prepare(set)
	if err != nil {
		return nil, err
	}
	return &Session{
		set:     cp,
		seed:    seed,
		factory: cp.Factory(),
		es:      stats.NewErrorStats(cp.BufferSize),
		buf:     make([]byte, cp.BufferSize),
		log:     orDiscard(log),
	}, nil
}

// Seed 回傳本 Session 使用的 seed。
func (s *Session) Seed() int64 {
	return s.seed
}

// Setting 回傳本 Session 的設定複本（Seed 一定已填入）。
func (s *Session) Setting() setting.Setting {
	return s.set
}

// Corrupt 從 r 逐 chunk 讀取、注入錯誤後寫到 w，回傳本次的統計報告。
// 每個 chunk 之間檢查 ctx；取消時回傳 ctx.Err()，w 可能已寫入部分資料。
func (s *Session) Corrupt(ctx context.Context, r io.Reader, w io.Writer) (*stats.Report, error) {
	return s.run(ctx, "stream", r, w)
}

// CorruptFile 損壞檔案 in 並寫到 out。
//
// out 以原子替換寫入（同目錄暫存檔 + rename）：失敗或取消時 out 保持原狀。
// in 與 out 可以是同一個路徑。showpb 控制是否在 stderr 顯示 byte 進度條。
func (s *Session) CorruptFile(ctx context.Context, in, out string, showpb bool) (*stats.Report, error) {
	f, err := os.Open(in)
	if err != nil {
		return nil, errs.Wrap(err, "open input file failed")
	}
	defer f.Close()

	var size int64
	if fi, err := f.Stat(); err == nil {
		size = fi.Size()
	}
	bar := pb.New64(size).Set(pb.Bytes, true)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	bar.Start()
	defer bar.Finish()

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		err := atomic.WriteFile(out, pr)
		// 寫檔提早失敗時讓上游的 Write 立即收到錯誤，而不是卡在 pipe 上
		pr.CloseWithError(err)
		done <- err
	}()

	rep, err := s.run(ctx, in, bar.NewProxyReader(f), pw)
	pw.CloseWithError(err)
	werr := <-done
	if err != nil {
		return nil, err
	}
	if werr != nil {
		return nil, errs.Wrap(werr, "write output file failed")
	}
	return rep, nil
}

// SnapshotCore 回傳最近一次執行結束時的亂數狀態；尚未執行過時回傳 nil。
func (s *Session) SnapshotCore() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.core == nil {
		return nil, nil
	}
	return s.core.Snapshot()
}

func (s *Session) run(ctx context.Context, source string, r io.Reader, w io.Writer) (*stats.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.es.Reset()
	s.core = core.New(s.factory.New(s.seed))
	s.cr = corrupt.New(s.core, s.es)

	p := s.set.Probability
	d := s.set.Subdivisions
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, rerr := io.ReadFull(r, s.buf)
		if n > 0 {
			chunk := s.buf[:n]
			if err := s.cr.CorruptBuffer(chunk, p, d); err != nil {
				return nil, err
			}
			if _, err := w.Write(chunk); err != nil {
				return nil, errs.Wrap(err, "write chunk failed")
			}
		}
		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			break
		}
		if rerr != nil {
			return nil, errs.Wrap(rerr, "read chunk failed")
		}
	}

	rep := stats.NewReport(s.es, stats.Meta{
		Source:       source,
		Seed:         s.seed,
		Probability:  p,
		Subdivisions: d,
		BufferSize:   s.set.BufferSize,
	}, s.ByteOffsets)
	rep.Elapsed = time.Since(start)

	s.log.Info("bitrot.session.done",
		slog.String("run_id", rep.RunID),
		slog.String("source", source),
		slog.Int64("seed", s.seed),
		slog.Float64("requested", p),
		slog.Float64("measured", rep.Measured),
		slog.Int64("bytes", rep.TotalBytes),
		slog.Int64("flipped_bits", rep.FlippedBits),
		slog.Duration("elapsed", rep.Elapsed),
	)
	return rep, nil
}
