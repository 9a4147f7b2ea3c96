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

// Package corrupt 實作稀疏 bit 錯誤取樣：以機率 p 對 buffer 中每個 bit 獨立翻轉，
// 但不逐 bit 抽亂數。
//
// 流程（由外而內）：
//  1. CorruptBuffer 把 buffer 切成 subdivisions 個互不重疊的區塊。
//  2. CorruptRange 對區間擲一次「區間內至少一個錯誤」的硬幣；失敗則整段記為零錯誤。
//     成功則在區間內均勻選一個 split byte，強制它至少一個錯誤，再對左右兩段遞迴。
//  3. CorruptByte 決定 split byte 要翻幾個、哪幾個 bit（至少一個，不放回抽樣）。
//
// 亂數消耗順序是可觀察的合約：split 判定 → split byte → 左段 → 右段。
// 改變順序不影響統計分布，但同一個 seed 的輸出會不同，檔案也就無法用原參數還原。
//
// 已知偏差：split byte 是「被強制」損壞，而不是重新獨立檢定，實測錯誤率會高於 p
// （例如 p=1e-4 實測約 2.2e-4），p 越低越明顯，增加 subdivisions 可緩解。
// 此行為保留以維持與既有損壞檔案的相容性；Report.BiasRatio 會呈現偏差倍數。
package corrupt

import (
	"fmt"
	"math"

	"github.com/zintix-labs/bitrot/errs"
	"github.com/zintix-labs/bitrot/sdk/core"
	"github.com/zintix-labs/bitrot/stats"
)

var (
	ErrInvalidProbability  = errs.NewWarn("bit error probability must be in (0,1)")
	ErrInvalidSubdivisions = errs.NewWarn("subdivisions must be >= 1")
	ErrInvalidRange        = errs.NewWarn("range out of buffer bounds")
)

// Corruptor 持有亂數核心與統計收集器，對 buffer 就地注入 bit 錯誤。
//
// 並發語意：Corruptor 不是 goroutine-safe。亂數必須循序消耗才能重現，
// 要平行處理請每個 goroutine 各自建立 Corruptor，並以決定性方式派生各自的 seed。
type Corruptor struct {
	core  *core.Core
	stats *stats.ErrorStats
	pool  bitPool

	// onResolve 在一個區間被「定案」時呼叫：flipped=true 表示單一 byte 被損壞，
	// false 表示 [from,to] 整段判定無錯誤。測試用來驗證遞迴恰好分割區間。
	onResolve func(from, to int, flipped bool)
}

// New 建立 Corruptor；es 為 nil 時建立一個 0 長度的收集器（ByteOffset 會依需要擴充）。
func New(c *core.Core, es *stats.ErrorStats) *Corruptor {
	if es == nil {
		es = stats.NewErrorStats(0)
	}
	return &Corruptor{core: c, stats: es}
}

// Stats 回傳累積中的統計（同一個指標，不是複本）。
func (c *Corruptor) Stats() *stats.ErrorStats {
	return c.stats
}

// ValidProbability 檢查 p 是否在開區間 (0,1)。
func ValidProbability(p float64) error {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return errs.WrapWithExtra(ErrInvalidProbability, "invalid probability", fmt.Sprintf("p=%v", p))
	}
	return nil
}

// CorruptBuffer 是逐 chunk 的入口：把 buf 切成 subdivisions 個連續、大小相近的區塊，
// 每塊獨立呼叫一次區間損壞，split 永遠不會跨越區塊邊界。
//
// subdivisions 越多越貼近要求的 p，代價是更多次亂數抽樣。
// subdivisions 大於 len(buf) 時以 len(buf) 計；空 buffer 不做事，也不計入 Buffers。
func (c *Corruptor) CorruptBuffer(buf []byte, p float64, subdivisions int) error {
	if err := ValidProbability(p); err != nil {
		return err
	}
	if subdivisions < 1 {
		return errs.WrapWithExtra(ErrInvalidSubdivisions, "invalid subdivisions", fmt.Sprintf("subdivisions=%d", subdivisions))
	}
	n := len(buf)
	if n == 0 {
		return nil
	}
	c.stats.RecordBuffer()
	d := min(subdivisions, n)
	size := n / d
	from := 0
	for i := 0; i < d; i++ {
		to := from + size - 1
		if i == d-1 {
			to = n - 1 // 餘數併入最後一塊
		}
		c.corruptRange(buf, from, to, p)
		from = to + 1
	}
	return nil
}

// CorruptRange 對閉區間 [from,to] 做遞迴損壞。
//
// from > to 是合法的空區間，直接回傳 nil（遞迴在邊界本來就會產生這種呼叫）。
func (c *Corruptor) CorruptRange(buf []byte, from, to int, p float64) error {
	if err := ValidProbability(p); err != nil {
		return err
	}
	if from > to {
		return nil
	}
	if from < 0 || to >= len(buf) {
		return errs.WrapWithExtra(ErrInvalidRange, "invalid range", fmt.Sprintf("from=%d to=%d len=%d", from, to, len(buf)))
	}
	c.corruptRange(buf, from, to, p)
	return nil
}

// CorruptByte 強制 buf[idx] 至少翻轉一個 bit。
func (c *Corruptor) CorruptByte(buf []byte, idx int, p float64) error {
	if err := ValidProbability(p); err != nil {
		return err
	}
	if idx < 0 || idx >= len(buf) {
		return errs.WrapWithExtra(ErrInvalidRange, "invalid byte index", fmt.Sprintf("idx=%d len=%d", idx, len(buf)))
	}
	c.corruptByte(buf, idx, p)
	return nil
}

// corruptRange 遞迴本體。
//
//   - 多 byte：以 SuccessProbability(8·n, p) 擲一次；失敗則 n 個 byte 記入零錯誤桶。
//     成功則均勻選 split ∈ [from,to]，強制損壞後依序遞迴 [from,split-1]、[split+1,to]。
//     split 落在端點時其中一側為空區間，不消耗亂數，自然退化成單側遞迴。
//   - 單 byte：以 SuccessProbability(8, p) 擲一次，成功才損壞。
//   - 空區間：no-op。
func (c *Corruptor) corruptRange(buf []byte, from, to int, p float64) {
	switch {
	case from > to:
		return
	case from == to:
		if c.core.Bernoulli(SuccessProbability(8, p)) {
			c.corruptByte(buf, from, p)
			return
		}
		c.clean(from, to)
	default:
		n := to - from + 1
		if !c.core.Bernoulli(SuccessProbability(8*n, p)) {
			c.clean(from, to)
			return
		}
		split := from + c.core.IntN(n)
		c.corruptByte(buf, split, p)
		c.corruptRange(buf, from, split-1, p)
		c.corruptRange(buf, split+1, to, p)
	}
}

func (c *Corruptor) clean(from, to int) {
	c.stats.RecordClean(to - from + 1)
	if c.onResolve != nil {
		c.onResolve(from, to, false)
	}
}

// corruptByte 在已知「此 byte 至少一個錯誤」的前提下，決定翻幾個、翻哪幾個 bit。
//
// 低 p 時幾乎都是單一 bit 錯誤：先以 7 次試驗判斷是否需要第二個錯誤，
// 不需要就直接均勻翻一個 bit，不必建立 bitPool。
// 需要時走不放回抽樣：先強制翻 2 個，之後每翻一個前以「剩餘 bit 數」為試驗次數再擲一次，
// 直到失敗或 8 個 bit 全翻完。
func (c *Corruptor) corruptByte(buf []byte, idx int, p float64) {
	c.stats.RecordByteOffset(idx)
	if c.onResolve != nil {
		c.onResolve(idx, idx, true)
	}

	if !c.core.Bernoulli(SuccessProbability(7, p)) {
		bit := c.core.IntN(8)
		buf[idx] ^= 1 << bit
		c.stats.RecordBitPosition(bit)
		c.stats.RecordByteErrors(1)
		return
	}

	c.pool.reset()
	mustFlip := 2
	flips := 0
	for c.pool.n > 0 {
		forced := mustFlip > 0
		mustFlip--
		if !forced && !c.core.Bernoulli(SuccessProbability(c.pool.n, p)) {
			break
		}
		bit := c.pool.take(c.core.IntN(c.pool.n))
		buf[idx] ^= 1 << bit
		c.stats.RecordBitPosition(int(bit))
		flips++
	}
	c.stats.RecordByteErrors(flips)
}
