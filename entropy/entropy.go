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
// Package entropy 計算 byte 串流的 Shannon entropy（bits / byte，範圍 0..8）。
//
// 用來粗略觀察損壞前後的資料：壓縮或加密過的檔案接近 8，全零檔案為 0。
package entropy

import (
	"context"
	"errors"
	"io"
	"math"

	"github.com/zintix-labs/bitrot/errs"
	"gonum.org/v1/gonum/stat"
)

// 串流讀取的 chunk 大小
const chunkSize = 64 * 1024

// Histogram 逐 byte 值的出現次數。
type Histogram struct {
	Counts [256]int64
	Total  int64
}

// Add 累加 b 的每個 byte。
func (h *Histogram) Add(b []byte) {
	for _, v := range b {
		h.Counts[v]++
	}
	h.Total += int64(len(b))
}

// Write 讓 Histogram 可以直接當 io.Writer 使用（例如 io.Copy / io.MultiWriter）。
func (h *Histogram) Write(b []byte) (int, error) {
	h.Add(b)
	return len(b), nil
}

// Merge 把 other 累加進 h。
func (h *Histogram) Merge(other *Histogram) {
	if other == nil {
		return
	}
	for i, c := range other.Counts {
		h.Counts[i] += c
	}
	h.Total += other.Total
}

// Bits 回傳每 byte 的 entropy（以 2 為底）；空的 Histogram 為 0。
func (h *Histogram) Bits() float64 {
	if h.Total == 0 {
		return 0
	}
	p := make([]float64, len(h.Counts))
	n := float64(h.Total)
	for i, c := range h.Counts {
		p[i] = float64(c) / n
	}
	// stat.Entropy 以自然對數計算
	return stat.Entropy(p) / math.Ln2
}

// OfReader 讀完 r 並回傳其 Histogram；每個 chunk 之間檢查 ctx。
// 只統計實際讀到的 byte。
func OfReader(ctx context.Context, r io.Reader) (*Histogram, error) {
	h := &Histogram{}
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.Read(buf)
		h.Add(buf[:n])
		if errors.Is(err, io.EOF) {
			return h, nil
		}
		if err != nil {
			return nil, errs.Wrap(err, "read entropy source failed")
		}
	}
}
