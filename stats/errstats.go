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

import "slices"

// MaxBitErrors 一個 byte 最多 8 個 bit 錯誤，ByteErrors 因此有 0..8 共 9 格。
const MaxBitErrors = 8

// ErrorStats 損壞統計收集器。
//
// 生命週期是一個 session（一個檔案 / 一次 survey）：開始前 Reset，之後跨 buffer 累積。
// 熱路徑只做整數累加，衍生數值（實測機率、信賴區間）留給 Report 一次算完。
//
// 不是 goroutine-safe：併發時每個 worker 持有自己的 ErrorStats，最後用 Merge 合併。
type ErrorStats struct {
	ByteErrors  [MaxBitErrors + 1]int64 // [k] = 恰好 k 個 bit 錯誤的 byte 數
	BitPosition [8]int64                // [i] = 第 i 個 bit（0 為 LSB）被翻轉的次數
	ByteOffset  []int64                 // [j] = buffer 內第 j 個 byte 被選中強制損壞的次數
	Buffers     int64                   // 處理過的 buffer 數
}

// NewErrorStats 以 buffer 大小預先配置 ByteOffset。
func NewErrorStats(bufferSize int) *ErrorStats {
	return &ErrorStats{ByteOffset: make([]int64, max(0, bufferSize))}
}

// Reset 將所有表歸零（保留 ByteOffset 的容量）。
func (es *ErrorStats) Reset() {
	es.ByteErrors = [MaxBitErrors + 1]int64{}
	es.BitPosition = [8]int64{}
	clear(es.ByteOffset)
	es.Buffers = 0
}

// RecordByteErrors 記錄一個恰好有 k 個 bit 錯誤的 byte。
func (es *ErrorStats) RecordByteErrors(k int) {
	es.ByteErrors[k]++
}

// RecordClean 一次記錄 n 個零錯誤 byte（整段區間判定無錯誤時使用）。
func (es *ErrorStats) RecordClean(n int) {
	es.ByteErrors[0] += int64(n)
}

func (es *ErrorStats) RecordBitPosition(i int) {
	es.BitPosition[i]++
}

// RecordByteOffset 記錄 buffer 內第 j 個 byte 被選中；超出預配置大小時自動擴充。
func (es *ErrorStats) RecordByteOffset(j int) {
	if j >= len(es.ByteOffset) {
		es.ByteOffset = append(es.ByteOffset, make([]int64, j+1-len(es.ByteOffset))...)
	}
	es.ByteOffset[j]++
}

func (es *ErrorStats) RecordBuffer() {
	es.Buffers++
}

// Merge 把 other 累加進 es。
func (es *ErrorStats) Merge(other *ErrorStats) {
	if other == nil {
		return
	}
	for k, v := range other.ByteErrors {
		es.ByteErrors[k] += v
	}
	for i, v := range other.BitPosition {
		es.BitPosition[i] += v
	}
	if n := len(other.ByteOffset); n > len(es.ByteOffset) {
		es.ByteOffset = append(es.ByteOffset, make([]int64, n-len(es.ByteOffset))...)
	}
	for j, v := range other.ByteOffset {
		es.ByteOffset[j] += v
	}
	es.Buffers += other.Buffers
}

func (es *ErrorStats) Clone() *ErrorStats {
	c := *es
	c.ByteOffset = slices.Clone(es.ByteOffset)
	return &c
}

// TotalBytes 被檢查過的 byte 總數 Σ count(k)。
func (es *ErrorStats) TotalBytes() int64 {
	var n int64
	for _, v := range es.ByteErrors {
		n += v
	}
	return n
}

// TotalBits 被檢查過的 bit 總數 8·Σ count(k)。
func (es *ErrorStats) TotalBits() int64 {
	return 8 * es.TotalBytes()
}

// TotalFlipped 翻轉的 bit 總數 Σ k·count(k)。
func (es *ErrorStats) TotalFlipped() int64 {
	var n int64
	for k, v := range es.ByteErrors {
		n += int64(k) * v
	}
	return n
}

// CorruptedBytes 至少有一個 bit 錯誤的 byte 數。
func (es *ErrorStats) CorruptedBytes() int64 {
	return es.TotalBytes() - es.ByteErrors[0]
}

// MeasuredProbability 實測 bit 錯誤率；尚未檢查任何 bit 時回傳 0。
func (es *ErrorStats) MeasuredProbability() float64 {
	bits := es.TotalBits()
	if bits == 0 {
		return 0
	}
	return float64(es.TotalFlipped()) / float64(bits)
}
