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

// Package core 提供決定性的亂數來源。
//
// bitrot 的「還原」能力完全建立在這裡：同一個 seed + 同一串呼叫順序 ⇒ 同一串輸出，
// 再加上翻轉是以 XOR 完成，對已損壞的檔案用相同參數再跑一次即可復原。
package core

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// Float64 與 IntN 交給各 PRNG 自己實作：精度（32-bit vs 53-bit）與 bounded 取樣策略
// 依原生輸出寬度各有最合適的寫法。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

// PRNGFactory 以 seed 建立 PRNG。
//
// 合約：同一實作同一版本下 New(seed) 必須是決定性的。
// bitrot 永遠不需要「不帶 seed」的建構；未指定 seed 時由呼叫端先產生並記錄下來，
// 否則使用者無法用同一個 seed 把檔案還原。
type PRNGFactory interface {
	New(int64) PRNG
}

// PCG64Factory 是預設的 PRNGFactory（53-bit Float64）。
type PCG64Factory struct{}

func (PCG64Factory) New(seed int64) PRNG {
	return NewPCG64(seed)
}

// PCG32Factory 產生 32-bit 輸出的 PCG（Float64 只有 32-bit 精度）。
type PCG32Factory struct{}

func (PCG32Factory) New(seed int64) PRNG {
	return NewPCG32(seed)
}

func Default() PRNGFactory {
	return PCG64Factory{}
}

// Factory 依名稱取得 PRNGFactory，空字串視為預設。
func Factory(name string) (PRNGFactory, bool) {
	switch name {
	case "", "pcg64":
		return PCG64Factory{}, true
	case "pcg32":
		return PCG32Factory{}, true
	default:
		return nil, false
	}
}

// Core 封裝 PRNG，並提供取樣工具方法。
//
// Core 不是 goroutine-safe：整個損壞流程是單線、循序消耗亂數的。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Bernoulli 以一次 Float64 抽樣判定機率 prob 的事件是否發生。
// prob <= 0 永遠為 false，但仍會消耗一次亂數（保持呼叫序列與 prob 無關）。
func (c *Core) Bernoulli(prob float64) bool {
	return c.Float64() < prob
}
