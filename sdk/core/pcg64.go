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

package core

import r2 "math/rand/v2"

// PCG64 亂數產生器（128-bit 狀態，math/rand/v2 的 PCG-DXSM）。
//
// bounded 取樣與 Float64 直接交給 rand.Rand，它的 IntN 已是無偏的乘法高位 + 拒絕採樣。
type PCG64 struct {
	src *r2.PCG
	rnd *r2.Rand
}

// NewPCG64 以指定 seed 建立新的 PCG64 實例。
//
// seed 先經 splitmix64 展開成兩個 64-bit 狀態，相鄰 seed（0,1,2...）也會得到不相關的序列。
func NewPCG64(seed int64) *PCG64 {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	src := r2.NewPCG(splitmix64(x), splitmix64(x^0xDA942042E4DD58B5))
	return &PCG64{src: src, rnd: r2.New(src)}
}

func (r *PCG64) Uint64() uint64 {
	return r.src.Uint64()
}

// UintN 產出 [0,max) 的 uint，max == 0 回傳 0
func (r *PCG64) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	return r.rnd.UintN(max)
}

// IntN 產出 [0,max) 的 int，max <= 0 回傳 -1
func (r *PCG64) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	return r.rnd.IntN(max)
}

// Float64 53-bit 精度
func (r *PCG64) Float64() float64 {
	return r.rnd.Float64()
}

func (r *PCG64) Restore(data []byte) error {
	return r.src.UnmarshalBinary(data)
}

func (r *PCG64) Snapshot() ([]byte, error) {
	return r.src.MarshalBinary()
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
