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

package corrupt

// bitPool 尚未被選中的 bit 位置（不放回抽樣用）。
//
// 固定 8 格的陣列 + 遞減的邏輯長度：取走第 i 格時把最後一格搬過來補位，O(1) 且零配置。
type bitPool struct {
	bits [8]uint8
	n    int
}

func (bp *bitPool) reset() {
	bp.bits = [8]uint8{0, 1, 2, 3, 4, 5, 6, 7}
	bp.n = 8
}

// take 取走池中第 i 格並回傳其 bit 位置；i 必須在 [0, bp.n)。
func (bp *bitPool) take(i int) uint8 {
	b := bp.bits[i]
	bp.n--
	bp.bits[i] = bp.bits[bp.n]
	return b
}
