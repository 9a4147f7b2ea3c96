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

import "math"

// SuccessProbability 回傳 trials 次獨立 Bernoulli(p) 試驗中「至少一次成功」的機率：
//
//	P = 1 - (1-p)^trials
//
// 這是整個演算法省時的來源：把 8·n 個 bit 各擲一次硬幣，換成以 P 擲一次。
// 低 p 時絕大多數區間一次就判定無錯誤。
//
// 以 -expm1(trials·log1p(-p)) 計算，數學上等價，但 p 很小時不會因 1-p 捨入成 1 而回傳 0。
// trials <= 0 回傳 0；p 必須在 (0,1)，由呼叫端保證。
func SuccessProbability(trials int, p float64) float64 {
	if trials <= 0 {
		return 0
	}
	return -math.Expm1(float64(trials) * math.Log1p(-p))
}
