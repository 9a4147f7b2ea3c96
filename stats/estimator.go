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

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CI 信賴區間
type CI struct {
	Lo float64 `json:"Lo" yaml:"lo"`
	Hi float64 `json:"Hi" yaml:"hi"`
}

// Contains 回傳 x 是否落在 [Lo,Hi]。
func (c CI) Contains(x float64) bool {
	return x >= c.Lo && x <= c.Hi
}

// ProportionCI 回傳 k/n 的 Wilson score 信賴區間。
//
// 不用常態近似的 Wald 區間：p 極低（1e-4 以下）時 k 常常只有個位數，
// Wald 會給出負下界或零寬度區間。
func ProportionCI(k, n int64, conf float64) CI {
	if n <= 0 {
		return CI{Lo: 0, Hi: 1}
	}
	z := distuv.UnitNormal.Quantile(1 - (1-conf)/2)
	nf := float64(n)
	ph := float64(k) / nf
	z2 := z * z
	den := 1 + z2/nf
	center := (ph + z2/(2*nf)) / den
	half := z * math.Sqrt(ph*(1-ph)/nf+z2/(4*nf*nf)) / den
	ci := CI{
		Lo: max(center-half, 0),
		Hi: min(center+half, 1),
	}
	// 端點直接給定：center-half 的相消誤差會留下 1e-19 量級的殘值
	if k <= 0 {
		ci.Lo = 0
	}
	if k >= n {
		ci.Hi = 1
	}
	return ci
}

// ZScore 實測 k/n 相對於要求機率 p 的標準分數（二項分布常態近似）。
func ZScore(k, n int64, p float64) float64 {
	if n <= 0 || p <= 0 || p >= 1 {
		return 0
	}
	nf := float64(n)
	se := math.Sqrt(p * (1 - p) / nf)
	return (float64(k)/nf - p) / se
}

// UniformityPValue 以卡方適合度檢定 counts 是否均勻分布，回傳 p-value。
//
// 用來檢查被翻轉的 bit 位置 0..7 是否等機率；沒有任何觀測值時回傳 1。
func UniformityPValue(counts []int64) float64 {
	if len(counts) < 2 {
		return 1
	}
	var total int64
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 1
	}
	exp := float64(total) / float64(len(counts))
	chi2 := 0.0
	for _, c := range counts {
		d := float64(c) - exp
		chi2 += d * d / exp
	}
	dist := distuv.ChiSquared{K: float64(len(counts) - 1)}
	return dist.Survival(chi2)
}

// Spread 回傳樣本平均與樣本標準差；少於兩個樣本時標準差為 0。
func Spread(xs []float64) (mean, std float64) {
	switch len(xs) {
	case 0:
		return 0, 0
	case 1:
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}
