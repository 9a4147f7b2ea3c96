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
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// Confidence 報表使用的信賴水準。
const Confidence = 0.95

// Meta 描述產生統計的那次執行（由 session / survey 填入）。
type Meta struct {
	Source       string
	Seed         int64
	Probability  float64
	Subdivisions int
	BufferSize   int
}

// Report 損壞統計報告。
//
// ErrorStats 只累積整數，Report 在建立時一次算完所有衍生數值。
type Report struct {
	RunID          string        `json:"RunID"          yaml:"run_id"`
	Source         string        `json:"Source"         yaml:"source"`
	Seed           int64         `json:"Seed"           yaml:"seed"`
	Requested      float64       `json:"Requested"      yaml:"requested"`
	Subdivisions   int           `json:"Subdivisions"   yaml:"subdivisions"`
	BufferSize     int           `json:"BufferSize"     yaml:"buffer_size"`
	Buffers        int64         `json:"Buffers"        yaml:"buffers"`
	TotalBytes     int64         `json:"TotalBytes"     yaml:"total_bytes"`
	CorruptedBytes int64         `json:"CorruptedBytes" yaml:"corrupted_bytes"`
	TotalBits      int64         `json:"TotalBits"      yaml:"total_bits"`
	FlippedBits    int64         `json:"FlippedBits"    yaml:"flipped_bits"`
	Measured       float64       `json:"Measured"       yaml:"measured"`
	BiasRatio      float64       `json:"BiasRatio"      yaml:"bias_ratio"`
	MeasuredCI     CI            `json:"MeasuredCI"     yaml:"measured_ci"`
	ZScore         float64       `json:"ZScore"         yaml:"z_score"`
	BitUniformityP float64       `json:"BitUniformityP" yaml:"bit_uniformity_p"`
	ByteErrors     []int64       `json:"ByteErrors"     yaml:"byte_errors"`
	BitPosition    []int64       `json:"BitPosition"    yaml:"bit_position"`
	ByteOffset     []int64       `json:"ByteOffset,omitempty" yaml:"byte_offset,omitempty"`
	Survey         *SurveyReport `json:"Survey,omitempty"     yaml:"survey,omitempty"`
	Elapsed        time.Duration `json:"-"              yaml:"-"`
}

// SurveyReport survey 額外的逐 buffer 統計。
type SurveyReport struct {
	Workers       int     `json:"Workers"       yaml:"workers"`
	PerBufferMean float64 `json:"PerBufferMean" yaml:"per_buffer_mean"`
	PerBufferStd  float64 `json:"PerBufferStd"  yaml:"per_buffer_std"`
}

// NewReport 由累積統計建立報告；withOffsets 為 true 時附上逐 byte 位置的計數。
func NewReport(es *ErrorStats, meta Meta, withOffsets bool) *Report {
	flipped := es.TotalFlipped()
	bits := es.TotalBits()
	r := &Report{
		RunID:          uuid.NewString(),
		Source:         meta.Source,
		Seed:           meta.Seed,
		Requested:      meta.Probability,
		Subdivisions:   meta.Subdivisions,
		BufferSize:     meta.BufferSize,
		Buffers:        es.Buffers,
		TotalBytes:     es.TotalBytes(),
		CorruptedBytes: es.CorruptedBytes(),
		TotalBits:      bits,
		FlippedBits:    flipped,
		Measured:       es.MeasuredProbability(),
		MeasuredCI:     ProportionCI(flipped, bits, Confidence),
		ZScore:         ZScore(flipped, bits, meta.Probability),
		BitUniformityP: UniformityPValue(es.BitPosition[:]),
		ByteErrors:     append([]int64(nil), es.ByteErrors[:]...),
		BitPosition:    append([]int64(nil), es.BitPosition[:]...),
	}
	if meta.Probability > 0 {
		r.BiasRatio = r.Measured / meta.Probability
	}
	if withOffsets {
		r.ByteOffset = append([]int64(nil), es.ByteOffset...)
	}
	return r
}

// StdOut 以表格輸出到 w，並附上用時與吞吐量。
func (r *Report) StdOut(w io.Writer) error {
	formatDuration(w, r.Elapsed, r.TotalBytes)
	return (&TableRender{ShowOffsets: len(r.ByteOffset) > 0}).Write(w, r)
}

func formatDuration(w io.Writer, d time.Duration, bytes int64) {
	if d == 0 {
		return
	}
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	bps := int64(float64(bytes) / sec)
	if sec < 60.0 {
		p.Fprintf(w, "used : %.2f seconds\nspeed: %d bytes/sec\n", sec, bps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Fprintf(w, "used : %dm %ds\nspeed: %d bytes/sec\n", m, s, bps)
		return
	}
	p.Fprintf(w, "used : %dh:%dm:%ds\nspeed: %d bytes/sec\n", h, m, s, bps)
}
