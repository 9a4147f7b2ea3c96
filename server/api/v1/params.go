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
package v1

import (
	"net/url"
	"strconv"

	"github.com/zintix-labs/bitrot/errs"
	"github.com/zintix-labs/bitrot/setting"
)

// 單一 buffer 的上限，避免 survey 一次配置過大的記憶體
const maxBufferSize = 1 << 20

// parseQuery 把 query string 套到 s 上；未出現的參數保留原值。
func parseQuery(q url.Values, s *setting.Setting) error {
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errs.Warnf("seed must be an integer: %q", v)
		}
		s.Seed = &seed
	}
	if v := q.Get("p"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errs.Warnf("p must be a number: %q", v)
		}
		s.Probability = p
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"subdivisions", &s.Subdivisions},
		{"buffer_size", &s.BufferSize},
		{"buffers", &s.Buffers},
		{"workers", &s.Workers},
	}
	for _, it := range ints {
		v := q.Get(it.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.Warnf("%s must be an integer: %q", it.key, v)
		}
		*it.dst = n
	}
	if v := q.Get("generator"); v != "" {
		s.Generator = v
	}
	return nil
}

func checkBufferSize(s *setting.Setting) error {
	if s.BufferSize > maxBufferSize {
		return errs.Warnf("buffer_size must be <= %d, got %d", maxBufferSize, s.BufferSize)
	}
	return nil
}
