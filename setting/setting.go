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
// Package setting 定義一次損壞 / survey 執行的參數，並提供 YAML 與 JSON（允許註解）的載入。
package setting

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/zintix-labs/bitrot/corrupt"
	"github.com/zintix-labs/bitrot/errs"
	"github.com/zintix-labs/bitrot/sdk/core"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBufferSize   = 4096
	DefaultSubdivisions = 1
	DefaultWorkers      = 1
	DefaultBuffers      = 1024
)

// Setting 執行參數。
//
// Seed 為 nil 表示未指定：由 ResolveSeed 以 crypto/rand 產生並寫回，
// 呼叫端必須把它印出來，否則損壞後的檔案無法還原。
type Setting struct {
	Seed         *int64  `yaml:"seed"          json:"seed"`
	Probability  float64 `yaml:"p"             json:"p"`
	Subdivisions int     `yaml:"subdivisions"  json:"subdivisions"`
	BufferSize   int     `yaml:"buffer_size"   json:"buffer_size"`
	Workers      int     `yaml:"workers"       json:"workers"`
	Buffers      int     `yaml:"buffers"       json:"buffers"`
	Generator    string  `yaml:"generator"     json:"generator"` // pcg64（預設）/ pcg32
}

// Default 回傳套用預設值、尚未指定 p 與 seed 的 Setting。
func Default() *Setting {
	s := &Setting{}
	s.applyDefaults()
	return s
}

func (s *Setting) applyDefaults() {
	if s.BufferSize == 0 {
		s.BufferSize = DefaultBufferSize
	}
	if s.Subdivisions == 0 {
		s.Subdivisions = DefaultSubdivisions
	}
	if s.Workers == 0 {
		s.Workers = DefaultWorkers
	}
	if s.Buffers == 0 {
		s.Buffers = DefaultBuffers
	}
}

// Valid 檢查參數；所有錯誤都是 Warn 等級（使用者輸入問題）。
func (s *Setting) Valid() error {
	if err := corrupt.ValidProbability(s.Probability); err != nil {
		return err
	}
	if s.Subdivisions < 1 {
		return errs.WrapWithExtra(corrupt.ErrInvalidSubdivisions, "invalid setting", fmt.Sprintf("subdivisions=%d", s.Subdivisions))
	}
	if s.BufferSize < 1 {
		return errs.Warnf("buffer_size must be >= 1, got %d", s.BufferSize)
	}
	if s.Workers < 1 {
		return errs.Warnf("workers must be >= 1, got %d", s.Workers)
	}
	if s.Buffers < 1 {
		return errs.Warnf("buffers must be >= 1, got %d", s.Buffers)
	}
	if _, ok := core.Factory(s.Generator); !ok {
		return errs.Warnf("unknown generator: %q", s.Generator)
	}
	return nil
}

// Factory 回傳設定的亂數產生器工廠（已通過 Valid 時一定存在）。
func (s *Setting) Factory() core.PRNGFactory {
	f, ok := core.Factory(s.Generator)
	if !ok {
		return core.Default()
	}
	return f
}

// ResolveSeed 回傳要使用的 seed；未指定時以 crypto/rand 產生一個非負 seed 並寫回。
// drawn 為 true 表示 seed 是新產生的。
func (s *Setting) ResolveSeed() (seed int64, drawn bool, err error) {
	if s.Seed != nil {
		return *s.Seed, false, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, false, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	seed = n.Int64()
	s.Seed = &seed
	return seed, true, nil
}

// FromYAML 解析 YAML 設定、套用預設值並檢查。
func FromYAML(raw []byte) (*Setting, error) {
	s := &Setting{}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}
	return s.done()
}

// FromJSON 解析 JSON 設定（允許註解與結尾逗號）、套用預設值並檢查。
func FromJSON(raw []byte) (*Setting, error) {
	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "invalid json", err.Error())
	}
	s := &Setting{}
	if err := json.Unmarshal(std, s); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}
	return s.done()
}

// Load 依副檔名讀取設定檔：.yaml / .yml / .json / .jsonc
func Load(path string) (*Setting, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, "read setting file failed")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FromYAML(raw)
	case ".json", ".jsonc":
		return FromJSON(raw)
	default:
		return nil, errs.Warnf("unsupported setting file extension: %q", filepath.Ext(path))
	}
}

func (s *Setting) done() (*Setting, error) {
	s.applyDefaults()
	if err := s.Valid(); err != nil {
		return nil, errs.Wrap(err, "setting initialized err")
	}
	return s, nil
}
