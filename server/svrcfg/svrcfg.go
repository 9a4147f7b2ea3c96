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
// Package svrcfg HTTP 服務的組裝參數與資源上限。
package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/bitrot/errs"
	"github.com/zintix-labs/bitrot/server/logger"
)

const (
	DefaultMaxBodyBytes     int64 = 64 << 20
	DefaultMaxSurveyBuffers       = 1 << 16
	DefaultMaxWorkers             = 8
	DefaultRequestTimeout         = 60 * time.Second
)

type SvrCfg struct {
	Log              *slog.Logger
	Addr             string        // 空字串使用 netsvr.DefaultAddr
	MaxBodyBytes     int64         // /v1/corrupt 與 /v1/entropy 的 body 上限
	MaxSurveyBuffers int           // /v1/survey 單次最多 buffer 數
	MaxWorkers       int           // /v1/survey 單次最多 worker 數
	RequestTimeout   time.Duration // 每個請求的處理期限
}

// Valid 補上預設值並檢查上限；Log 為 nil 時使用非同步 dev logger。
func (sc *SvrCfg) Valid() error {
	if sc.Log == nil {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if sc.MaxBodyBytes == 0 {
		sc.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if sc.MaxSurveyBuffers == 0 {
		sc.MaxSurveyBuffers = DefaultMaxSurveyBuffers
	}
	if sc.MaxWorkers == 0 {
		sc.MaxWorkers = DefaultMaxWorkers
	}
	if sc.RequestTimeout == 0 {
		sc.RequestTimeout = DefaultRequestTimeout
	}
	if sc.MaxBodyBytes < 0 || sc.MaxSurveyBuffers < 0 || sc.MaxWorkers < 0 || sc.RequestTimeout < 0 {
		return errs.NewWarn("server limits must not be negative")
	}
	return nil
}
