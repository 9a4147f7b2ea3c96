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
// Package httperr 把 errs 等級映射成 HTTP 狀態碼；屬於傳輸邊界層，核心 errs 不依賴 net/http。
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/bitrot/errs"
)

// StatusCode 將錯誤映射成 HTTP status code：
//   - ctx deadline / cancel → 504 / 408
//   - body 超過上限          → 413
//   - errs.Warn             → 400
//   - 其他                   → 500
func StatusCode(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	}
	if errs.LevelOf(err) == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Body 錯誤回應的 JSON 內容。
type Body struct {
	Error string `json:"error"`
	Level string `json:"level"`
}

// Errs 以 JSON 寫回錯誤；err 為 nil 時不做事。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(StatusCode(err))
	_ = json.NewEncoder(w).Encode(Body{Error: err.Error(), Level: errs.ErrLv(errs.LevelOf(err))})
}

// Log 只記錄值得注意的錯誤：逾時 / 衝突 / 限流記 Warn，5xx 記 Error，其餘（使用者輸入問題）不記。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusConflict || status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	case status >= 500 && status < 600:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	}
}
