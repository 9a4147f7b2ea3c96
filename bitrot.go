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
// Package bitrot 提供 bitrot 的「組裝入口」：把亂數核心、損壞器與統計收集器組在一起。
//
// 兩種執行單位：
//   - Session：對一個串流 / 檔案逐 chunk 注入 bit 錯誤，回傳統計報告。
//     同一組 seed / p / subdivisions / buffer size / generator 再跑一次即可把檔案還原。
//   - Surveyor：對大量全零 buffer 平行注入錯誤，量測實際錯誤率與要求的 p 之間的偏差。
//
// 所有參數來自 setting.Setting；seed 未指定時由 setting.ResolveSeed 產生，呼叫端必須記錄下來。
package bitrot

import (
	"log/slog"

	"github.com/zintix-labs/bitrot/errs"
	"github.com/zintix-labs/bitrot/setting"
)

// prepare 複製並檢查設定，解出 seed。
func prepare(set *setting.Setting) (setting.Setting, int64, error) {
	if set == nil {
		return setting.Setting{}, 0, errs.NewWarn("nil setting")
	}
	cp := *set
	if err := cp.Valid(); err != nil {
		return setting.Setting{}, 0, err
	}
	seed, _, err := cp.ResolveSeed()
	if err != nil {
		return setting.Setting{}, 0, err
	}
	return cp, seed, nil
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}
