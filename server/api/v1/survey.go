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
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/bitrot"
	"github.com/zintix-labs/bitrot/errs"
	"github.com/zintix-labs/bitrot/server/httperr"
	"github.com/zintix-labs/bitrot/setting"
)

// Survey GET（query string）或 POST（JSON body，欄位同設定檔）/v1/survey
//
// 對全零 buffer 量測實際錯誤率，回傳 JSON 報告。buffers 與 workers 受伺服器上限限制。
func (h *Handler) Survey(w http.ResponseWriter, r *http.Request) {
	set := setting.Default()
	switch r.Method {
	case http.MethodGet:
		if err := parseQuery(r.URL.Query(), set); err != nil {
			httperr.Errs(w, err)
			return
		}
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(set); err != nil {
			httperr.Errs(w, errs.NewWithExtra(errs.Warn, "invalid json body", err.Error()))
			return
		}
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := checkBufferSize(set); err != nil {
		httperr.Errs(w, err)
		return
	}
	if set.Buffers > h.cfg.MaxSurveyBuffers {
		httperr.Errs(w, errs.Warnf("buffers must be <= %d, got %d", h.cfg.MaxSurveyBuffers, set.Buffers))
		return
	}
	if set.Workers > h.cfg.MaxWorkers {
		httperr.Errs(w, errs.Warnf("workers must be <= %d, got %d", h.cfg.MaxWorkers, set.Workers))
		return
	}

	sv, err := bitrot.NewSurveyor(set, h.cfg.Log)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	ctx, cancel := h.context(r)
	defer cancel()
	rep, err := sv.Run(ctx, set.Buffers, set.Workers, false)
	if err != nil {
		httperr.Log(h.cfg.Log, "survey request failed", err)
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rep)
}
