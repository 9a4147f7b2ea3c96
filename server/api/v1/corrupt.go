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
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/zintix-labs/bitrot"
	"github.com/zintix-labs/bitrot/server/httperr"
	"github.com/zintix-labs/bitrot/server/svrcfg"
	"github.com/zintix-labs/bitrot/setting"
)

// 回應標頭：損壞結果摘要
const (
	HeaderSeed        = "X-Bitrot-Seed"
	HeaderRunID       = "X-Bitrot-Run-Id"
	HeaderFlippedBits = "X-Bitrot-Flipped-Bits"
	HeaderTotalBits   = "X-Bitrot-Total-Bits"
	HeaderMeasured    = "X-Bitrot-Measured"
)

type Handler struct {
	cfg *svrcfg.SvrCfg
}

func NewHandler(cfg *svrcfg.SvrCfg) *Handler {
	return &Handler{cfg: cfg}
}

func (h *Handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
}

// Corrupt POST /v1/corrupt?p=&seed=&subdivisions=&buffer_size=&generator=
//
// 請求 body 為原始資料，回應 body 為損壞後的資料（長度相同），摘要放在 X-Bitrot-* 標頭。
// 未指定 seed 時由伺服器產生並回在 X-Bitrot-Seed；以相同參數再送一次損壞後的資料即可還原。
// 回應在處理完成後才送出，錯誤時不會有部分輸出。
func (h *Handler) Corrupt(w http.ResponseWriter, r *http.Request) {
	set := setting.Default()
	if err := parseQuery(r.URL.Query(), set); err != nil {
		httperr.Errs(w, err)
		return
	}
	if err := checkBufferSize(set); err != nil {
		httperr.Errs(w, err)
		return
	}
	sess, err := bitrot.NewSession(set, h.cfg.Log)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	var out bytes.Buffer
	if r.ContentLength > 0 {
		out.Grow(int(min(r.ContentLength, h.cfg.MaxBodyBytes)))
	}
	rep, err := sess.Corrupt(ctx, r.Body, &out)
	if err != nil {
		httperr.Log(h.cfg.Log, "corrupt request failed", err)
		httperr.Errs(w, err)
		return
	}

	hd := w.Header()
	hd.Set("Content-Type", "application/octet-stream")
	hd.Set(HeaderSeed, strconv.FormatInt(rep.Seed, 10))
	hd.Set(HeaderRunID, rep.RunID)
	hd.Set(HeaderFlippedBits, strconv.FormatInt(rep.FlippedBits, 10))
	hd.Set(HeaderTotalBits, strconv.FormatInt(rep.TotalBits, 10))
	hd.Set(HeaderMeasured, strconv.FormatFloat(rep.Measured, 'g', -1, 64))
	w.WriteHeader(http.StatusOK)
	_, _ = out.WriteTo(w)
}
