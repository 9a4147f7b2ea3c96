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

	"github.com/zintix-labs/bitrot/entropy"
	"github.com/zintix-labs/bitrot/server/httperr"
)

type EntropyResponse struct {
	Bytes       int64   `json:"bytes"`
	EntropyBits float64 `json:"entropy_bits"`
}

// Entropy POST /v1/entropy：回傳請求 body 的 Shannon entropy（bits / byte）。
func (h *Handler) Entropy(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()
	hist, err := entropy.OfReader(ctx, r.Body)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(EntropyResponse{Bytes: hist.Total, EntropyBits: hist.Bits()})
}
