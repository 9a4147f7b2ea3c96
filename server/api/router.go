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
// Package api 組裝 bitrot 的 HTTP 路由。
package api

import (
	"encoding/json"
	"net/http"

	v1 "github.com/zintix-labs/bitrot/server/api/v1"
	"github.com/zintix-labs/bitrot/server/netsvr"
	"github.com/zintix-labs/bitrot/server/netsvr/middleware"
	"github.com/zintix-labs/bitrot/server/svrcfg"
)

// RegisterRoutes 註冊 middleware、健康檢查與 v1 api。sCfg 需先通過 Valid。
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) {
	registerMiddleware(svr, sCfg)
	svr.Get("/healthz", healthz)
	registerV1API(svr, sCfg)
}

func registerMiddleware(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(sCfg.Log))
	svr.Use(middleware.Recover)
	svr.Use(middleware.MaxBody(sCfg.MaxBodyBytes))
	svr.Use(middleware.Compression)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) {
	h := v1.NewHandler(sCfg)
	svr.Group("/v1", func(r netsvr.NetRouter) {
		r.Post("/corrupt", h.Corrupt)
		r.Get("/survey", h.Survey)
		r.Post("/survey", h.Survey)
		r.Post("/entropy", h.Entropy)
	})
}
