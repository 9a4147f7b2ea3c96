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
// Package server 組裝並啟動 bitrot 的 HTTP 服務。
package server

import (
	"context"
	"log/slog"

	"github.com/zintix-labs/bitrot/errs"
	"github.com/zintix-labs/bitrot/server/api"
	"github.com/zintix-labs/bitrot/server/app"
	"github.com/zintix-labs/bitrot/server/netsvr"
	"github.com/zintix-labs/bitrot/server/svrcfg"
)

// Run 以內建的 chi server 啟動服務，阻塞直到收到終止信號、ctx 結束或 server 失敗。
func Run(ctx context.Context, sCfg *svrcfg.SvrCfg) error {
	if sCfg == nil {
		return errs.NewFatal("nil server config")
	}
	if err := sCfg.Valid(); err != nil {
		return err
	}
	return RunWithSvr(ctx, sCfg, netsvr.NewChiServer(netsvr.Options{Addr: sCfg.Addr}))
}

// RunWithSvr 與 Run 相同，但使用呼叫端注入的 NetSvr（自訂 listener、timeout、或掛進既有服務）。
// 這一層只負責註冊路由與跑 app 生命週期。
func RunWithSvr(ctx context.Context, sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if sCfg == nil {
		return errs.NewFatal("nil server config")
	}
	if err := sCfg.Valid(); err != nil {
		return err
	}
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return errs.NewFatal("default server is not ready")
	}

	api.RegisterRoutes(svr, sCfg)

	a := app.NewWith(sCfg.Log, svr)
	if s, ok := svr.(*netsvr.ChiAdapter); ok {
		sCfg.Log.Info("[bitrot] listening", slog.String("addr", s.Address()))
	}
	if err := a.Run(ctx); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return errs.Wrap(err, "server stopped")
	}
	return nil
}
