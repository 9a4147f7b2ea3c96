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
// Package app 管理長生命週期元件（Component）的啟動與優雅關閉。
package app

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"
)

const defaultShutdownTimeout = 5 * time.Second

// App 並行啟動所有註冊的 Component；收到 SIGINT / SIGTERM、ctx 結束或任一 Component 返回時，
// 依序呼叫所有 Component 的 Shutdown。
type App struct {
	comps []Component
	log   *slog.Logger

	// ShutdownTimeout 優雅關閉的總期限，0 時使用 5 秒。
	ShutdownTimeout time.Duration
}

// New 建立 App；log 為 nil 時不輸出關閉錯誤。
func New(log *slog.Logger) *App {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &App{log: log}
}

// NewWith 是 New 加上 Register 的語法糖。
func NewWith(log *slog.Logger, comps ...Component) *App {
	a := New(log)
	for _, c := range comps {
		a.Register(c)
	}
	return a
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// Run 阻塞直到收到終止信號、ctx 結束或任一 Component.Run 返回。
//   - 信號或 ctx 結束：優雅關閉後回傳 nil。
//   - Component 返回：優雅關閉後回傳該錯誤（可能為 nil）。
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		a.shutdown()
		return err
	}
}

func (a *App) shutdown() {
	td := a.ShutdownTimeout
	if td <= 0 {
		td = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			a.log.Error("shutdown failed", slog.Any("err", err))
		}
	}
}
