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
// Package logger 組裝 bitrot 使用的 *slog.Logger。
//
// 三種模式：dev（text / stderr / debug）、prod（JSON / stdout / info）、silence（全部丟棄）。
// AsyncHandler 可把任何 slog.Handler 包成非阻塞版本：佇列滿時丟棄並計數。
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/bitrot/errs"
)

// enum LogMode
type LogMode uint8

const (
	ModeDev LogMode = iota
	ModeProd
	ModeSilence
)

func (m LogMode) String() string {
	switch m {
	case ModeDev:
		return "dev"
	case ModeProd:
		return "prod"
	case ModeSilence:
		return "silence"
	default:
		return "unknown"
	}
}

// ParseMode 解析 CLI / 設定檔中的模式名稱。
func ParseMode(s string) (LogMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "":
		return ModeDev, nil
	case "prod":
		return ModeProd, nil
	case "silence", "silent", "off":
		return ModeSilence, nil
	default:
		return ModeDev, errs.Warnf("unknown log mode: %q", s)
	}
}

// NewDefaultLogger 依模式的預設輸出（stderr / stdout）建立 logger。
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(NewHandler(mode, nil))
}

// NewHandler 依模式建立 handler；w 為 nil 時使用模式的預設輸出。
func NewHandler(mode LogMode, w io.Writer) slog.Handler {
	switch mode {
	case ModeProd:
		if w == nil {
			w = os.Stdout
		}
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case ModeSilence:
		return slog.DiscardHandler
	default:
		if w == nil {
			w = os.Stderr
		}
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// NewAsync 以模式預設 handler 建立非阻塞 logger；呼叫端負責在結束前 Close。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(NewHandler(mode, nil), buf)
	return slog.New(ah), ah
}

// AsyncHandler 把 Handle 轉成 enqueue，由背景 goroutine 逐筆寫出。
//
// 佇列滿或 Close 之後送進來的紀錄會被丟棄並計入 Dropped。
// slog.Logger 忽略 Handle 的回傳值，寫出錯誤需由 next 自行處理。
type AsyncHandler struct {
	next slog.Handler
	q    *queue
}

type queue struct {
	ch      chan item
	closed  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type item struct {
	ctx context.Context
	rec slog.Record
	h   slog.Handler
}

// NewAsyncHandler buf <= 0 時使用 1024。
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = NewHandler(ModeDev, nil)
	}
	if buf <= 0 {
		buf = 1024
	}
	q := &queue{
		ch:     make(chan item, buf),
		closed: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.drain()
	return &AsyncHandler{next: next, q: q}
}

// Dropped 回傳被丟棄的紀錄數。
func (h *AsyncHandler) Dropped() uint64 {
	return h.q.dropped.Load()
}

// Close 停止接收新紀錄，寫完佇列中剩餘的紀錄後返回。可重複呼叫。
func (h *AsyncHandler) Close() {
	h.q.once.Do(func() { close(h.q.closed) })
	h.q.wg.Wait()
}

func (q *queue) drain() {
	defer q.wg.Done()
	for {
		select {
		case it := <-q.ch:
			_ = it.h.Handle(it.ctx, it.rec)
		case <-q.closed:
			for {
				select {
				case it := <-q.ch:
					_ = it.h.Handle(it.ctx, it.rec)
				default:
					return
				}
			}
		}
	}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	select {
	case <-h.q.closed:
		h.q.dropped.Add(1)
		return nil
	default:
	}
	// Record 跨 goroutine 前必須 Clone
	select {
	case h.q.ch <- item{ctx: ctx, rec: r.Clone(), h: h.next}:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), q: h.q}
}
