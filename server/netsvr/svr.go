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
// Package netsvr 抽象 HTTP server：路由註冊（NetRouter）與生命週期（app.Component）分開，
// handler 與子模組只拿得到 NetRouter。
package netsvr

import (
	"net/http"

	"github.com/zintix-labs/bitrot/server/app"
)

// NetSvr 可註冊路由、可啟停的 server。
type NetSvr interface {
	NetRouter
	app.Component
}

// NetRouter 純路由行為；Group 回呼只拿到 NetRouter，看不到 Run/Shutdown。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)

	Group(path string, fn func(NetRouter))
}
