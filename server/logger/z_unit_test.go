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
package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for in, want := range map[string]LogMode{"": ModeDev, "DEV": ModeDev, "prod": ModeProd, "off": ModeSilence, "silence": ModeSilence} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		require.Equal(t, want, got, in)
	}
	_, err := ParseMode("loud")
	require.Error(t, err)
	require.Equal(t, "prod", ModeProd.String())
}

func TestProdHandlerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(ModeProd, &buf))
	log.Debug("hidden")
	log.Info("bitrot.session.done", slog.Float64("measured", 0.5))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	require.Equal(t, "bitrot.session.done", rec["msg"])
	require.Equal(t, 0.5, rec["measured"])
}

func TestSilenceDropsEverything(t *testing.T) {
	h := NewHandler(ModeSilence, nil)
	require.False(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	var buf bytes.Buffer
	ah := NewAsyncHandler(NewHandler(ModeDev, &buf), 64)
	log := slog.New(ah).With(slog.String("component", "test"))
	for i := 0; i < 10; i++ {
		log.Info("tick", slog.Int("i", i))
	}
	ah.Close()
	ah.Close()
	require.Equal(t, 10, strings.Count(buf.String(), "msg=tick"))
	require.Contains(t, buf.String(), "component=test")
	require.Zero(t, ah.Dropped())

	log.Info("late")
	require.EqualValues(t, 1, ah.Dropped())
	require.NotContains(t, buf.String(), "late")
}
