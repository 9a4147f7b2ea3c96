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

package errs

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestWrapKeepsLevel(t *testing.T) {
	base := NewWarn("probability out of range")
	w := Wrap(base, "corrupt buffer")
	if w.ErrLv != Warn {
		t.Fatalf("expected warn level, got %s", ErrLv(w.ErrLv))
	}
	if !errors.Is(w, base) {
		t.Fatalf("wrapped error should match its sentinel")
	}
}

func TestWrapForeignIsFatal(t *testing.T) {
	w := WrapWithExtra(io.ErrUnexpectedEOF, "read chunk", "offset=4096")
	if w.ErrLv != Fatal {
		t.Fatalf("foreign cause should be fatal, got %s", ErrLv(w.ErrLv))
	}
	msg := w.Error()
	for _, want := range []string{"errlv=fatal", "read chunk", "offset=4096", "unexpected EOF"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

func TestLevelOf(t *testing.T) {
	if LevelOf(nil) != None {
		t.Fatalf("nil should be None")
	}
	if LevelOf(io.EOF) != Fatal {
		t.Fatalf("foreign error should be Fatal")
	}
	if LevelOf(Wrap(NewLog("note"), "outer")) != Log {
		t.Fatalf("log level should survive wrap")
	}
	if _, ok := AsErr(io.EOF); ok {
		t.Fatalf("io.EOF is not *E")
	}
}
