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
package bitrot

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/natefinch/atomic"
	"github.com/zintix-labs/bitrot/errs"
	"github.com/zintix-labs/bitrot/stats"
)

// WriteReport 以 format（table / json / yaml）輸出報告到 path，原子替換。
// path 以 .zst 結尾時內容以 zstd 壓縮。
func WriteReport(path, format string, r *stats.Report) error {
	var out bytes.Buffer
	if err := EncodeReport(&out, path, format, r); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &out); err != nil {
		return errs.Wrap(err, "write report file failed")
	}
	return nil
}

// EncodeReport 將報告依 format 寫入 w；name 以 .zst 結尾時包一層 zstd。
func EncodeReport(w io.Writer, name, format string, r *stats.Report) error {
	render, err := stats.RenderByName(format)
	if err != nil {
		return err
	}
	if tr, ok := render.(*stats.TableRender); ok {
		tr.ShowOffsets = len(r.ByteOffset) > 0
	}
	if !strings.HasSuffix(name, ".zst") {
		return render.Write(w, r)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return errs.Wrap(err, "create zstd writer failed")
	}
	if err := render.Write(zw, r); err != nil {
		zw.Close()
		return errs.Wrap(err, "render report failed")
	}
	if err := zw.Close(); err != nil {
		return errs.Wrap(err, "flush zstd writer failed")
	}
	return nil
}
