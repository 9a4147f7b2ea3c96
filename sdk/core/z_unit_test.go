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

package core

import (
	"testing"
)

func TestCoreDeterminism(t *testing.T) {
	for _, name := range []string{"pcg64", "pcg32"} {
		f, ok := Factory(name)
		if !ok {
			t.Fatalf("factory %s not found", name)
		}
		c1 := New(f.New(7))
		c2 := New(f.New(7))
		for i := 0; i < 64; i++ {
			if c1.Uint64() != c2.Uint64() {
				t.Fatalf("%s: Uint64 mismatch at %d", name, i)
			}
			if c1.IntN(10) != c2.IntN(10) {
				t.Fatalf("%s: IntN mismatch at %d", name, i)
			}
			if c1.Float64() != c2.Float64() {
				t.Fatalf("%s: Float64 mismatch at %d", name, i)
			}
		}
	}
}

// 已損壞的檔案要能還原，PCG64 的輸出串流必須跨版本固定；這裡釘住 seed 0 / 7 的前幾個值。
func TestPCG64KnownStream(t *testing.T) {
	r := NewPCG64(0)
	for i, want := range []uint64{0x4579b1ed6fb523aa, 0x3929e4836cb85419, 0x695d1292d1af2dda} {
		if got := r.Uint64(); got != want {
			t.Fatalf("Uint64 #%d: got %#x want %#x", i, got, want)
		}
	}

	r = NewPCG64(0)
	for i, want := range []float64{0.8029696637905677, 0.3091446994245671, 0.9085172744175296} {
		if got := r.Float64(); got != want {
			t.Fatalf("Float64 #%d: got %v want %v", i, got, want)
		}
	}

	r = NewPCG64(7)
	for i, want := range []int{1, 4, 0, 4, 1, 0, 3, 0} {
		if got := r.IntN(8); got != want {
			t.Fatalf("IntN(8) #%d: got %d want %d", i, got, want)
		}
	}
	for i, want := range []int{1593, 3646, 1819, 996} {
		if got := r.IntN(4093); got != want {
			t.Fatalf("IntN(4093) #%d: got %d want %d", i, got, want)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(Default().New(0))
	b := New(Default().New(1))
	same := 0
	for i := 0; i < 16; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	if same == 16 {
		t.Fatalf("seeds 0 and 1 produced identical streams")
	}
}

func TestRangeBounds(t *testing.T) {
	c := New(Default().New(3))
	for i := 0; i < 10000; i++ {
		if v := c.IntN(8); v < 0 || v >= 8 {
			t.Fatalf("IntN(8) out of range: %d", v)
		}
		if v := c.IntN(4093); v < 0 || v >= 4093 {
			t.Fatalf("IntN(4093) out of range: %d", v)
		}
		if f := c.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %v", f)
		}
	}
	if c.IntN(0) != -1 || c.UintN(0) != 0 {
		t.Fatalf("degenerate bounds mismatch")
	}
}

func TestBernoulliEdges(t *testing.T) {
	c := New(Default().New(5))
	for i := 0; i < 1000; i++ {
		if c.Bernoulli(0) {
			t.Fatalf("Bernoulli(0) must never succeed")
		}
		if !c.Bernoulli(1) {
			t.Fatalf("Bernoulli(1) must always succeed")
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	for _, name := range []string{"pcg64", "pcg32"} {
		f, _ := Factory(name)
		src := f.New(42)
		for i := 0; i < 10; i++ {
			src.Uint64()
		}
		snap, err := src.Snapshot()
		if err != nil {
			t.Fatalf("%s snapshot: %v", name, err)
		}
		want := src.Uint64()

		dst := f.New(1)
		if err := dst.Restore(snap); err != nil {
			t.Fatalf("%s restore: %v", name, err)
		}
		if got := dst.Uint64(); got != want {
			t.Fatalf("%s restored stream mismatch: got %d want %d", name, got, want)
		}
	}
}

func TestPCG32RestoreRejectsBadState(t *testing.T) {
	r := NewPCG32(1)
	if err := r.Restore([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected length error")
	}
	if err := r.Restore(make([]byte, 16)); err == nil {
		t.Fatalf("expected even increment error")
	}
}

func TestUnknownFactory(t *testing.T) {
	if _, ok := Factory("mt19937"); ok {
		t.Fatalf("unexpected factory")
	}
}
