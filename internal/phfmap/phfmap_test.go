package phfmap

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/tamirms/phf/internal/chd"
)

func buildState(t *testing.T, keys [][]byte, alpha float64) *chd.State {
	t.Helper()
	cfg := chd.DefaultConfig()
	cfg.LoadFactor = alpha
	st, err := chd.Generate(context.Background(), keys, rand.NewPCG(1, 2), cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return st
}

func TestFromState(t *testing.T) {
	for _, alpha := range []float64{1.0, 0.5} {
		keys := make([][]byte, 200)
		for i := range keys {
			keys[i] = fmt.Appendf(nil, "key-%d", i)
		}
		st := buildState(t, keys, alpha)
		m := FromState(st, keys, func(i int) int { return i * 10 })

		if len(m.Entries) != st.Capacity() {
			t.Fatalf("alpha=%v: %d entries, want %d", alpha, len(m.Entries), st.Capacity())
		}
		if m.Len() != len(keys) {
			t.Fatalf("alpha=%v: Len = %d, want %d", alpha, m.Len(), len(keys))
		}
		wantNumKeys := 0
		if st.Capacity() > len(keys) {
			wantNumKeys = len(keys)
		}
		if m.NumKeys != wantNumKeys {
			t.Fatalf("alpha=%v: NumKeys = %d, want %d", alpha, m.NumKeys, wantNumKeys)
		}

		for i, k := range keys {
			v, ok := m.GetBytes(k)
			if !ok || v != i*10 {
				t.Fatalf("alpha=%v: GetBytes(%q) = (%d, %v), want (%d, true)", alpha, k, v, ok, i*10)
			}
		}
		if _, ok := m.Get("absent"); ok {
			t.Fatalf("alpha=%v: absent key found", alpha)
		}

		seen := 0
		for range m.All() {
			seen++
		}
		if seen != len(keys) {
			t.Fatalf("alpha=%v: All yielded %d entries, want %d", alpha, seen, len(keys))
		}
	}
}

func TestSlotKeyFiller(t *testing.T) {
	st := &chd.State{Map: []int{-1, 2, 0, -1, 1}}
	want := []int{0, 2, 0, 0, 1}
	for slot, w := range want {
		if got := SlotKey(st, slot); got != w {
			t.Errorf("SlotKey(%d) = %d, want %d", slot, got, w)
		}
	}
}
