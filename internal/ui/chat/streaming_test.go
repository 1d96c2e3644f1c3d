// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"
)

func TestRenderGateEmptyNeverFlushes(t *testing.T) {
	g := NewRenderGate()
	if g.TryFlush() {
		t.Error("empty gate should not flush")
	}
	if g.ForceFlush() {
		t.Error("empty gate should report nothing on force flush")
	}
}

func TestRenderGateBurstTriggersFlush(t *testing.T) {
	g := NewRenderGateWithConfig(5, 1) // 1fps so time never triggers
	for i := 0; i < 4; i++ {
		g.Mark()
	}
	if g.TryFlush() {
		t.Error("below burst size, fresh gate should hold")
	}
	g.Mark()
	if !g.TryFlush() {
		t.Error("burst size reached, gate should flush")
	}
	if g.Pending() != 0 {
		t.Errorf("pending = %d after flush, want 0", g.Pending())
	}
}

func TestRenderGateTimeTriggersFlush(t *testing.T) {
	g := NewRenderGateWithConfig(1000, 50) // 20ms gap
	g.Mark()
	if g.TryFlush() {
		t.Error("gate should hold inside the flush gap")
	}
	time.Sleep(25 * time.Millisecond)
	if !g.TryFlush() {
		t.Error("gate should flush once the gap elapses")
	}
}

func TestRenderGateForceFlush(t *testing.T) {
	g := NewRenderGateWithConfig(1000, 1)
	g.Mark()
	if !g.ForceFlush() {
		t.Error("force flush should consume pending marks")
	}
	if g.Pending() != 0 {
		t.Error("force flush should clear pending count")
	}
}

func TestRenderGateReset(t *testing.T) {
	g := NewRenderGate()
	g.Mark()
	g.Mark()
	g.Reset()
	if g.Pending() != 0 {
		t.Error("reset should clear pending marks")
	}
}

func TestRenderGateConfigFallbacks(t *testing.T) {
	g := NewRenderGateWithConfig(0, 0)
	if g.burstSize != defaultBurstSize {
		t.Errorf("burstSize = %d, want default", g.burstSize)
	}
	if g.minFlushGap != time.Second/defaultMaxFPS {
		t.Errorf("minFlushGap = %v, want default", g.minFlushGap)
	}

	g = NewRenderGateWithConfig(10, 120)
	if g.minFlushGap != time.Second/defaultMaxFPS {
		t.Error("fps above 60 should fall back to the default cap")
	}
}
