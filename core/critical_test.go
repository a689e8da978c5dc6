//go:build !tinygo

package core

import "testing"

func TestCriticalMasksInterrupts(t *testing.T) {
	setupTest(t)

	if InterruptsMasked() {
		t.Fatal("Interrupts masked outside a critical section")
	}
	Critical(func(cs CS) {
		if !InterruptsMasked() {
			t.Error("Interrupts not masked inside Critical")
		}
	})
	if InterruptsMasked() {
		t.Error("Interrupts still masked after Critical")
	}
}

func TestUnmaskHookRunsOnOutermostExit(t *testing.T) {
	setupTest(t)

	calls := 0
	SetUnmaskHook(func() { calls++ })
	defer SetUnmaskHook(nil)

	Critical(func(cs CS) {
		_, state := EnterCritical()
		ExitCritical(state)
		if calls != 0 {
			t.Errorf("Hook ran on nested exit")
		}
	})
	if calls != 1 {
		t.Errorf("Expected hook to run once, ran %d times", calls)
	}
}
