package hd

import (
	"strings"
	"testing"
)

func TestBoneName(t *testing.T) {
	if n := BoneName(`  "Bip01 Spine" `); n != "Bip01 Spine" {
		t.Error("trim", n)
	}
	long := strings.Repeat("あ", 30)
	n := BoneName(long)
	if len(n) > MaxNameLen || !strings.HasPrefix(long, n) || len(n) != 63 {
		t.Error("truncate", len(n))
	}
}

func TestUniqueNames(t *testing.T) {
	got := UniqueNames([]string{"Hand", "Hand", "Hand.001", "Arm", "Hand"})
	want := []string{"Hand", "Hand.002", "Hand.001", "Arm", "Hand.003"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%d: got %q, want %q", i, got[i], want[i])
		}
	}
}
