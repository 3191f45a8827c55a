package diag

import (
	"testing"

	"scarlet/internal/source"
)

func filled(n int) *Bag {
	b := NewBag(n)
	d := NewError(UnknownCode, source.Span{}, "x")
	for i := 0; i < n; i++ {
		b.Add(d)
	}
	return b
}

func TestAddHonorsCap(t *testing.T) {
	b := NewBag(2)
	d := NewWarning(UnknownCode, source.Span{}, "w")
	if !b.Add(d) || !b.Add(d) {
		t.Fatalf("adds under the cap should succeed")
	}
	if b.Add(d) {
		t.Errorf("add past the cap should be dropped")
	}
	if b.Len() != 2 {
		t.Errorf("len %d", b.Len())
	}
}

func TestMergeGrowsCap(t *testing.T) {
	a := filled(1)
	a.Merge(filled(2))
	if a.Len() != 3 {
		t.Fatalf("len %d after merge", a.Len())
	}
	if a.Cap() != 3 {
		t.Errorf("cap %d after merge, want 3", a.Cap())
	}
}

func TestMergePastCapRangeClamps(t *testing.T) {
	a := filled(40000)
	a.Merge(filled(40000))
	if a.Len() != 80000 {
		t.Fatalf("len %d after merge", a.Len())
	}
	if a.Cap() != 65535 {
		t.Errorf("cap %d after an overflowing merge, want the clamp", a.Cap())
	}
}
