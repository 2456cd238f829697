package vartable

import "testing"

func TestNewIntegerAllocatesContiguousHandles(t *testing.T) {
	tb := New()
	v1, err := tb.NewInteger("a", 0, 10)
	if err != nil {
		t.Fatalf("NewInteger: %v", err)
	}
	v2, err := tb.NewInteger("b", 5, 5)
	if err != nil {
		t.Fatalf("NewInteger: %v", err)
	}
	if v1 != 0 || v2 != 1 {
		t.Fatalf("expected contiguous handles 0,1, got %d,%d", v1, v2)
	}
	if tb.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tb.Len())
	}
}

func TestNewIntegerRejectsEmptyDomain(t *testing.T) {
	tb := New()
	if _, err := tb.NewInteger("bad", 10, 5); err == nil {
		t.Fatal("expected error for lo > hi")
	}
	if tb.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after a rejected allocation", tb.Len())
	}
}

func TestNewBinaryFixesZeroOneDomain(t *testing.T) {
	tb := New()
	v, err := tb.NewBinary("flag")
	if err != nil {
		t.Fatalf("NewBinary: %v", err)
	}
	lo, hi, err := tb.Bounds(v)
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	if lo != 0 || hi != 1 {
		t.Fatalf("Bounds = [%d, %d], want [0, 1]", lo, hi)
	}
	if !tb.IsBinary(v) {
		t.Fatal("expected IsBinary to report true")
	}
}

func TestBoundsAndNameRejectUnknownHandle(t *testing.T) {
	tb := New()
	if _, _, err := tb.Bounds(7); err == nil {
		t.Fatal("expected error for unknown handle")
	}
	if name := tb.Name(7); name != "<unknown:7>" {
		t.Fatalf("Name(unknown) = %q", name)
	}
	if tb.IsBinary(7) {
		t.Fatal("expected IsBinary(unknown) = false")
	}
}

func TestDeterministicNamingScheme(t *testing.T) {
	if got, want := OffsetVarName("F1", 2, 1, "L3"), "O_F1_2_1_L3"; got != want {
		t.Fatalf("OffsetVarName = %q, want %q", got, want)
	}
	if got, want := PathChoiceVarName("F1", "B", 0), "X_F1_B_0"; got != want {
		t.Fatalf("PathChoiceVarName = %q, want %q", got, want)
	}
	if got, want := DistanceFrameVarName("F1"), "D_frame_F1"; got != want {
		t.Fatalf("DistanceFrameVarName = %q, want %q", got, want)
	}
	if got, want := DistanceLinkVarName("L1"), "D_link_L1"; got != want {
		t.Fatalf("DistanceLinkVarName = %q, want %q", got, want)
	}
}

func TestNameReflectsAllocationOrder(t *testing.T) {
	tb := New()
	v1, _ := tb.NewInteger("first", 0, 1)
	v2, _ := tb.NewBinary("second")
	if tb.Name(v1) != "first" || tb.Name(v2) != "second" {
		t.Fatalf("names out of order: %q, %q", tb.Name(v1), tb.Name(v2))
	}
}
