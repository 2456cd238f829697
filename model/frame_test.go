package model

import "testing"

func TestNewFrameValidatesInvariants(t *testing.T) {
	cases := []struct {
		name                                                string
		size, period, deadline, starting, endToEnd          int64
		sender                                              string
		receivers                                           []string
		wantErr                                             bool
	}{
		{"valid", 100, 1000, 800, 0, 800, "A", []string{"B"}, false},
		{"zero size", 0, 1000, 800, 0, 800, "A", []string{"B"}, true},
		{"zero period", 100, 0, 800, 0, 800, "A", []string{"B"}, true},
		{"deadline exceeds period", 100, 1000, 1200, 0, 800, "A", []string{"B"}, true},
		{"starting at deadline", 100, 1000, 800, 800, 800, "A", []string{"B"}, true},
		{"negative starting", 100, 1000, 800, -1, 800, "A", []string{"B"}, true},
		{"end to end exceeds deadline", 100, 1000, 800, 0, 900, "A", []string{"B"}, true},
		{"no sender", 100, 1000, 800, 0, 800, "", []string{"B"}, true},
		{"no receivers", 100, 1000, 800, 0, 800, "A", nil, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewFrame("F1", c.size, c.period, c.deadline, c.starting, c.endToEnd, c.sender, c.receivers)
			if (err != nil) != c.wantErr {
				t.Fatalf("NewFrame: err = %v, wantErr = %v", err, c.wantErr)
			}
		})
	}
}

func TestNewFrameCopiesReceiversSlice(t *testing.T) {
	receivers := []string{"B", "C"}
	f, err := NewFrame("F1", 100, 1000, 800, 0, 800, "A", receivers)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	receivers[0] = "mutated"
	if f.Receivers[0] != "B" {
		t.Fatalf("Frame.Receivers aliased the caller's slice: got %v", f.Receivers)
	}
}

func TestAddOffsetDeduplicatesByLink(t *testing.T) {
	f, err := NewFrame("F1", 100, 1000, 800, 0, 800, "A", []string{"B"})
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	link := Link{ID: "L1", Speed: 100, Type: LinkWired}

	o1 := f.AddOffset(link)
	o2 := f.AddOffset(link)
	if o1 != o2 {
		t.Fatal("expected AddOffset to return the same Offset for a repeated link")
	}
	if len(f.Offsets()) != 1 {
		t.Fatalf("Offsets() has %d entries, want 1", len(f.Offsets()))
	}
	got, ok := f.OffsetFor("L1")
	if !ok || got != o1 {
		t.Fatalf("OffsetFor(L1) = %v, %v, want %v, true", got, ok, o1)
	}
}

func TestOffsetsPreservesInsertionOrder(t *testing.T) {
	f, err := NewFrame("F1", 100, 1000, 800, 0, 800, "A", []string{"B"})
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	f.AddOffset(Link{ID: "L2", Speed: 100, Type: LinkWired})
	f.AddOffset(Link{ID: "L1", Speed: 100, Type: LinkWired})

	offsets := f.Offsets()
	if len(offsets) != 2 || offsets[0].Link != "L2" || offsets[1].Link != "L1" {
		t.Fatalf("unexpected offset order: %+v", offsets)
	}
}

func TestNumInstances(t *testing.T) {
	f, err := NewFrame("F1", 100, 250, 200, 0, 200, "A", []string{"B"})
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	if got := f.NumInstances(1000); got != 4 {
		t.Fatalf("NumInstances(1000) = %d, want 4", got)
	}
}

func TestHasReceiver(t *testing.T) {
	f, err := NewFrame("F1", 100, 1000, 800, 0, 800, "A", []string{"B", "C"})
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	if !f.HasReceiver("B") || !f.HasReceiver("C") {
		t.Fatal("expected HasReceiver to find both configured receivers")
	}
	if f.HasReceiver("D") {
		t.Fatal("expected HasReceiver(D) to be false")
	}
}
