package model

import "testing"

func TestParseLinkType(t *testing.T) {
	cases := []struct {
		in      string
		want    LinkType
		wantErr bool
	}{
		{"wired", LinkWired, false},
		{"LinkType.wired", LinkWired, false},
		{"wireless", LinkWireless, false},
		{"access_point", LinkAccessPoint, false},
		{"bogus", LinkWired, true},
	}
	for _, c := range cases {
		got, err := ParseLinkType(c.in)
		if (err != nil) != c.wantErr {
			t.Fatalf("ParseLinkType(%q): err = %v, wantErr = %v", c.in, err, c.wantErr)
		}
		if !c.wantErr && got != c.want {
			t.Fatalf("ParseLinkType(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLinkTypeString(t *testing.T) {
	if LinkWired.String() != "wired" {
		t.Fatalf("LinkWired.String() = %q", LinkWired.String())
	}
	if LinkType(99).String() == "" {
		t.Fatal("expected a non-empty fallback string for an unknown LinkType")
	}
}

func TestTimeslotsForSizeRoundsUp(t *testing.T) {
	cases := []struct {
		size, speed, want int64
	}{
		{100, 100, 8},  // 8*100/100 = 8, exact
		{100, 64, 13},  // 8*100=800, 800/64=12.5 -> 13
		{1, 1000, 1},   // 8/1000 rounds up to 1
	}
	for _, c := range cases {
		l := Link{ID: "L1", Speed: c.speed, Type: LinkWired}
		if got := l.TimeslotsForSize(c.size); got != c.want {
			t.Fatalf("TimeslotsForSize(%d) with speed %d = %d, want %d", c.size, c.speed, got, c.want)
		}
	}
}
