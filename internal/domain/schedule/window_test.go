package schedule

import "testing"

func TestToMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"08:30", 510},
		{"23:59", 1439},
		{"24:00", 1440},
	}
	for _, tc := range cases {
		got, err := ToMinutes(tc.in)
		if err != nil {
			t.Fatalf("ToMinutes(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ToMinutes(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestToMinutesRejectsMalformedInput(t *testing.T) {
	for _, in := range []string{"", "8", "25:00", "12:60", "ab:cd", "24:01"} {
		if _, err := ToMinutes(in); err == nil {
			t.Fatalf("ToMinutes(%q) expected error", in)
		}
	}
}

func TestNormalizedEnd(t *testing.T) {
	if got := NormalizedEnd(600, 1020); got != 1020 {
		t.Fatalf("expected same-day end 1020, got %d", got)
	}
	// 22:00-02:00 crosses midnight
	if got := NormalizedEnd(1320, 120); got != 1560 {
		t.Fatalf("expected wrapped end 1560, got %d", got)
	}
	// zero-length window also wraps to the next day
	if got := NormalizedEnd(600, 600); got != 2040 {
		t.Fatalf("expected wrapped end 2040, got %d", got)
	}
}

func TestOverlapsSymmetry(t *testing.T) {
	intervals := [][2]int{{0, 1440}, {600, 720}, {710, 800}, {720, 780}, {1320, 1560}}
	for _, a := range intervals {
		for _, b := range intervals {
			ab := Overlaps(a[0], a[1], b[0], b[1])
			ba := Overlaps(b[0], b[1], a[0], a[1])
			if ab != ba {
				t.Fatalf("overlap not symmetric for %v and %v", a, b)
			}
		}
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	// touching endpoints do not overlap
	if Overlaps(600, 720, 720, 780) {
		t.Fatal("adjacent intervals must not overlap")
	}
	if !Overlaps(600, 720, 710, 800) {
		t.Fatal("expected overlap for intersecting intervals")
	}
}

func TestMidnightWrapOverlap(t *testing.T) {
	// shift 22:00-02:00 on the extended scale
	shiftStart, shiftEnd := 1320, NormalizedEnd(1320, 120)

	// 01:00-03:00 belongs to the following day on the extended scale
	if !Overlaps(shiftStart, shiftEnd, 60+MinutesPerDay, 180+MinutesPerDay) {
		t.Fatal("22:00-02:00 must overlap 01:00-03:00")
	}
	if Overlaps(shiftStart, shiftEnd, 300+MinutesPerDay, 360+MinutesPerDay) {
		t.Fatal("22:00-02:00 must not overlap 05:00-06:00")
	}
}
