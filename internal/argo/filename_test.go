package argo

import "testing"

func TestParseProfileFilename(t *testing.T) {
	cases := []struct {
		file     string
		platform string
		cycle    string
	}{
		{"aoml/13857/profiles/R13857_001.nc", "13857", "001"},
		{"coriolis/6902746/profiles/D6902746_042.nc", "6902746", "042"},
		{"coriolis/6902746/profiles/D6902746_042D.nc", "6902746", "042"},
		{"aoml/5906439/profiles/BR5906439_012.nc", "5906439", "012"},
		{"csio/2902754/profiles/SD2902754_003.nc", "2902754", "003"},
		{"weird/noseparator.nc", "", ""},
		{"weird/trailing_.nc", "", ""},
	}

	for _, tc := range cases {
		platform, cycle := ParseProfileFilename(tc.file)
		if platform != tc.platform || cycle != tc.cycle {
			t.Errorf("ParseProfileFilename(%q) = (%q, %q), want (%q, %q)",
				tc.file, platform, cycle, tc.platform, tc.cycle)
		}
	}
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{North: 55, South: 40, East: 65, West: 45}

	// Boundary values are included (closed intervals).
	if !b.Contains(40, 45) || !b.Contains(55, 65) {
		t.Error("boundary points should be contained")
	}
	if !b.Contains(50, 60) {
		t.Error("interior point should be contained")
	}
	if b.Contains(39.999, 60) || b.Contains(50, 65.001) {
		t.Error("points outside the box should not be contained")
	}

	// West > East matches nothing; no antimeridian wraparound.
	inv := Bounds{North: 10, South: -10, East: -170, West: 170}
	if inv.Contains(0, 175) || inv.Contains(0, -175) {
		t.Error("inverted east/west must not match")
	}
}
