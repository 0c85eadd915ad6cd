package astro

import (
	"math"
	"testing"

	"AstroChart/internal/domain/models"
)

func TestSignOfAndDegree(t *testing.T) {
	signs := models.Signs()
	for l := 0.0; l < 360; l += 0.25 {
		want := signs[int(math.Floor(l/30))%12]
		if got := SignOf(l); got != want {
			t.Fatalf("SignOf(%v) = %v, want %v", l, got, want)
		}
		if got, want := DegreeInSign(l), math.Mod(l, 30); got != want {
			t.Fatalf("DegreeInSign(%v) = %v, want %v", l, got, want)
		}
	}

	if SignOf(359.9999) != models.Pisces {
		t.Fatalf("359.9999 should be Pisces")
	}
	if SignOf(30) != models.Taurus {
		t.Fatalf("30 should start Taurus")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[float64]float64{
		0:      0,
		360:    0,
		370:    10,
		-10:    350,
		-360:   0,
		725.5:  5.5,
		-1e-15: 0,
	}
	for in, want := range cases {
		got := Normalize(in)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("Normalize(%v) = %v, want %v", in, got, want)
		}
		if got < 0 || got >= 360 {
			t.Fatalf("Normalize(%v) = %v out of range", in, got)
		}
	}
}

var wrapAtFirstHouse = [12]float64{350, 20, 50, 80, 110, 140, 170, 200, 230, 260, 290, 320}
var wrapMidChart = [12]float64{200, 230, 260, 290, 320, 350, 20, 50, 80, 110, 140, 170}

func TestHouseOf(t *testing.T) {
	cases := []struct {
		name  string
		cusps [12]float64
		lon   float64
		want  int
	}{
		{"on first cusp", wrapAtFirstHouse, 350, 1},
		{"after first cusp before 360", wrapAtFirstHouse, 355, 1},
		{"past 360 in first house", wrapAtFirstHouse, 5, 1},
		{"just below second cusp", wrapAtFirstHouse, 19.9999, 1},
		{"on second cusp", wrapAtFirstHouse, 20, 2},
		{"end of twelfth", wrapAtFirstHouse, 349.9999, 12},
		{"on twelfth cusp", wrapAtFirstHouse, 320, 12},
		{"zero in first house", wrapAtFirstHouse, 0, 1},
		{"wrap inside sixth", wrapMidChart, 355, 6},
		{"wrap inside sixth past zero", wrapMidChart, 10, 6},
		{"on seventh cusp", wrapMidChart, 20, 7},
		{"end of twelfth mid wrap", wrapMidChart, 199.999, 12},
		{"on first cusp mid wrap", wrapMidChart, 200, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := HouseOf(tc.lon, tc.cusps)
			if !ok || got != tc.want {
				t.Fatalf("HouseOf(%v) = %d,%v want %d", tc.lon, got, ok, tc.want)
			}
		})
	}
}

// Every longitude falls in exactly one arc.
func TestHouseOf_TotalPartition(t *testing.T) {
	for _, cusps := range [][12]float64{wrapAtFirstHouse, wrapMidChart, {0, 30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330}} {
		for l := 0.0; l < 360; l += 0.125 {
			matches := 0
			for i := 0; i < 12; i++ {
				if inArc(l, cusps[i], cusps[(i+1)%12]) {
					matches++
				}
			}
			if matches != 1 {
				t.Fatalf("longitude %v in %d arcs", l, matches)
			}
			if _, ok := HouseOf(l, cusps); !ok {
				t.Fatalf("longitude %v has no house", l)
			}
		}
	}
}

func inArc(l, cur, next float64) bool {
	if next < cur {
		next += 360
	}
	if l < cur {
		l += 360
	}
	return cur <= l && l < next
}
