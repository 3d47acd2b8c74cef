package geospatial

import (
	"math"
	"testing"
)

func TestHaversine_OneDegreeLatitude(t *testing.T) {
	d := Haversine(40, -74, 41, -74)
	if math.Abs(d-111195) > 100 {
		t.Errorf("expected ~111195 m, got %.0f", d)
	}
}

func TestBoxAreaKm2(t *testing.T) {
	// 1x1 degree at the equator is roughly 12 364 km².
	area := BoxAreaKm2(0, 1, 0, 1)
	if math.Abs(area-12364) > 10 {
		t.Errorf("expected ~12364 km², got %.1f", area)
	}

	// Same box further north covers less ground.
	if north := BoxAreaKm2(60, 61, 0, 1); north >= area {
		t.Errorf("expected smaller area at 60N, got %.1f >= %.1f", north, area)
	}
}

func TestBoxAreaKm2_WholeEarth(t *testing.T) {
	area := BoxAreaKm2(-90, 90, -180, 180)
	want := 4 * math.Pi * earthRadiusKm * earthRadiusKm
	if math.Abs(area-want)/want > 1e-9 {
		t.Errorf("expected %.0f, got %.0f", want, area)
	}
}

func TestBoxDimensions(t *testing.T) {
	w, h := BoxDimensions(0, 1, 0, 1)
	if math.Abs(w-h) > 1 {
		t.Errorf("expected square box at equator, got %.0f x %.0f", w, h)
	}
}
