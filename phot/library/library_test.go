package library

import (
	"errors"
	"math"
	"testing"

	"github.com/andrewmoore73/calibrimbore/phot/bandpass"
	"github.com/andrewmoore73/calibrimbore/phot/synth"
)

func photometer(t *testing.T, name string, center, width float64) *synth.Photometer {
	t.Helper()
	var wave, thr []float64
	for w := center - 3*width; w <= center+3*width; w += width / 25 {
		wave = append(wave, w)
		d := (w - center) / width
		thr = append(thr, math.Exp(-0.5*d*d))
	}
	b, err := bandpass.New(name, wave, thr, bandpass.SystemAB)
	if err != nil {
		t.Fatalf("band: %v", err)
	}
	p, err := synth.NewPhotometer(b, nil)
	if err != nil {
		t.Fatalf("photometer: %v", err)
	}
	return p
}

func testLibrary(t *testing.T, n int) *Library {
	t.Helper()
	grid := Grid(3500, 11000, 10)
	specs, err := Blackbody(n, 3000, 12000, grid)
	if err != nil {
		t.Fatalf("Blackbody: %v", err)
	}
	lib, err := New("g-r", specs, photometer(t, "g", 4800, 450), photometer(t, "r", 6200, 450))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return lib
}

func TestColorsSortedAndSpanning(t *testing.T) {
	lib := testLibrary(t, 24)
	tpls := lib.Templates()
	for i := 1; i < len(tpls); i++ {
		if tpls[i].Color < tpls[i-1].Color {
			t.Fatalf("templates not sorted by colour at %d", i)
		}
	}
	lo, hi := lib.ColorRange()
	// 3000 K is much redder than 12000 K.
	if hi-lo < 0.5 {
		t.Fatalf("colour span [%v, %v] too narrow for 3000..12000 K", lo, hi)
	}
	if lo > 0.1 {
		t.Fatalf("hottest template colour %v should be near or below zero", lo)
	}
}

func TestSelectWindow(t *testing.T) {
	lib := testLibrary(t, 24)
	lo, hi := lib.ColorRange()

	all, err := lib.Select(lo, hi)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(all) != lib.Len() {
		t.Fatalf("full window selected %d of %d", len(all), lib.Len())
	}

	sub, err := lib.Select(lo, lo+(hi-lo)/2)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(sub) == 0 || len(sub) >= lib.Len() {
		t.Fatalf("half window selected %d of %d", len(sub), lib.Len())
	}
	for _, tpl := range sub {
		if tpl.Color > lo+(hi-lo)/2 {
			t.Fatalf("selected colour %v outside window", tpl.Color)
		}
	}

	if _, err := lib.Select(hi+1, hi+2); !errors.Is(err, ErrEmptyWindow) {
		t.Fatalf("got %v, want ErrEmptyWindow", err)
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New("g-r", nil, nil, nil); !errors.Is(err, ErrNoTemplates) {
		t.Fatalf("got %v, want ErrNoTemplates", err)
	}
}
