// Package library holds stellar template spectra used as the fitting
// basis, each tagged with its intrinsic colour in a fixed reference
// colour (computed once at load time via synthetic photometry).
package library

import (
	"errors"
	"fmt"
	"sort"

	"github.com/andrewmoore73/calibrimbore/phot/synth"
)

var (
	// ErrNoTemplates indicates an empty template set.
	ErrNoTemplates = errors.New("library: no templates")
	// ErrEmptyWindow indicates a colour window selecting no templates.
	// Every fit treats this as fatal.
	ErrEmptyWindow = errors.New("library: colour window selects no templates")
)

// Template is a stellar spectrum with its precomputed intrinsic colour.
type Template struct {
	Spectrum *synth.Spectrum
	Color    float64
}

// Library is an immutable collection of templates sorted by colour.
type Library struct {
	templates []Template
	colorName string
}

// New computes the intrinsic colour of every spectrum through the blue
// and red photometers and returns the collection sorted by colour.
// colorName labels the colour axis (e.g. "g-r").
func New(colorName string, specs []*synth.Spectrum, blue, red *synth.Photometer) (*Library, error) {
	if len(specs) == 0 {
		return nil, ErrNoTemplates
	}
	templates := make([]Template, 0, len(specs))
	for _, s := range specs {
		c, err := synth.Color(s, blue, red)
		if err != nil {
			return nil, fmt.Errorf("library: colour of %s: %w", s.Name, err)
		}
		templates = append(templates, Template{Spectrum: s, Color: c})
	}
	sort.SliceStable(templates, func(i, j int) bool { return templates[i].Color < templates[j].Color })
	return &Library{templates: templates, colorName: colorName}, nil
}

// ColorName returns the label of the colour axis.
func (l *Library) ColorName() string { return l.colorName }

// Len returns the number of templates.
func (l *Library) Len() int { return len(l.templates) }

// Templates returns the full template set in colour order. Callers must
// not modify the returned slice.
func (l *Library) Templates() []Template { return l.templates }

// ColorRange returns the colour span of the collection.
func (l *Library) ColorRange() (lo, hi float64) {
	return l.templates[0].Color, l.templates[len(l.templates)-1].Color
}

// Select returns the templates whose intrinsic colour lies in [lo, hi].
// An empty result is a fatal construction error, not a warning.
func (l *Library) Select(lo, hi float64) ([]Template, error) {
	var out []Template
	for _, tpl := range l.templates {
		if tpl.Color >= lo && tpl.Color <= hi {
			out = append(out, tpl)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrEmptyWindow, lo, hi)
	}
	return out, nil
}
