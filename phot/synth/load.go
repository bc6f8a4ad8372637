package synth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedFile indicates a spectrum file violating the two-column contract.
var ErrMalformedFile = errors.New("synth: malformed spectrum file")

// LoadSpectrum reads a two-column spectrum file (wavelength in
// Angstrom, flux density in erg/s/cm^2/A). Lines starting with '#' and
// blank lines are ignored.
func LoadSpectrum(path, name string) (*Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("synth: open %s: %w", path, err)
	}
	defer f.Close()
	s, err := ParseSpectrum(f, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseSpectrum reads the two-column spectrum format from r.
func ParseSpectrum(r io.Reader, name string) (*Spectrum, error) {
	var wave, flux []float64
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: want 2 columns, got %d", ErrMalformedFile, line, len(fields))
		}
		w, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedFile, line, err)
		}
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedFile, line, err)
		}
		wave = append(wave, w)
		flux = append(flux, f)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("synth: read: %w", err)
	}
	s, err := NewSpectrum(name, wave, flux)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	return s, nil
}
