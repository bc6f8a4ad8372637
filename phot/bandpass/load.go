package bandpass

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedFile indicates a bandpass file violating the two-column contract.
var ErrMalformedFile = errors.New("bandpass: malformed bandpass file")

// Load reads a two-column bandpass file (wavelength, transmission) and
// validates it. Lines starting with '#' and blank lines are ignored.
func Load(path, name string, system System) (*Bandpass, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bandpass: open %s: %w", path, err)
	}
	defer f.Close()
	b, err := Parse(f, name, system)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse reads the two-column bandpass format from r.
func Parse(r io.Reader, name string, system System) (*Bandpass, error) {
	var wave, thr []float64
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
		t, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedFile, line, err)
		}
		wave = append(wave, w)
		thr = append(thr, t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("bandpass: read: %w", err)
	}
	b, err := New(name, wave, thr, system)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	return b, nil
}
