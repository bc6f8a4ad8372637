package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/andrewmoore73/calibrimbore/calib"
	"github.com/andrewmoore73/calibrimbore/phot/bandpass"
)

// ErrBadFormat indicates an unreadable coefficient file.
var ErrBadFormat = errors.New("render: malformed coefficient file")

// WriteModel serializes a model as a line-oriented key-value table.
// Floats are written with enough digits to round-trip exactly.
func WriteModel(w io.Writer, m *calib.Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# composite filter calibration for %s\n", m.Target)
	fmt.Fprintf(bw, "target %s\n", m.Target)
	fmt.Fprintf(bw, "system %s\n", m.System)
	fmt.Fprintf(bw, "bands %s\n", strings.Join(m.Bands, ","))
	fmt.Fprintf(bw, "weights %s\n", joinFloats(m.Weights))
	fmt.Fprintf(bw, "color %s,%s\n", m.ColorBands[0], m.ColorBands[1])
	fmt.Fprintf(bw, "color_coeff %s\n", formatFloat(m.ColorCoeff))
	fmt.Fprintf(bw, "window %s\n", joinFloats(m.Window[:]))
	fmt.Fprintf(bw, "cubic %s\n", joinFloats(m.Cubic))
	fmt.Fprintf(bw, "r %s\n", joinFloats(m.R))
	return bw.Flush()
}

// SaveModel writes the model to a file, truncating any existing one.
func SaveModel(path string, m *calib.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteModel(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadModel parses a model written by WriteModel. Comment lines start
// with '#'; blank lines are ignored.
func ReadModel(r io.Reader) (*calib.Model, error) {
	m := &calib.Model{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, rest, ok := strings.Cut(text, " ")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: missing value", ErrBadFormat, line)
		}
		rest = strings.TrimSpace(rest)
		var err error
		switch key {
		case "target":
			m.Target = rest
		case "system":
			m.System = bandpass.ParseSystem(rest)
		case "bands":
			m.Bands = strings.Split(rest, ",")
		case "weights":
			m.Weights, err = splitFloats(rest)
		case "color":
			parts := strings.Split(rest, ",")
			if len(parts) != 2 {
				return nil, fmt.Errorf("%w: line %d: want two colour bands", ErrBadFormat, line)
			}
			m.ColorBands = [2]string{parts[0], parts[1]}
		case "color_coeff":
			m.ColorCoeff, err = strconv.ParseFloat(rest, 64)
		case "window":
			var v []float64
			if v, err = splitFloats(rest); err == nil {
				if len(v) != 2 {
					return nil, fmt.Errorf("%w: line %d: want two window edges", ErrBadFormat, line)
				}
				m.Window = [2]float64{v[0], v[1]}
			}
		case "cubic":
			m.Cubic, err = splitFloats(rest)
		case "r":
			m.R, err = splitFloats(rest)
		default:
			return nil, fmt.Errorf("%w: line %d: unknown key %q", ErrBadFormat, line, key)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadFormat, line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	return m, nil
}

// LoadModel reads a model from a coefficient file.
func LoadModel(path string) (*calib.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadModel(f)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}

func joinFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = formatFloat(x)
	}
	return strings.Join(parts, ",")
}

func splitFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
