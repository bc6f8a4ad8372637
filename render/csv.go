package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/andrewmoore73/calibrimbore/calib"
	"github.com/andrewmoore73/calibrimbore/phot/bandpass"
)

// WriteModelCSV serializes a model as CSV records. Each record starts
// with a key field followed by its values, so list-valued keys carry a
// variable number of fields.
func WriteModelCSV(w io.Writer, m *calib.Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	records := [][]string{
		{"target", m.Target},
		{"system", m.System.String()},
		append([]string{"bands"}, m.Bands...),
		append([]string{"weights"}, floatFields(m.Weights)...),
		{"color", m.ColorBands[0], m.ColorBands[1]},
		{"color_coeff", formatFloat(m.ColorCoeff)},
		append([]string{"window"}, floatFields(m.Window[:])...),
		append([]string{"cubic"}, floatFields(m.Cubic)...),
		append([]string{"r"}, floatFields(m.R)...),
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// SaveModelCSV writes the model to a CSV file, truncating any existing one.
func SaveModelCSV(path string, m *calib.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteModelCSV(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadModelCSV parses a model written by WriteModelCSV.
func ReadModelCSV(r io.Reader) (*calib.Model, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	m := &calib.Model{}
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
		}
		line++
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: record %d: missing value", ErrBadFormat, line)
		}
		key, values := record[0], record[1:]
		switch key {
		case "target":
			m.Target = values[0]
		case "system":
			m.System = bandpass.ParseSystem(values[0])
		case "bands":
			m.Bands = append([]string(nil), values...)
		case "weights":
			m.Weights, err = parseFields(values)
		case "color":
			if len(values) != 2 {
				return nil, fmt.Errorf("%w: record %d: want two colour bands", ErrBadFormat, line)
			}
			m.ColorBands = [2]string{values[0], values[1]}
		case "color_coeff":
			m.ColorCoeff, err = strconv.ParseFloat(values[0], 64)
		case "window":
			var v []float64
			if v, err = parseFields(values); err == nil {
				if len(v) != 2 {
					return nil, fmt.Errorf("%w: record %d: want two window edges", ErrBadFormat, line)
				}
				m.Window = [2]float64{v[0], v[1]}
			}
		case "cubic":
			m.Cubic, err = parseFields(values)
		case "r":
			m.R, err = parseFields(values)
		default:
			return nil, fmt.Errorf("%w: record %d: unknown key %q", ErrBadFormat, line, key)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrBadFormat, line, err)
		}
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	return m, nil
}

// LoadModelCSV reads a model from a CSV coefficient file.
func LoadModelCSV(path string) (*calib.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadModelCSV(f)
}

func floatFields(v []float64) []string {
	out := make([]string, len(v))
	for i, x := range v {
		out[i] = formatFloat(x)
	}
	return out
}

func parseFields(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
