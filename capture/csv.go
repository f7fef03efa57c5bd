package capture

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tpiutrace/tpiu"
)

// CSVSource reads the export of an asynchronous serial analyser, one decoded
// byte per row:
//
//	Time [s],Value,Parity Error,Framing Error
//	0.000012500,0xFF,,
//
// Only the first two columns are used. The header row is skipped.
type CSVSource struct {
	r      *csv.Reader
	header bool
}

// NewCSVSource creates a source reading CSV rows from r.
func NewCSVSource(r io.Reader) *CSVSource {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &CSVSource{r: cr}
}

// Next implements tpiu.Source.
func (s *CSVSource) Next() (tpiu.Sample, error) {
	for {
		record, err := s.r.Read()
		if errors.Is(err, io.EOF) {
			return tpiu.Sample{}, io.EOF
		}
		if err != nil {
			return tpiu.Sample{}, fmt.Errorf("read capture csv: %w", err)
		}

		line, _ := s.r.FieldPos(0)

		if !s.header {
			s.header = true
			if isHeader(record) {
				continue
			}
		}

		if len(record) < 2 {
			return tpiu.Sample{}, fmt.Errorf("capture csv line %d: want time and value, got %d fields", line, len(record))
		}

		t, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return tpiu.Sample{}, fmt.Errorf("capture csv line %d: bad time %q", line, record[0])
		}

		v, err := parseValue(record[1])
		if err != nil {
			return tpiu.Sample{}, fmt.Errorf("capture csv line %d: %w", line, err)
		}

		return tpiu.Sample{Byte: v, Time: t}, nil
	}
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
	return err != nil
}

// parseValue accepts 0x-prefixed hex or decimal byte values.
func parseValue(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	digits, base := s, 10
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		digits, base = s[2:], 16
	}
	v, err := strconv.ParseUint(digits, base, 8)
	if err != nil {
		return 0, fmt.Errorf("bad value %q", s)
	}
	return uint8(v), nil
}
