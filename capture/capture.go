// Package capture provides tpiu.Source implementations for trace streams that
// have already been captured: in-memory buffers, raw binary files and the CSV
// exports of a logic analyser's asynchronous serial decoder.
package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"tpiutrace/config"
	"tpiutrace/tpiu"
)

// uartBitsPerByte is start + 8 data + stop.
const uartBitsPerByte = 10

// BytePeriod returns the time one byte occupies on an 8N1 line at baud.
// A non-positive baud yields 0 (no timing information).
func BytePeriod(baud int) float64 {
	if baud <= 0 {
		return 0
	}
	return uartBitsPerByte / float64(baud)
}

// Bytes returns a source replaying data, stamping byte i with i*period.
func Bytes(data []byte, period float64) tpiu.Source {
	samples := make([]tpiu.Sample, len(data))
	for i, b := range data {
		samples[i] = tpiu.Sample{Byte: b, Time: float64(i) * period}
	}
	return tpiu.SliceSource(samples)
}

// ReaderSource reads a raw binary trace stream. Timestamps are synthesized
// from the byte period.
type ReaderSource struct {
	r      *bufio.Reader
	period float64
	n      uint64
}

// NewReaderSource creates a source reading raw bytes from r.
func NewReaderSource(r io.Reader, period float64) *ReaderSource {
	return &ReaderSource{r: bufio.NewReader(r), period: period}
}

// Next implements tpiu.Source.
func (s *ReaderSource) Next() (tpiu.Sample, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return tpiu.Sample{}, err
	}
	sample := tpiu.Sample{Byte: b, Time: float64(s.n) * s.period}
	s.n++
	return sample, nil
}

// Open opens the capture file described by cfg.
func Open(cfg config.SourceConfig) (tpiu.Source, io.Closer, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open capture: %w", err)
	}

	switch cfg.Format {
	case config.FormatRaw:
		return NewReaderSource(f, BytePeriod(cfg.Baud)), f, nil
	case config.FormatCSV, "":
		return NewCSVSource(f), f, nil
	}

	f.Close()
	return nil, nil, fmt.Errorf("unknown capture format %q", cfg.Format)
}
