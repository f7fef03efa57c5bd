package capture

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tpiutrace/config"
	"tpiutrace/tpiu"
)

func drain(t *testing.T, src tpiu.Source) []tpiu.Sample {
	t.Helper()
	var out []tpiu.Sample
	for {
		s, err := src.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		out = append(out, s)
	}
}

func TestBytePeriod(t *testing.T) {
	if got := BytePeriod(1000000); got != 10e-6 {
		t.Errorf("BytePeriod(1000000) = %v, want 10us", got)
	}
	if got := BytePeriod(0); got != 0 {
		t.Errorf("BytePeriod(0) = %v, want 0", got)
	}
}

func TestBytes(t *testing.T) {
	got := drain(t, Bytes([]byte{0xff, 0x7f}, 0.5))
	want := []tpiu.Sample{{Byte: 0xff, Time: 0}, {Byte: 0x7f, Time: 0.5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Bytes() mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderSource(t *testing.T) {
	got := drain(t, NewReaderSource(bytes.NewReader([]byte{1, 2, 3}), 0.25))
	want := []tpiu.Sample{{Byte: 1, Time: 0}, {Byte: 2, Time: 0.25}, {Byte: 3, Time: 0.5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReaderSource mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVSource(t *testing.T) {
	const data = `Time [s],Value,Parity Error,Framing Error
0.000010000,0xFF,,
0.000015000,0x7F,,
0.000020000,3,,Error
`
	got := drain(t, NewCSVSource(strings.NewReader(data)))
	want := []tpiu.Sample{
		{Byte: 0xff, Time: 0.00001},
		{Byte: 0x7f, Time: 0.000015},
		{Byte: 0x03, Time: 0.00002},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CSVSource mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVSourceWithoutHeader(t *testing.T) {
	got := drain(t, NewCSVSource(strings.NewReader("1.5,0x10\n2.5,0x11\n")))
	if len(got) != 2 || got[0].Byte != 0x10 || got[1].Time != 2.5 {
		t.Errorf("CSVSource without header = %+v", got)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want uint8
		ok   bool
	}{
		{"0x10", 0x10, true},
		{"0X1f", 0x1f, true},
		{" 255 ", 255, true},
		{"010", 10, true}, // zero padding is still decimal
		{"0", 0, true},
		{"0x", 0, false},
		{"256", 0, false},
		{"0b1", 0, false},
		{"0o17", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseValue(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("parseValue(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseValue(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCSVSourceErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad time", "Time,Value\n0.1,0x01\nsoon,0x02\n", "line 3: bad time"},
		{"bad value", "Time,Value\n0.1,0x100\n", "line 2: bad value"},
		{"short row", "Time,Value\n0.1\n", "line 2: want time and value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewCSVSource(strings.NewReader(tt.data))
			var err error
			for err == nil {
				_, err = src.Next()
			}
			if errors.Is(err, io.EOF) {
				t.Fatal("reached EOF, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "swo.bin")
	if err := os.WriteFile(raw, []byte{0xaa, 0xbb}, 0o644); err != nil {
		t.Fatal(err)
	}
	csvPath := filepath.Join(dir, "swo.csv")
	if err := os.WriteFile(csvPath, []byte("Time [s],Value\n0.5,0xaa\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, c, err := Open(config.SourceConfig{Format: config.FormatRaw, Path: raw, Baud: 10})
	if err != nil {
		t.Fatalf("Open(raw) error = %v", err)
	}
	got := drain(t, src)
	c.Close()
	if diff := cmp.Diff([]tpiu.Sample{{Byte: 0xaa, Time: 0}, {Byte: 0xbb, Time: 1}}, got); diff != "" {
		t.Errorf("raw capture mismatch (-want +got):\n%s", diff)
	}

	src, c, err = Open(config.SourceConfig{Format: config.FormatCSV, Path: csvPath})
	if err != nil {
		t.Fatalf("Open(csv) error = %v", err)
	}
	got = drain(t, src)
	c.Close()
	if diff := cmp.Diff([]tpiu.Sample{{Byte: 0xaa, Time: 0.5}}, got); diff != "" {
		t.Errorf("csv capture mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := Open(config.SourceConfig{Format: "vcd", Path: raw}); err == nil {
		t.Error("Open() with unknown format succeeded")
	}
	if _, _, err := Open(config.SourceConfig{Format: config.FormatRaw, Path: filepath.Join(dir, "nope")}); err == nil {
		t.Error("Open() of a missing file succeeded")
	}
}
