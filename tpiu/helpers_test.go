package tpiu

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"tpiutrace/common"
)

func idByte(id uint8) byte {
	return (id << 1) | 0x01
}

func dataByte(data uint8) byte {
	return data & 0xfe
}

func syncBytes() []byte {
	return []byte{0xff, 0xff, 0xff, 0x7f}
}

// frameBuilder assembles a frame one half-word at a time, collecting the
// auxiliary bits into the last byte.
type frameBuilder struct {
	raw [FrameSize]byte
	n   int
	aux byte
}

// id adds an ID change. delayed sets the auxiliary bit, giving datum to the
// previous ID.
func (b *frameBuilder) id(id, datum uint8, delayed bool) *frameBuilder {
	b.raw[2*b.n] = idByte(id)
	b.raw[2*b.n+1] = datum
	if delayed {
		b.aux |= 1 << uint(b.n)
	}
	b.n++
	return b
}

// data adds two data bytes for the current ID.
func (b *frameBuilder) data(d0, d1 uint8) *frameBuilder {
	b.raw[2*b.n] = dataByte(d0)
	b.raw[2*b.n+1] = d1
	b.aux |= (d0 & 1) << uint(b.n)
	b.n++
	return b
}

// last closes the frame with one data byte.
func (b *frameBuilder) last(d uint8) []byte {
	b.raw[14] = dataByte(d)
	b.aux |= (d & 1) << 7
	return b.finish()
}

// lastID closes the frame with an ID that applies from the next frame on.
func (b *frameBuilder) lastID(id uint8) []byte {
	b.raw[14] = idByte(id)
	return b.finish()
}

func (b *frameBuilder) finish() []byte {
	if b.n != FrameSize/2-1 {
		panic("frameBuilder: frame closed with wrong number of half-words")
	}
	b.raw[15] = b.aux
	out := make([]byte, FrameSize)
	copy(out, b.raw[:])
	return out
}

// singleIDFrame is a frame carrying fourteen bytes for id.
func singleIDFrame(id uint8, data [14]byte) []byte {
	b := &frameBuilder{}
	b.id(id, data[0], false)
	for i := 1; i < 13; i += 2 {
		b.data(data[i], data[i+1])
	}
	return b.last(data[13])
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// samples timestamps raw at one microsecond per byte.
func samples(raw []byte) []Sample {
	s := make([]Sample, len(raw))
	for i, b := range raw {
		s[i] = Sample{Byte: b, Time: float64(i+1) * 1e-6}
	}
	return s
}

type pair struct {
	ID    uint8
	Datum uint8
}

func pairs(packets []Packet) []pair {
	out := make([]pair, len(packets))
	for i, p := range packets {
		out[i] = pair{p.ID, p.Datum}
	}
	return out
}

// recorder is a Sink keeping every packet.
type recorder struct {
	packets []Packet
}

func (r *recorder) Packet(p *Packet) error {
	r.packets = append(r.packets, *p)
	return nil
}

var _ Sink = (*recorder)(nil)

func newTestDemuxer(channels ...uint8) (*Demuxer, *test.Hook) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	d := NewDemuxer(NewChannelSet(channels...))
	d.Logger = common.NewLoggerFrom(base, "tpiu")
	return d, hook
}

func run(t *testing.T, d *Demuxer, raw []byte) ([]Packet, Stats) {
	t.Helper()
	rec := &recorder{}
	stats, err := d.Run(SliceSource(samples(raw)), rec)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return rec.packets, stats
}

func hasMessage(hook *test.Hook, level logrus.Level, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}
