package tpiu

import (
	"io"
	"sort"
)

// Sample is one captured byte and its capture time in seconds.
type Sample struct {
	Byte uint8
	Time float64
}

// Packet is one demultiplexed data byte.
type Packet struct {
	ID     uint8   // channel (trace source) ID
	Datum  uint8   // reconstructed data byte
	Offset uint64  // 1-based offset of the carrying byte in the raw stream
	Time   float64 // capture time of the carrying byte
}

// Source supplies the raw trace stream one byte at a time. Next returns
// io.EOF once the stream is exhausted; any other error aborts ingestion.
type Source interface {
	Next() (Sample, error)
}

// Sink receives decoded packets in increasing offset order. Returning an
// error aborts ingestion, which is also how a sink stops a run early.
type Sink interface {
	Packet(p *Packet) error
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() (Sample, error)

// Next calls f.
func (f SourceFunc) Next() (Sample, error) { return f() }

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(p *Packet) error

// Packet calls f.
func (f SinkFunc) Packet(p *Packet) error { return f(p) }

// MultiSink delivers every packet to each sink in turn, stopping at the
// first failure.
func MultiSink(sinks ...Sink) Sink {
	return SinkFunc(func(p *Packet) error {
		for _, s := range sinks {
			if err := s.Packet(p); err != nil {
				return err
			}
		}
		return nil
	})
}

// Collector is a Sink that accumulates the data bytes of each channel.
type Collector struct {
	data    map[uint8][]byte
	packets int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{data: make(map[uint8][]byte)}
}

// Packet implements Sink.
func (c *Collector) Packet(p *Packet) error {
	c.data[p.ID] = append(c.data[p.ID], p.Datum)
	c.packets++
	return nil
}

// Data returns the bytes collected for id.
func (c *Collector) Data(id uint8) []byte {
	return c.data[id]
}

// Channels returns the IDs that received data, in ascending order.
func (c *Collector) Channels() []uint8 {
	ids := make([]uint8, 0, len(c.data))
	for id := range c.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Packets returns the number of packets received.
func (c *Collector) Packets() int {
	return c.packets
}

// sliceSource serves samples from memory.
type sliceSource struct {
	samples []Sample
	pos     int
}

// SliceSource returns a Source replaying samples.
func SliceSource(samples []Sample) Source {
	return &sliceSource{samples: samples}
}

func (s *sliceSource) Next() (Sample, error) {
	if s.pos >= len(s.samples) {
		return Sample{}, io.EOF
	}
	sample := s.samples[s.pos]
	s.pos++
	return sample, nil
}
