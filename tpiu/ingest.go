package tpiu

import (
	"errors"
	"io"

	"tpiutrace/common"
)

// Stats counts what a run has seen so far.
type Stats struct {
	Bytes           uint64 // raw bytes consumed
	ValidFrames     int    // frames accepted and demultiplexed
	InvalidFrames   int    // complete frames rejected by CheckFrame
	Packets         int    // packets delivered to the sink
	NullBytes       int    // bytes tagged with NullID and dropped
	OrphanedBytes   int    // bytes dropped for want of a channel ID
	SyncsFound      int    // sync patterns completed while searching
	Derailments     int    // sync matches abandoned while framing
	SearchesResumed int    // alignment given up after two bad frames in a row
}

// Demuxer reconstructs per-channel byte streams from a raw TPIU capture.
// A Demuxer runs one ingestion at a time and is not safe for concurrent use.
type Demuxer struct {
	// Configuration
	Channels   *ChannelSet   // IDs expected in the capture
	Intermixed bool          // frames may carry more than one ID
	Logger     common.Logger // protocol anomalies and progress; nil discards

	// State
	log      common.Logger
	channels *ChannelSet
	sink     Sink
	state    State
	frame    frameBuffer
	current  optionalID
	nvalid   int // consecutive valid frames
	offset   uint64
	stats    Stats
}

// NewDemuxer creates a demuxer for the given channels with intermixing
// allowed.
func NewDemuxer(channels *ChannelSet) *Demuxer {
	return &Demuxer{
		Channels:   channels,
		Intermixed: true,
	}
}

// Ingest runs a default demuxer over src, delivering packets to sink.
func Ingest(channels *ChannelSet, src Source, sink Sink) (Stats, error) {
	return NewDemuxer(channels).Run(src, sink)
}

func (d *Demuxer) reset(sink Sink) {
	d.log = d.Logger
	if d.log == nil {
		d.log = common.NewNoOpLogger()
	}
	// The table is fixed for the duration of the run.
	d.channels = d.Channels.Clone()
	d.sink = sink
	d.state = State{Kind: Searching}
	d.frame.reset()
	d.current = optionalID{}
	d.nvalid = 0
	d.offset = 0
	d.stats = Stats{}
}

// State returns the framing state reached by the last run.
func (d *Demuxer) State() State {
	return d.state
}

// Run consumes src until it reports io.EOF. Any other source error, and any
// sink error, stops the run and is returned as an *IngestError. The returned
// Stats cover everything processed up to that point.
func (d *Demuxer) Run(src Source, sink Sink) (Stats, error) {
	d.reset(sink)

	for {
		sample, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return d.stats, &IngestError{Op: OpSource, Offset: d.offset, Err: err}
		}

		d.offset++
		d.stats.Bytes++

		if err := d.consume(traceByte{b: sample.Byte, time: sample.Time, offset: d.offset}); err != nil {
			return d.stats, err
		}
	}

	d.log.Logf(common.SeverityInfo, "%d valid TPIU frames", d.stats.ValidFrames)
	d.log.Logf(common.SeverityDebug,
		"%d bytes, %d invalid frames, %d packets, %d null bytes, %d orphaned bytes",
		d.stats.Bytes, d.stats.InvalidFrames, d.stats.Packets, d.stats.NullBytes, d.stats.OrphanedBytes)

	return d.stats, nil
}

func (d *Demuxer) step(b byte, offset uint64) {
	prev := d.state
	d.state = nextState(prev, b, offset, d.log)

	switch {
	case prev.Kind == SearchingSyncing && d.state.Kind == Framing:
		d.stats.SyncsFound++
	case prev.Kind == FramingSyncing && d.state.Kind == Searching:
		d.stats.Derailments++
	}
}

func (d *Demuxer) consume(tb traceByte) error {
	switch d.state.Kind {
	case SearchingSyncing, FramingSyncing:
		d.step(tb.b, tb.offset)
		return nil

	case Searching:
		if d.frame.empty() {
			d.step(tb.b, tb.offset)
			if d.state.Kind == SearchingSyncing {
				return nil
			}
			if !CheckByte(tb.b, d.channels) {
				return nil
			}
		}
		if !d.frame.push(tb) {
			return nil
		}
		return d.searchFrame()

	case Framing:
		if d.frame.empty() {
			d.step(tb.b, tb.offset)
			if d.state.Kind == FramingSyncing {
				return nil
			}
		}
		if !d.frame.push(tb) {
			return nil
		}
		return d.framedFrame()
	}

	panic("tpiu: unknown framing state " + d.state.String())
}

// searchFrame handles a complete frame collected while unaligned.
func (d *Demuxer) searchFrame() error {
	raw := d.frame.bytes()
	if CheckFrame(&raw, d.channels, d.Intermixed) {
		d.log.Logf(common.SeverityInfo, "valid TPIU frame starting at offset %d", d.frame.start())
		d.stats.ValidFrames++
		d.state = State{Kind: Framing}
		d.nvalid = 1
		current, err := d.demuxFrame(&d.frame, d.current)
		d.current = current
		d.frame.reset()
		return err
	}

	// Not a frame; look inside it for another plausible start.
	d.stats.InvalidFrames++
	d.frame.compact(d.channels)
	return nil
}

// framedFrame handles a complete frame collected while aligned. One bad
// frame is tolerated; two in a row drop back to searching.
func (d *Demuxer) framedFrame() error {
	defer d.frame.reset()

	raw := d.frame.bytes()
	if !CheckFrame(&raw, d.channels, d.Intermixed) {
		d.stats.InvalidFrames++
		if d.nvalid == 0 {
			d.log.Warning("two consecutive invalid frames; resuming search")
			d.stats.SearchesResumed++
			d.state = State{Kind: Searching}
			return nil
		}

		plural := "s"
		if d.nvalid == 1 {
			plural = ""
		}
		d.log.Logf(common.SeverityWarning, "after %d frame%s, invalid frame at offset %d",
			d.nvalid, plural, d.frame.start())
		d.nvalid = 0
		return nil
	}

	d.nvalid++
	d.stats.ValidFrames++
	current, err := d.demuxFrame(&d.frame, d.current)
	d.current = current
	return err
}
