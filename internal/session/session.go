// Package session wires a capture configuration to a source, a demuxer and a
// printer: one call decodes a whole capture file.
package session

import (
	"fmt"
	"io"
	"os"

	"tpiutrace/capture"
	"tpiutrace/common"
	"tpiutrace/config"
	"tpiutrace/printer"
	"tpiutrace/tpiu"
)

// Config selects the capture and how its packets are reported.
type Config struct {
	Capture     *config.Config
	Output      io.Writer     // defaults to os.Stdout
	Logger      common.Logger // defaults to a logger on os.Stderr at the configured level
	NoTimePrint bool
	Dump        bool // print per-channel data at the end instead of a packet listing
}

// Run decodes the configured capture.
func Run(cfg Config) (tpiu.Stats, error) {
	if cfg.Capture == nil {
		return tpiu.Stats{}, fmt.Errorf("no capture configured")
	}
	w := cfg.Output
	if w == nil {
		w = os.Stdout
	}
	log := cfg.Logger
	if log == nil {
		log = common.NewLogger(os.Stderr, cfg.Capture.Severity())
	}

	src, closer, err := capture.Open(cfg.Capture.Source)
	if err != nil {
		return tpiu.Stats{}, err
	}
	defer closer.Close()

	log.Logf(common.SeverityDebug, "decoding %s capture %s, channels %v",
		cfg.Capture.Source.Format, cfg.Capture.Source.Path, cfg.Capture.Channels)

	d := tpiu.NewDemuxer(cfg.Capture.ChannelSet())
	d.Intermixed = cfg.Capture.IntermixedOrDefault()
	d.Logger = log

	var (
		sink      tpiu.Sink
		collector *tpiu.Collector
	)
	if cfg.Dump {
		collector = tpiu.NewCollector()
		sink = collector
	} else {
		pw := printer.NewPacketWriter(w)
		pw.NoTimePrint = cfg.NoTimePrint
		pw.Filter = cfg.Capture.PrintFilter()
		sink = pw
	}

	stats, err := d.Run(src, sink)
	if err != nil {
		return stats, fmt.Errorf("error processing capture: %w", err)
	}

	if collector != nil {
		if err := printer.ChannelDump(w, collector); err != nil {
			return stats, fmt.Errorf("error writing dump: %w", err)
		}
	}

	return stats, nil
}
