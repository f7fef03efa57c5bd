// Package printer formats demultiplexed TPIU packets as text.
package printer

import (
	"fmt"
	"io"
	"strings"

	"tpiutrace/tpiu"
)

// FormatPacketLine formats one packet. The time column is left out when
// noTime is set, which keeps listings stable for comparison.
func FormatPacketLine(p *tpiu.Packet, noTime bool) string {
	if noTime {
		return fmt.Sprintf("Idx:%d; ID:%x; Data:0x%02x", p.Offset, p.ID, p.Datum)
	}
	return fmt.Sprintf("Idx:%d; Time:%.9f; ID:%x; Data:0x%02x", p.Offset, p.Time, p.ID, p.Datum)
}

// PacketWriter is a tpiu.Sink writing one line per packet.
type PacketWriter struct {
	w           io.Writer
	NoTimePrint bool
	// Filter, when set, restricts output to the IDs it contains.
	Filter *tpiu.ChannelSet
}

// NewPacketWriter creates a packet writer on w.
func NewPacketWriter(w io.Writer) *PacketWriter {
	return &PacketWriter{w: w}
}

// Packet implements tpiu.Sink.
func (pw *PacketWriter) Packet(p *tpiu.Packet) error {
	if pw.Filter != nil && !pw.Filter.Contains(p.ID) {
		return nil
	}
	_, err := fmt.Fprintln(pw.w, FormatPacketLine(p, pw.NoTimePrint))
	return err
}

// ChannelDump writes the bytes collected for each channel, one line per ID.
func ChannelDump(w io.Writer, c *tpiu.Collector) error {
	for _, id := range c.Channels() {
		if _, err := fmt.Fprintf(w, "ID:%x; [%s]\n", id, formatHexBytes(c.Data(id))); err != nil {
			return err
		}
	}
	return nil
}

func formatHexBytes(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("0x%02x", b)
	}
	return strings.Join(parts, " ")
}
