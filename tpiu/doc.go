// Package tpiu implements the ARM CoreSight TPIU frame demultiplexer.
//
// A TPIU multiplexes the output of several trace sources (ITM stimulus ports,
// DWT, ETM) into 16-byte frames. Each frame carries eight half-words; a
// half-word either announces a new source ID or holds two data bytes for the
// current ID, and the last byte of the frame restores the low bits the ID
// markers displaced. Frame alignment is established by the 4-byte
// synchronization pattern FF FF FF 7F.
//
// The Demuxer pulls timestamped bytes from a Source, finds and keeps frame
// alignment, validates each frame against the set of channel IDs expected in
// the capture, and hands the reconstructed per-channel bytes to a Sink.
package tpiu

// FrameSize is the size of a TPIU frame in bytes
const FrameSize = 16

// NullID is the reserved source ID for filler data; bytes tagged with it are
// never delivered.
const NullID uint8 = 0

// syncPattern is the full-frame synchronization sequence (0x7FFFFFFF little endian).
var syncPattern = [4]byte{0xff, 0xff, 0xff, 0x7f}

// SyncPattern returns a copy of the full-frame synchronization sequence.
func SyncPattern() [4]byte {
	return syncPattern
}
