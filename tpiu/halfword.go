package tpiu

import "fmt"

// HalfWord is one of the eight two-byte units of a frame. The first byte of
// the pair is the low byte.
//
//	bit 0      F: 1 = ID change, 0 = data
//	bits 7:1   new ID (F=1) or data bits 7:1 (F=0)
//	bits 15:8  data byte
type HalfWord uint16

// NewHalfWord builds a half-word from its two bytes in stream order.
func NewHalfWord(first, second byte) HalfWord {
	return HalfWord(uint16(second)<<8 | uint16(first))
}

// Control reports whether the half-word announces an ID change.
func (h HalfWord) Control() bool {
	return h&0x1 != 0
}

// DataOrID returns bits 7:1: the new ID when Control is set, otherwise the
// top seven bits of a data byte whose low bit lives in the auxiliary byte.
func (h HalfWord) DataOrID() uint8 {
	return uint8(h>>1) & 0x7f
}

// DataOrAux returns the second byte of the pair.
func (h HalfWord) DataOrAux() uint8 {
	return uint8(h >> 8)
}

func (h HalfWord) String() string {
	if h.Control() {
		return fmt.Sprintf("ID:0x%02x; Data:0x%02x", h.DataOrID(), h.DataOrAux())
	}
	return fmt.Sprintf("Data:0x%02x 0x%02x", h.DataOrID()<<1, h.DataOrAux())
}
