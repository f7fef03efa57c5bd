package tpiu

import (
	bitmap "github.com/boljen/go-bitmap"
)

// maxChannels is the size of the membership table. Half-words only carry
// 7-bit IDs, the upper half is kept so any byte value can index the table.
const maxChannels = 256

// ChannelSet is the membership table of channel IDs considered legitimate
// for a capture. An ID outside the set seen in a frame marks the frame as
// misaligned.
type ChannelSet struct {
	bits bitmap.Bitmap
}

// NewChannelSet returns a set holding ids.
func NewChannelSet(ids ...uint8) *ChannelSet {
	s := &ChannelSet{bits: bitmap.New(maxChannels)}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add marks id as legitimate.
func (s *ChannelSet) Add(id uint8) {
	s.bits.Set(int(id), true)
}

// Remove clears id.
func (s *ChannelSet) Remove(id uint8) {
	s.bits.Set(int(id), false)
}

// Contains reports whether id is in the set. A nil set contains nothing.
func (s *ChannelSet) Contains(id uint8) bool {
	if s == nil || len(s.bits) == 0 {
		return false
	}
	return s.bits.Get(int(id))
}

// IDs returns the members in ascending order.
func (s *ChannelSet) IDs() []uint8 {
	var ids []uint8
	for id := 0; id < maxChannels; id++ {
		if s.Contains(uint8(id)) {
			ids = append(ids, uint8(id))
		}
	}
	return ids
}

// Len returns the number of members.
func (s *ChannelSet) Len() int {
	return len(s.IDs())
}

// Clone returns an independent copy of s.
func (s *ChannelSet) Clone() *ChannelSet {
	c := NewChannelSet()
	if s != nil {
		copy(c.bits, s.bits)
	}
	return c
}
