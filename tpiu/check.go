package tpiu

// CheckByte reports whether b could be the first byte of a frame: read as
// the low byte of a half-word it must announce an ID from channels.
func CheckByte(b byte, channels *ChannelSet) bool {
	h := NewHalfWord(b, 0)
	return h.Control() && channels.Contains(h.DataOrID())
}

// CheckFrame checks a complete frame for internal consistency. The false
// positive rate depends on how crowded the ID space is: the sparser channels
// is, the less likely a misaligned frame is accepted.
//
// ID half-words must name a member of channels, and unless intermixed is set
// they may only appear as the first half-word. The NULL ID is always accepted.
// The auxiliary byte is checked like any other second byte, which is to say
// not at all.
func CheckFrame(frame *[FrameSize]byte, channels *ChannelSet, intermixed bool) bool {
	for i := 0; i < FrameSize/2; i++ {
		h := NewHalfWord(frame[2*i], frame[2*i+1])
		if !h.Control() {
			continue
		}
		id := h.DataOrID()
		if id == NullID {
			continue
		}
		if !channels.Contains(id) || (i > 0 && !intermixed) {
			return false
		}
	}
	return true
}
