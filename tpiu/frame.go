package tpiu

// traceByte is a captured byte with its timestamp and 1-based stream offset.
type traceByte struct {
	b      byte
	time   float64
	offset uint64
}

// frameBuffer collects the bytes of one frame. It never grows: n counts the
// valid entries and the frame is only inspected once n == FrameSize.
type frameBuffer struct {
	entries [FrameSize]traceByte
	n       int
}

func (f *frameBuffer) reset() {
	f.n = 0
}

func (f *frameBuffer) empty() bool {
	return f.n == 0
}

// push appends a byte and reports whether the frame is complete.
func (f *frameBuffer) push(tb traceByte) bool {
	f.entries[f.n] = tb
	f.n++
	return f.n == FrameSize
}

// bytes returns the raw frame content.
func (f *frameBuffer) bytes() [FrameSize]byte {
	var raw [FrameSize]byte
	for i := range f.entries {
		raw[i] = f.entries[i].b
	}
	return raw
}

// half returns half-word i (0..7).
func (f *frameBuffer) half(i int) HalfWord {
	return NewHalfWord(f.entries[2*i].b, f.entries[2*i+1].b)
}

// aux returns the auxiliary bit vector carried by the last byte.
func (f *frameBuffer) aux() uint8 {
	return f.entries[FrameSize-1].b
}

// start returns the offset of the first byte of the frame.
func (f *frameBuffer) start() uint64 {
	return f.entries[0].offset
}

// compact scans a rejected frame for the first later byte that could start a
// frame and moves it, and everything after it, to the front. When nothing
// qualifies the buffer is emptied.
func (f *frameBuffer) compact(channels *ChannelSet) {
	f.n = 0
	for check := 1; check < FrameSize; check++ {
		if !CheckByte(f.entries[check].b, channels) {
			continue
		}
		f.n = copy(f.entries[:], f.entries[check:])
		return
	}
}
