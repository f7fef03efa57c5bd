package tpiu

import "tpiutrace/common"

// optionalID is the current channel ID carried across frames. It is unset
// until the first ID half-word of the stream has been decoded.
type optionalID struct {
	id uint8
	ok bool
}

func someID(id uint8) optionalID { return optionalID{id: id, ok: true} }

// emit filters NULL-tagged bytes and forwards everything else to the sink.
func (d *Demuxer) emit(p *Packet) error {
	if p.ID == NullID {
		d.stats.NullBytes++
		return nil
	}
	if err := d.sink.Packet(p); err != nil {
		return &IngestError{Op: OpSink, Offset: p.Offset, Err: err}
	}
	d.stats.Packets++
	return nil
}

// orphan drops a byte that has no channel ID to belong to.
func (d *Demuxer) orphan(offset uint64) {
	d.stats.OrphanedBytes++
	d.log.Logf(common.SeverityWarning, "orphaned byte at offset %d", offset)
}

// demuxFrame decodes a validated frame, delivering its data bytes, and
// returns the channel ID in effect after it.
//
// The auxiliary byte holds one bit per half-word. For a data half-word it is
// the low bit of the first data byte. For an ID half-word it selects when the
// new ID takes effect: clear, the second byte already belongs to the new ID;
// set, the second byte still belongs to the previous ID. The bit of the last
// half-word must be ignored (CoreSight Architecture Specification D4.2).
func (d *Demuxer) demuxFrame(f *frameBuffer, current optionalID) (optionalID, error) {
	aux := f.aux()
	const last = FrameSize/2 - 1

	for i := 0; i <= last; i++ {
		h := f.half(i)
		auxbit := (aux >> uint(i)) & 1
		first, second := &f.entries[2*i], &f.entries[2*i+1]

		if h.Control() {
			p := Packet{
				ID:     h.DataOrID(),
				Datum:  h.DataOrAux(),
				Time:   second.time,
				Offset: second.offset,
			}

			// The ID applies from the next frame on; the second byte is the
			// auxiliary byte and carries no data.
			if i == last {
				return someID(p.ID), nil
			}

			switch {
			case auxbit == 0:
				if err := d.emit(&p); err != nil {
					return current, err
				}
			case current.ok:
				delayed := p
				delayed.ID = current.id
				if err := d.emit(&delayed); err != nil {
					return current, err
				}
			default:
				d.orphan(p.Offset)
			}

			current = someID(p.ID)
			continue
		}

		// A frame aligned by a sync pattern may carry data before any ID has
		// been seen; those bytes cannot be attributed.
		if !current.ok {
			d.orphan(first.offset)
			if i == last {
				return current, nil
			}
			d.orphan(second.offset)
			continue
		}

		p := Packet{
			ID:     current.id,
			Datum:  h.DataOrID()<<1 | auxbit,
			Time:   first.time,
			Offset: first.offset,
		}
		if err := d.emit(&p); err != nil {
			return current, err
		}

		if i == last {
			return current, nil
		}

		p = Packet{
			ID:     current.id,
			Datum:  h.DataOrAux(),
			Time:   second.time,
			Offset: second.offset,
		}
		if err := d.emit(&p); err != nil {
			return current, err
		}
	}

	panic("tpiu: frame decode fell past the last half-word")
}
