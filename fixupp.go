// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// Frame method values (F field of Fix Data, explicit case F=0), §4.5.
const (
	FrameSegmentIndex  = 0 // F0: Frame Datum is a SEGDEF index
	FrameGroupIndex    = 1 // F1: Frame Datum is a GRPDEF index
	FrameExternIndex   = 2 // F2: Frame Datum is an EXTDEF index
	FrameExplicitFrame = 3 // F3: invalid in TIS OMF, preserved not rejected
	FrameSameAsData    = 4 // F4: same as the data record's segment
	FrameSameAsTarget  = 5 // F5: same as the resolved target
)

// Target method values (T/P/Targt of Fix Data, explicit case T=0), §4.5.
const (
	TargetSegmentIndex       = 0 // T0: idx + displacement
	TargetGroupIndex         = 1 // T1: idx + displacement
	TargetExternIndex        = 2 // T2: idx + displacement
	TargetExplicitFrame      = 3 // T3: no idx and no displacement are read
	TargetSegmentIndexNoDisp = 4 // T4: idx, no displacement
	TargetGroupIndexNoDisp   = 5 // T5: idx, no displacement
	TargetExternIndexNoDisp  = 6 // T6: idx, no displacement
)

// FIXUP Locat Location field values (§4.5). In PharLap Easy OMF-386 mode,
// 5 means 32-bit offset and 6 means 16:32 pointer instead of the TIS
// meanings; decodeFIXUPP stores the raw code and does not reinterpret it
// by FileVariant.
const (
	LocLoByte           = 0
	LocOffset16         = 1
	LocSelector16       = 2
	LocPointer1616      = 3
	LocHiByte           = 4
	LocLoaderOffset16   = 5 // TIS meaning; PharLap: 32-bit offset
	LocOffset32         = 9
	LocPointer1632      = 11
	LocLoaderOffset32   = 13
	locPharLapPointer1632 = 6 // PharLap-only meaning of code 6
)

// ThreadSpec is one remembered FRAME or TARGET thread slot: a previously
// declared method (and, when the method needs one, an index) that a later
// short FIXUP subrecord can reuse instead of repeating it (§4.5, glossary
// "Frame / Target / Threads").
type ThreadSpec struct {
	Method   byte
	HasIndex bool
	Index    int
}

// ThreadState holds the 4 frame and 4 target thread slots live across all
// FIXUPP records of one module; THREAD subrecords redefine a slot, FIXUP
// subrecords may reference one (§4.5).
type ThreadState struct {
	Frame  [4]*ThreadSpec
	Target [4]*ThreadSpec
}

// FixupTarget is the Frame/Target specifier shared by a FIXUP subrecord and
// by MODEND's start-address specifier when the Start bit is set (§4.4
// MODEND, §4.5): both are "a FIXUP-subrecord-shaped target specifier".
type FixupTarget struct {
	FrameMethod     byte
	FrameViaThread  bool
	FrameThreadNum  byte
	FrameDatumIndex int // valid when FrameMethod requires one (F0-F2) and not via-thread

	TargetMethod     byte
	TargetViaThread  bool
	TargetThreadNum  byte
	TargetDatumIndex int // valid when the method is given explicitly (T=0)

	HasDisplacement bool
	Displacement    uint32
}

// decodeFixupTarget decodes the Fix Data byte and whatever Frame
// Datum/Target Datum/Target Displacement fields follow it, exactly the
// shape both a FIXUP subrecord's tail and MODEND's start-address specifier
// share (§4.4, §4.5).
func decodeFixupTarget(c *cursor, tbl *tables, width uint32, state *ThreadState) (FixupTarget, error) {
	fixData, err := c.u8()
	if err != nil {
		return FixupTarget{}, err
	}
	f := bits(uint32(fixData), 7, 1)
	frame := byte(bits(uint32(fixData), 4, 3))
	t := bits(uint32(fixData), 3, 1)
	p := bits(uint32(fixData), 2, 1)
	targt := byte(bits(uint32(fixData), 0, 2))

	var target FixupTarget

	if f == 0 {
		target.FrameMethod = frame
		if frame == FrameSegmentIndex || frame == FrameGroupIndex || frame == FrameExternIndex {
			idx, err := c.omfIndex()
			if err != nil {
				return FixupTarget{}, err
			}
			target.FrameDatumIndex = idx
		}
	} else {
		threadNum := frame & 0x3
		thread := state.Frame[threadNum]
		if thread == nil {
			return FixupTarget{}, newParseError(KindMalformedFixupp, "FIXUPP frame thread", nil)
		}
		target.FrameViaThread = true
		target.FrameThreadNum = threadNum
		target.FrameMethod = thread.Method
		if thread.HasIndex {
			target.FrameDatumIndex = thread.Index
		}
	}

	if t == 0 {
		method := byte(p<<2) | targt
		target.TargetMethod = method
		if method != TargetExplicitFrame {
			idx, err := c.omfIndex()
			if err != nil {
				return FixupTarget{}, err
			}
			target.TargetDatumIndex = idx
		}
	} else {
		thread := state.Target[targt]
		if thread == nil {
			return FixupTarget{}, newParseError(KindMalformedFixupp, "FIXUPP target thread", nil)
		}
		target.TargetViaThread = true
		target.TargetThreadNum = targt
		// A target thread supplies the low two method bits; P is the high bit.
		target.TargetMethod = (thread.Method & 0x3) | byte(p<<2)
		if thread.HasIndex {
			target.TargetDatumIndex = thread.Index
		}
	}

	target.HasDisplacement = p == 0 &&
		(target.TargetMethod == TargetSegmentIndex ||
			target.TargetMethod == TargetGroupIndex ||
			target.TargetMethod == TargetExternIndex)
	if target.HasDisplacement {
		disp, err := c.uWidth(width)
		if err != nil {
			return FixupTarget{}, err
		}
		target.Displacement = disp
	}

	if err := validateFixupTargetIndices(tbl, target); err != nil {
		return FixupTarget{}, err
	}
	return target, nil
}

func validateFixupTargetIndices(tbl *tables, target FixupTarget) error {
	var err error
	switch target.FrameMethod {
	case FrameSegmentIndex:
		err = tbl.checkSegment(target.FrameDatumIndex)
	case FrameGroupIndex:
		err = tbl.checkGroup(target.FrameDatumIndex)
	case FrameExternIndex:
		err = tbl.checkExtern(target.FrameDatumIndex)
	}
	if err != nil {
		return err
	}
	switch target.TargetMethod {
	case TargetSegmentIndex, TargetSegmentIndexNoDisp:
		return tbl.checkSegment(target.TargetDatumIndex)
	case TargetGroupIndex, TargetGroupIndexNoDisp:
		return tbl.checkGroup(target.TargetDatumIndex)
	case TargetExternIndex, TargetExternIndexNoDisp:
		return tbl.checkExtern(target.TargetDatumIndex)
	}
	return nil
}

func encodeFixupTarget(e *encoder, target FixupTarget, width uint32) {
	var f, t, p byte
	var frame, targt byte

	if target.FrameViaThread {
		f = 1
		frame = target.FrameThreadNum
	} else {
		f = 0
		frame = target.FrameMethod
	}

	if target.TargetViaThread {
		t = 1
		targt = target.TargetThreadNum
		p = (target.TargetMethod >> 2) & 1
	} else {
		t = 0
		p = (target.TargetMethod >> 2) & 1
		targt = target.TargetMethod & 0x3
	}

	fixData := f<<7 | (frame&0x7)<<4 | t<<3 | p<<2 | (targt & 0x3)
	e.u8(fixData)

	if f == 0 && (target.FrameMethod == FrameSegmentIndex || target.FrameMethod == FrameGroupIndex ||
		target.FrameMethod == FrameExternIndex) {
		e.omfIndex(target.FrameDatumIndex)
	}
	if t == 0 && target.TargetMethod != TargetExplicitFrame {
		e.omfIndex(target.TargetDatumIndex)
	}
	if target.HasDisplacement {
		e.uWidth(target.Displacement, width)
	}
}

// ThreadDecl is a decoded THREAD subrecord (§4.5): one byte `0 D 0
// Method:3 Thred:2`.
type ThreadDecl struct {
	IsFrame   bool // D bit
	Method    byte
	ThreadNum byte
	HasIndex  bool
	Index     int
}

// FixupDecl is a decoded FIXUP subrecord (§4.5).
type FixupDecl struct {
	SegmentRelative  bool // M bit: false is self-relative
	Location         byte
	DataRecordOffset uint16 // 10 bits
	Target           FixupTarget
}

// FixupSubrecord is one element of a FIXUPP record's body: either a THREAD
// or a FIXUP, discriminated by the high bit of its first byte (§4.5).
type FixupSubrecord struct {
	Thread *ThreadDecl
	Fixup  *FixupDecl
}

// FIXUPPBody is the body of FIXUPP (0x9C/0x9D): a sequence of THREAD and
// FIXUP subrecords (§4.5).
type FIXUPPBody struct {
	Subrecords []FixupSubrecord
}

func (FIXUPPBody) recordBody() {}

// decodeFIXUPP decodes a whole FIXUPP record body, threading THREAD state
// across subrecords. state is the module's persistent thread state (it
// survives across FIXUPP records, per §4.5) and is mutated in place.
func decodeFIXUPP(c *cursor, tbl *tables, width uint32, state *ThreadState) (FIXUPPBody, error) {
	var body FIXUPPBody
	for c.remaining() > 0 {
		first, err := c.u8()
		if err != nil {
			return FIXUPPBody{}, err
		}
		if first&0x80 == 0 {
			decl := ThreadDecl{
				IsFrame:   bits(uint32(first), 6, 1) != 0,
				Method:    byte(bits(uint32(first), 2, 3)),
				ThreadNum: byte(bits(uint32(first), 0, 2)),
			}
			if decl.Method == 0 || decl.Method == 1 || decl.Method == 2 {
				idx, err := c.omfIndex()
				if err != nil {
					return FIXUPPBody{}, err
				}
				decl.HasIndex = true
				decl.Index = idx
			}
			spec := &ThreadSpec{Method: decl.Method, HasIndex: decl.HasIndex, Index: decl.Index}
			if decl.IsFrame {
				state.Frame[decl.ThreadNum] = spec
			} else {
				state.Target[decl.ThreadNum] = spec
			}
			body.Subrecords = append(body.Subrecords, FixupSubrecord{Thread: &decl})
			continue
		}

		// FIXUP subrecord. Locat packs its bits in the opposite of the
		// usual little-endian OMF byte order: the first (lower-address)
		// byte carries the high bits (§4.5, §9 design notes — do not
		// "fix" this).
		second, err := c.u8()
		if err != nil {
			return FIXUPPBody{}, err
		}
		m := bits(uint32(first), 6, 1) != 0
		location := byte(bits(uint32(first), 2, 4))
		hiOffset := uint16(bits(uint32(first), 0, 2))
		dataOffset := hiOffset<<8 | uint16(second)

		target, err := decodeFixupTarget(c, tbl, width, state)
		if err != nil {
			return FIXUPPBody{}, err
		}

		decl := FixupDecl{
			SegmentRelative:  m,
			Location:         location,
			DataRecordOffset: dataOffset,
			Target:           target,
		}
		body.Subrecords = append(body.Subrecords, FixupSubrecord{Fixup: &decl})
	}
	return body, nil
}

func encodeFIXUPP(e *encoder, body FIXUPPBody, width uint32) {
	for _, sub := range body.Subrecords {
		if sub.Thread != nil {
			d := sub.Thread
			var first byte
			if d.IsFrame {
				first |= 1 << 6
			}
			first |= (d.Method & 0x7) << 2
			first |= d.ThreadNum & 0x3
			e.u8(first)
			if d.HasIndex {
				e.omfIndex(d.Index)
			}
			continue
		}
		d := sub.Fixup
		var first, second byte
		first = 1 << 7
		if d.SegmentRelative {
			first |= 1 << 6
		}
		first |= (d.Location & 0xF) << 2
		first |= byte(d.DataRecordOffset>>8) & 0x3
		second = byte(d.DataRecordOffset)
		e.u8(first)
		e.u8(second)
		encodeFixupTarget(e, d.Target, width)
	}
}
