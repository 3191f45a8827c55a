// Package codec encodes and decodes one instruction's argument blob
// against its signature. It is a single generic slot-walker driven by the
// descriptor list; nothing here is specific to any opcode or game.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"fortio.org/safecast"

	"scarlet/internal/lir"
	"scarlet/internal/sig"
)

var (
	// ErrUnknownOpcode is wrapped by Encode when an instruction has
	// neither a signature nor a pseudo-argument payload.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrArgCount is wrapped when argument count disagrees with the
	// signature.
	ErrArgCount = errors.New("argument count mismatch")
	// ErrRegisterNotAllowed is wrapped when a register operand appears in
	// a register-less format.
	ErrRegisterNotAllowed = errors.New("register not supported in this format")
)

// EncodeArgs writes the argument blob of one instruction. Labels and
// locals must already be resolved to raw arguments.
func EncodeArgs(table *sig.Table, in *lir.Instr) ([]byte, error) {
	if in.Pseudo != nil {
		// Pseudo form round-trips the original bytes untouched.
		return append([]byte(nil), in.Pseudo.Blob...), nil
	}
	s, ok := table.Resolve(in.Opcode)
	if !ok {
		return nil, fmt.Errorf("opcode %d: %w", in.Opcode, ErrUnknownOpcode)
	}
	if len(in.Args) != len(s.Slots) {
		return nil, fmt.Errorf("opcode %d: %w: signature expects %d, got %d",
			in.Opcode, ErrArgCount, len(s.Slots), len(in.Args))
	}

	out := make([]byte, 0, s.ArgsSize())
	for i, slot := range s.Slots {
		raw := in.Args[i].ExpectRaw()
		if raw.IsReg && !table.Format().HasRegisters {
			return nil, fmt.Errorf("opcode %d arg %d: %w", in.Opcode, i+1, ErrRegisterNotAllowed)
		}
		switch slot.Kind.Width() {
		case 4:
			if slot.Kind == sig.ArgPadding && raw.Bits != 0 {
				return nil, fmt.Errorf("opcode %d arg %d: nonzero padding", in.Opcode, i+1)
			}
			out = binary.LittleEndian.AppendUint32(out, raw.Bits)
		case 2:
			if raw.IsReg {
				return nil, fmt.Errorf("opcode %d arg %d: register in word-sized slot", in.Opcode, i+1)
			}
			v, err := safecast.Conv[int16](int32(raw.Bits))
			if err != nil {
				return nil, fmt.Errorf("opcode %d arg %d: value %d out of word range", in.Opcode, i+1, int32(raw.Bits))
			}
			out = binary.LittleEndian.AppendUint16(out, uint16(v))
		case 1:
			if raw.IsReg {
				return nil, fmt.Errorf("opcode %d arg %d: register in byte-sized slot", in.Opcode, i+1)
			}
			v, err := safecast.Conv[int8](int32(raw.Bits))
			if err != nil {
				return nil, fmt.Errorf("opcode %d arg %d: value %d out of byte range", in.Opcode, i+1, int32(raw.Bits))
			}
			out = append(out, byte(v))
		}
	}
	return out, nil
}

// DecodeArgs reads an argument blob against the opcode's signature. An
// unknown opcode yields the pseudo-argument form instead of failing, so
// every instruction round-trips.
func DecodeArgs(table *sig.Table, opcode uint16, blob []byte, paramMask uint16) (*lir.Instr, error) {
	s, ok := table.Resolve(opcode)
	if !ok {
		return decodePseudo(opcode, blob, paramMask), nil
	}
	if s.ArgsSize() != len(blob) {
		return nil, fmt.Errorf("opcode %d: %w: signature is %d bytes, blob is %d",
			opcode, ErrArgCount, s.ArgsSize(), len(blob))
	}

	in := &lir.Instr{Opcode: opcode, Args: make([]lir.Arg, 0, len(s.Slots))}
	off := 0
	for i, slot := range s.Slots {
		isReg := paramMask&(1<<uint(i)) != 0
		var bits uint32
		switch slot.Kind.Width() {
		case 4:
			bits = binary.LittleEndian.Uint32(blob[off:])
			off += 4
		case 2:
			bits = uint32(int32(int16(binary.LittleEndian.Uint16(blob[off:]))))
			off += 2
		case 1:
			bits = uint32(int32(int8(blob[off])))
			off++
		}
		in.Args = append(in.Args, lir.RawArgOf(lir.RawArg{Bits: bits, IsReg: isReg}))
	}
	return in, nil
}

// decodePseudo preserves an uninterpreted instruction exactly: the
// parameter mask says which dwords were registers, the blob keeps the raw
// bytes.
func decodePseudo(opcode uint16, blob []byte, paramMask uint16) *lir.Instr {
	return &lir.Instr{
		Opcode: opcode,
		Pseudo: &lir.PseudoArgs{
			Mask: paramMask,
			Blob: append([]byte(nil), blob...),
		},
	}
}

// DecodeTimelineArgs is DecodeArgs for timeline-style languages, where the
// container packs the first argument into the instruction header. When the
// signature is unknown, arg0 is preserved in the reserved pseudo-argument.
func DecodeTimelineArgs(table *sig.Table, opcode uint16, arg0 int16, blob []byte, paramMask uint16) (*lir.Instr, error) {
	if _, ok := table.Resolve(opcode); !ok {
		in := decodePseudo(opcode, blob, paramMask)
		in.Pseudo.HasArg0 = true
		in.Pseudo.Arg0 = arg0
		return in, nil
	}
	return DecodeArgs(table, opcode, blob, paramMask)
}

// InstrSize returns the encoded byte size of one instruction, header
// included. Jump offsets are measured in these units unless the format
// addresses labels by instruction index.
func InstrSize(table *sig.Table, in *lir.Instr) int {
	header := table.Format().InstrHeaderSize
	if in.Pseudo != nil {
		return header + len(in.Pseudo.Blob)
	}
	if s, ok := table.Resolve(in.Opcode); ok {
		return header + s.ArgsSize()
	}
	// Unknown signature without a pseudo payload: assume dword args.
	return header + 4*len(in.Args)
}
