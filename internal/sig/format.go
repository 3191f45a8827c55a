package sig

import (
	"scarlet/internal/value"
)

// Format describes the per-game/format properties the core needs when
// encoding or decoding against a Table. It is pure data supplied by the
// signature source; the core hardcodes nothing per game.
type Format struct {
	// Game and Language label the table for diagnostics ("th08", "ecl").
	Game     string
	Language string

	// InstrHeaderSize is the byte size of the fixed instruction header the
	// external container writes before the argument blob. Offsets in jump
	// arguments account for it.
	InstrHeaderSize int

	// HasRegisters is false for register-less formats such as dialog
	// scripts; any register operand there is a fatal statement error.
	HasRegisters bool

	// HasDiffMask is true when instructions carry a per-instruction
	// difficulty mask. Difficulty switches and guards require it.
	HasDiffMask bool

	// JumpHasTime is false for formats whose jump intrinsics carry no time
	// argument; such jumps adopt the destination's time. Bound jump
	// signatures are checked against it when the table is built.
	JumpHasTime bool

	// LabelsAsIndex makes jump offsets encode an instruction index rather
	// than a byte offset (the early stage-geometry scheme).
	LabelsAsIndex bool

	// TimelineArg0 marks timeline-style languages whose first argument is
	// packed into the instruction header. An unknown signature there
	// decodes to the reserved arg0 pseudo-argument.
	TimelineArg0 bool

	// GeneralUseRegs lists registers the flattener may use as scratch for
	// complex sub-expressions, per scalar type, in allocation order.
	GeneralUseRegs map[value.ScalarType][]value.RegID

	// FullDiffMask is the mask meaning "all difficulties" for this game
	// (low N bits set, one per difficulty level).
	FullDiffMask uint8
}

// DifficultyBit resolves a difficulty letter ('E', 'N', 'H', 'L', 'X', ...)
// to its bit in the instruction mask, scanning the game's letter order.
func (f *Format) DifficultyBit(letter byte) (uint8, bool) {
	for i := 0; i < len(difficultyLetters) && i < 8; i++ {
		if difficultyLetters[i] == letter {
			bit := uint8(1) << i
			if f.FullDiffMask != 0 && bit > f.FullDiffMask {
				return 0, false
			}
			return bit, true
		}
	}
	return 0, false
}

// difficultyLetters is the canonical letter-per-bit order shared by every
// game: Easy, Normal, Hard, Lunatic, then Extra and Overdrive when present.
const difficultyLetters = "ENHLXO"

// DifficultyMask folds a letter set like "ENH" into an instruction mask.
func (f *Format) DifficultyMask(letters string) (uint8, bool) {
	var mask uint8
	for i := 0; i < len(letters); i++ {
		bit, ok := f.DifficultyBit(letters[i])
		if !ok {
			return 0, false
		}
		mask |= bit
	}
	return mask, true
}

// DifficultyLetters renders a mask back to its letter set, ignoring bits
// outside the game's full mask.
func (f *Format) DifficultyLetters(mask uint8) string {
	full := f.FullDiffMask
	if full == 0 {
		full = 0xFF
	}
	out := make([]byte, 0, 8)
	for i := 0; i < len(difficultyLetters) && i < 8; i++ {
		bit := uint8(1) << i
		if mask&bit&full != 0 {
			out = append(out, difficultyLetters[i])
		}
	}
	return string(out)
}
