package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Mapfile / signature-table construction.
	MapInfo           Code = 1000
	MapBadSource      Code = 1001
	MapBadSignature   Code = 1002
	MapBadIntrinsic   Code = 1003
	MapEnumConflict   Code = 1004
	MapDuplicateAlias Code = 1005

	// Argument codec.
	CodecInfo               Code = 2000
	CodecUnknownOpcode      Code = 2001
	CodecArgCountMismatch   Code = 2002
	CodecRegisterNotAllowed Code = 2003
	CodecBlobSizeMismatch   Code = 2004
	CodecTrailingBytes      Code = 2005
	CodecBadStringArg       Code = 2006

	// Flattening (structured -> linear).
	FlatInfo                Code = 3000
	FlatBreakOutsideLoop    Code = 3001
	FlatIntrinsicNotInTable Code = 3002
	FlatDuplicateLabel      Code = 3003
	FlatUndefinedLabel      Code = 3004
	FlatScratchExhausted    Code = 3005
	FlatDifficultyNotInFmt  Code = 3006
	FlatTimeNotInFmt        Code = 3007
	FlatAliasCollision      Code = 3008
	FlatUnknownInstruction  Code = 3009
	FlatArgTypeMismatch     Code = 3010
	FlatBadDiffSwitch       Code = 3011

	// Structuring (linear -> structured). Structuring itself never
	// hard-fails; these cover malformed inputs only.
	StructInfo         Code = 4000
	StructBadJumpArg   Code = 4001
	StructDanglingJump Code = 4002
)

func (c Code) String() string {
	return fmt.Sprintf("SC%04d", uint16(c))
}
