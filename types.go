package fuzzyscan

import "github.com/orviska/fuzzyscan/scantypes"

// These aliases re-export the engine's core domain types from scantypes so
// callers of this package never need to import it directly, while internal
// components (extractor, scanner, cluster, batchread, refine) and drivers
// can depend on scantypes without creating an import cycle back through
// this package.
type (
	ValueType        = scantypes.ValueType
	Condition        = scantypes.Condition
	Item             = scantypes.Item
	Driver           = scantypes.Driver
	PageStatusBitmap = scantypes.PageStatusBitmap
)

const (
	I8  = scantypes.I8
	I16 = scantypes.I16
	I32 = scantypes.I32
	I64 = scantypes.I64
	U8  = scantypes.U8
	U16 = scantypes.U16
	U32 = scantypes.U32
	U64 = scantypes.U64
	F32 = scantypes.F32
	F64 = scantypes.F64
)

var (
	NewItem             = scantypes.NewItem
	NewPageStatusBitmap = scantypes.NewPageStatusBitmap

	ConditionUnchanged   = scantypes.ConditionUnchanged
	ConditionChanged     = scantypes.ConditionChanged
	ConditionIncreased   = scantypes.ConditionIncreased
	ConditionDecreased   = scantypes.ConditionDecreased
	ConditionIncreasedBy = scantypes.ConditionIncreasedBy
	ConditionDecreasedBy = scantypes.ConditionDecreasedBy
	ConditionGreaterThan = scantypes.ConditionGreaterThan
	ConditionLessThan    = scantypes.ConditionLessThan
	ConditionInRange     = scantypes.ConditionInRange
)
