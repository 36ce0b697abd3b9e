package scantypes

// epsilon is the absolute tolerance floatEqual allows between two decoded
// values. 64-bit integers beyond float64's 53-bit mantissa are rounded by
// Decode in steps of at least 1, so for them equality means "rounds to the
// same float64".
const epsilon = 1e-6

// Item is one baseline or refine-round result: an address, its decoded
// value, and the type it was decoded as. Immutable after construction.
type Item struct {
	Address uint64
	Value   float64
	Type    ValueType
}

// NewItem decodes raw (little-endian, exactly Type.Size() bytes) at
// construction time.
func NewItem(address uint64, raw []byte, vt ValueType) Item {
	return Item{Address: address, Value: vt.Decode(raw), Type: vt}
}

// MatchesCondition decodes currentBytes as this item's value type and
// tests the relation between the old and new value. Never fails: an
// unrecognized condition kind simply does not match.
func (it Item) MatchesCondition(currentBytes []byte, cond Condition) bool {
	newVal := it.Type.Decode(currentBytes)
	switch cond.Kind {
	case Unchanged:
		return floatEqual(newVal, it.Value)
	case Changed:
		return !floatEqual(newVal, it.Value)
	case Increased:
		return newVal > it.Value
	case Decreased:
		return newVal < it.Value
	case IncreasedBy:
		return floatEqual(newVal-it.Value, cond.Delta)
	case DecreasedBy:
		return floatEqual(it.Value-newVal, cond.Delta)
	case GreaterThan:
		return newVal > cond.Value
	case LessThan:
		return newVal < cond.Value
	case InRange:
		return newVal >= cond.Lo && newVal <= cond.Hi
	default:
		return false
	}
}

// WithValue returns a new Item at the same address and type, decoded from
// currentBytes. Used by the refiner to rebuild survivors after a match.
func (it Item) WithValue(currentBytes []byte) Item {
	return Item{Address: it.Address, Value: it.Type.Decode(currentBytes), Type: it.Type}
}

// Less orders items by address ascending, the candidate set's sole sort key.
func (it Item) Less(other Item) bool {
	return it.Address < other.Address
}

func floatEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < epsilon
}
