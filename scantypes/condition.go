package scantypes

// ConditionKind is the closed set of relational tests a refine round can
// apply to a candidate's old and new values.
type ConditionKind int

const (
	Unchanged ConditionKind = iota
	Changed
	Increased
	Decreased
	IncreasedBy
	DecreasedBy
	GreaterThan
	LessThan
	InRange
)

// Condition is a tagged relational test. Only the fields relevant to Kind
// are populated by the constructors below.
type Condition struct {
	Kind  ConditionKind
	Delta float64
	Value float64
	Lo    float64
	Hi    float64
}

func ConditionUnchanged() Condition { return Condition{Kind: Unchanged} }
func ConditionChanged() Condition   { return Condition{Kind: Changed} }
func ConditionIncreased() Condition { return Condition{Kind: Increased} }
func ConditionDecreased() Condition { return Condition{Kind: Decreased} }

func ConditionIncreasedBy(delta float64) Condition {
	return Condition{Kind: IncreasedBy, Delta: delta}
}

func ConditionDecreasedBy(delta float64) Condition {
	return Condition{Kind: DecreasedBy, Delta: delta}
}

func ConditionGreaterThan(v float64) Condition { return Condition{Kind: GreaterThan, Value: v} }
func ConditionLessThan(v float64) Condition    { return Condition{Kind: LessThan, Value: v} }
func ConditionInRange(lo, hi float64) Condition {
	return Condition{Kind: InRange, Lo: lo, Hi: hi}
}
