package scantypes

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func i32bytes(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func TestItemMatchesUnchanged(t *testing.T) {
	item := NewItem(0x1000, i32bytes(5), I32)
	require.True(t, item.MatchesCondition(i32bytes(5), ConditionUnchanged()))
	require.False(t, item.MatchesCondition(i32bytes(6), ConditionUnchanged()))
}

func TestItemMatchesChanged(t *testing.T) {
	item := NewItem(0x1000, i32bytes(5), I32)
	require.True(t, item.MatchesCondition(i32bytes(6), ConditionChanged()))
	require.False(t, item.MatchesCondition(i32bytes(5), ConditionChanged()))
}

func TestItemMatchesIncreasedDecreased(t *testing.T) {
	item := NewItem(0x1000, i32bytes(5), I32)
	require.True(t, item.MatchesCondition(i32bytes(6), ConditionIncreased()))
	require.False(t, item.MatchesCondition(i32bytes(4), ConditionIncreased()))
	require.True(t, item.MatchesCondition(i32bytes(4), ConditionDecreased()))
}

func TestItemMatchesIncreasedByDecreasedBy(t *testing.T) {
	item := NewItem(0x1000, i32bytes(10), I32)
	require.True(t, item.MatchesCondition(i32bytes(15), ConditionIncreasedBy(5)))
	require.False(t, item.MatchesCondition(i32bytes(16), ConditionIncreasedBy(5)))
	require.True(t, item.MatchesCondition(i32bytes(7), ConditionDecreasedBy(3)))
}

func TestItemMatchesGreaterLessThan(t *testing.T) {
	item := NewItem(0x1000, i32bytes(10), I32)
	require.True(t, item.MatchesCondition(i32bytes(11), ConditionGreaterThan(10)))
	require.False(t, item.MatchesCondition(i32bytes(10), ConditionGreaterThan(10)))
	require.True(t, item.MatchesCondition(i32bytes(0), ConditionLessThan(1)))
}

func TestItemMatchesInRange(t *testing.T) {
	item := NewItem(0x1000, i32bytes(10), I32)
	require.True(t, item.MatchesCondition(i32bytes(50), ConditionInRange(0, 100)))
	require.False(t, item.MatchesCondition(i32bytes(200), ConditionInRange(0, 100)))
}

func TestItemWithValueRebuildsAtSameAddress(t *testing.T) {
	item := NewItem(0x2000, i32bytes(1), I32)
	updated := item.WithValue(i32bytes(9))
	require.Equal(t, item.Address, updated.Address)
	require.Equal(t, item.Type, updated.Type)
	require.Equal(t, 9.0, updated.Value)
}

func TestItemLessOrdersByAddress(t *testing.T) {
	a := NewItem(0x1000, i32bytes(0), I32)
	b := NewItem(0x2000, i32bytes(0), I32)
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
}
