package progress

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAttachRejectsShortBuffer(t *testing.T) {
	c := New()
	buf := make([]byte, 16)
	require.False(t, c.Attach(buf))
	require.False(t, c.IsCancelRequested())

	c.WriteStatus(StatusSearching)
	for _, b := range buf {
		require.Zero(t, b)
	}
}

func TestAttachRejectsNil(t *testing.T) {
	c := New()
	require.False(t, c.Attach(nil))
}

func TestAttachZeroesExceptCancelFlag(t *testing.T) {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[offCancelFlag:], 1)
	binary.LittleEndian.PutUint32(buf[offProgress:], 77)

	c := New()
	require.True(t, c.Attach(buf))

	snap := c.Snapshot()
	require.EqualValues(t, 0, snap.Progress)
	require.EqualValues(t, 1, snap.CancelFlag)
}

func TestWritesObservableAtDocumentedOffsets(t *testing.T) {
	buf := make([]byte, 32)
	c := New()
	require.True(t, c.Attach(buf))

	c.WriteStatus(StatusSearching)
	c.WriteProgress(42)
	c.WriteRegionsDone(3)
	c.WriteFoundCount(1234)
	c.WriteErrorCode(ErrNone)

	require.EqualValues(t, StatusSearching, binary.LittleEndian.Uint32(buf[0:4]))
	require.EqualValues(t, 42, binary.LittleEndian.Uint32(buf[4:8]))
	require.EqualValues(t, 3, binary.LittleEndian.Uint32(buf[8:12]))
	require.EqualValues(t, 1234, binary.LittleEndian.Uint64(buf[12:20]))
	require.EqualValues(t, 0, binary.LittleEndian.Uint32(buf[28:32]))
}

func TestProgressClamped(t *testing.T) {
	buf := make([]byte, 32)
	c := New()
	c.Attach(buf)

	c.WriteProgress(-5)
	require.EqualValues(t, 0, c.Snapshot().Progress)

	c.WriteProgress(250)
	require.EqualValues(t, 100, c.Snapshot().Progress)
}

func TestCancelFlagRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	c := New()
	c.Attach(buf)

	require.False(t, c.IsCancelRequested())
	c.RequestCancel()
	require.True(t, c.IsCancelRequested())
	c.ClearCancelFlag()
	require.False(t, c.IsCancelRequested())
}

func TestDetachMakesWritesNoOps(t *testing.T) {
	buf := make([]byte, 32)
	c := New()
	c.Attach(buf)
	c.WriteProgress(50)
	c.Detach()

	c.WriteProgress(90)
	require.EqualValues(t, 50, binary.LittleEndian.Uint32(buf[4:8]))
}

func TestWriteBeforeAttachIsNoOp(t *testing.T) {
	c := New()
	c.WriteStatus(StatusSearching)
	c.WriteProgress(10)
	require.EqualValues(t, StatusIdle, c.Snapshot().Status)
}
