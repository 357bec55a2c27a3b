package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferAppendAndReadLength(t *testing.T) {
	b := NewBuffer(0)
	b.AppendUint32BE(12)
	b.AppendByte(11)
	b.AppendBytes([]byte{0x05})

	length, err := b.ReadLengthBE()
	require.NoError(t, err)
	require.EqualValues(t, 12, length)

	cmd, err := b.Command()
	require.NoError(t, err)
	require.EqualValues(t, 0x05, cmd)
}

func TestBufferReadLengthTooShort(t *testing.T) {
	b := NewBuffer(0)
	b.AppendBytes([]byte{0, 0, 1})
	_, err := b.ReadLengthBE()
	require.Error(t, err)
}

func TestBufferSplitOffFrontPreservesOrder(t *testing.T) {
	b := NewBuffer(0)
	b.AppendBytes([]byte{1, 2, 3, 4, 5})

	require.NoError(t, b.SplitOffFront(2))
	require.Equal(t, []byte{3, 4, 5}, b.Bytes())

	require.Error(t, b.SplitOffFront(10))
}

func TestBufferZero(t *testing.T) {
	b := NewBuffer(0)
	b.AppendBytes([]byte{1, 2, 3})
	b.Zero()
	for _, v := range b.Bytes() {
		require.Zero(t, v)
	}
}

func TestSecretBytesZero(t *testing.T) {
	s := NewSecretBytes([]byte{9, 9, 9})
	s.Zero()
	require.Equal(t, []byte{0, 0, 0}, s.Bytes())

	var nilSecret *SecretBytes
	require.NotPanics(t, func() { nilSecret.Zero() })
	require.Nil(t, nilSecret.Bytes())
	require.Zero(t, nilSecret.Len())
}
