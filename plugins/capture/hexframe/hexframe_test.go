package hexframe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/dissector/internal/core"
)

func TestParseFrame(t *testing.T) {
	tests := []struct {
		in      string
		want    []byte
		wantErr bool
	}{
		{"ffff0001", []byte{0xff, 0xff, 0x00, 0x01}, false},
		{"0xFFFF0001", []byte{0xff, 0xff, 0x00, 0x01}, false},
		{"ff:ff:00:01", []byte{0xff, 0xff, 0x00, 0x01}, false},
		{" ff ff\n00-01 ", []byte{0xff, 0xff, 0x00, 0x01}, false},
		{"", nil, true},
		{"0x", nil, true},
		{"abc", nil, true},
		{"zz", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseFrame(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestHexCapturer_Init(t *testing.T) {
	c := NewHexCapturer()
	assert.ErrorIs(t, c.Init(nil), core.ErrConfigInvalid)
	assert.ErrorIs(t, c.Init(map[string]any{"frames": []string{"00", "xyz"}}), core.ErrConfigInvalid)
	assert.NoError(t, c.Init(map[string]any{"frames": []any{"0001", "0203"}}))
}

func TestHexCapturer_Capture(t *testing.T) {
	c := NewHexCapturer()
	require.NoError(t, c.Init(map[string]any{"frames": []string{"0a0b", "0c"}}))

	out := make(chan core.RawPacket, 4)
	require.NoError(t, c.Capture(context.Background(), out))
	close(out)

	var got [][]byte
	for raw := range out {
		assert.Equal(t, uint32(len(raw.Data)), raw.CaptureLen)
		assert.False(t, raw.Timestamp.IsZero())
		got = append(got, raw.Data)
	}
	assert.Equal(t, [][]byte{{0x0a, 0x0b}, {0x0c}}, got)
	assert.Equal(t, uint64(2), c.Stats().PacketsReceived)
	assert.Equal(t, "hex", c.Name())
}

func TestHexCapturer_Cancelled(t *testing.T) {
	c := NewHexCapturer()
	require.NoError(t, c.Init(map[string]any{"frames": []string{"00"}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Capture(ctx, make(chan core.RawPacket)), context.Canceled)
}
