package afpacket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeSize(t *testing.T) {
	tests := []struct {
		name     string
		bufferMB int
		snapLen  int
		pageSize int
	}{
		{"default snaplen", 8, 65535, 4096},
		{"small snaplen", 8, 1500, 4096},
		{"tiny snaplen", 1, 64, 4096},
		{"large pages", 64, 9000, 65536},
		{"budget below one block", 1, 65535, 4096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := recomputeSize(tt.bufferMB, tt.snapLen, tt.pageSize)
			require.NoError(t, err)

			assert.Zero(t, rs.FrameSize%tpacketAlignment, "frame aligned")
			assert.GreaterOrEqual(t, rs.FrameSize, tt.snapLen+tpacketHdrLen)
			assert.Zero(t, rs.BlockSize%tt.pageSize, "block is whole pages")
			assert.Zero(t, rs.BlockSize%rs.FrameSize, "block is whole frames")
			assert.LessOrEqual(t, rs.BlockSize, maxBlockSize)
			assert.GreaterOrEqual(t, rs.NumBlocks, 1)
			if rs.BlockSize <= tt.bufferMB<<20 {
				assert.LessOrEqual(t, rs.BlockSize*rs.NumBlocks, tt.bufferMB<<20)
			}
		})
	}
}

func TestRecomputeSizeDefaultGeometry(t *testing.T) {
	rs, err := recomputeSize(8, 65535, 4096)
	require.NoError(t, err)
	assert.Equal(t, ringSize{FrameSize: 69632, BlockSize: 69632 * 60, NumBlocks: 2}, rs)
}

func TestRecomputeSizeErrors(t *testing.T) {
	tests := []struct {
		name                        string
		bufferMB, snapLen, pageSize int
	}{
		{"zero buffer", 0, 65535, 4096},
		{"negative snaplen", 8, -1, 4096},
		{"unaligned page", 8, 65535, 4095},
		{"frame larger than block", 64, 8 << 20, 4096},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := recomputeSize(tt.bufferMB, tt.snapLen, tt.pageSize)
			assert.Error(t, err)
		})
	}
}
