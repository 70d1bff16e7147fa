package afpacket

import (
	"fmt"
)

const (
	tpacketAlignment = 16 // TPACKET_ALIGNMENT
	tpacketHdrLen    = 52 // TPACKET3_HDRLEN, rounded
	maxBlockSize     = 4 << 20
)

// ringSize is the TPACKET_V3 ring geometry handed to afpacket.NewTPacket.
type ringSize struct {
	FrameSize int
	BlockSize int
	NumBlocks int
}

// recomputeSize derives a ring geometry for a memory budget of bufferSizeMB
// that satisfies the PACKET_MMAP alignment rules: the frame size is a multiple
// of TPACKET_ALIGNMENT, the block size is a multiple of the page size and of
// the frame size, and blocks times block size stays within the budget when
// the budget holds at least one block.
func recomputeSize(bufferSizeMB, snapLen, pageSize int) (ringSize, error) {
	if bufferSizeMB <= 0 {
		return ringSize{}, fmt.Errorf("buffer_size_mb must be positive, got %d", bufferSizeMB)
	}
	if snapLen <= 0 {
		return ringSize{}, fmt.Errorf("snap_len must be positive, got %d", snapLen)
	}
	if pageSize <= 0 || pageSize%tpacketAlignment != 0 {
		return ringSize{}, fmt.Errorf("page size must be a positive multiple of %d, got %d", tpacketAlignment, pageSize)
	}

	// Frames either divide a page or span whole pages, so the smallest block
	// that is both whole pages and whole frames is the larger of the two.
	frameSize := alignUp(tpacketHdrLen+snapLen, tpacketAlignment)
	if frameSize > pageSize {
		frameSize = alignUp(frameSize, pageSize)
	} else {
		frameSize = nextPowerOfTwo(frameSize)
		if pageSize%frameSize != 0 {
			frameSize = pageSize
		}
	}
	if frameSize > maxBlockSize {
		return ringSize{}, fmt.Errorf("snap_len %d does not fit a %d byte block", snapLen, maxBlockSize)
	}

	budget := bufferSizeMB << 20
	unit := max(frameSize, pageSize)
	blockSize := unit * max(1, min(maxBlockSize, budget)/unit)
	numBlocks := max(1, budget/blockSize)

	return ringSize{FrameSize: frameSize, BlockSize: blockSize, NumBlocks: numBlocks}, nil
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
