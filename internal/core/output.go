package core

import "time"

// OutputPacket is what processors and reporters see for one frame: the decode
// result plus the flat labels derived from it.
type OutputPacket struct {
	SessionID  string
	Seq        uint64 // capture order within the session, starting at 1
	Timestamp  time.Time
	CaptureLen uint32
	OrigLen    uint32
	Layers     []string // layer names, bottom up
	Labels     Labels
	Warnings   []string
	Error      string // empty when every reachable layer decoded
	Decoded    *DecodedPacket
}
