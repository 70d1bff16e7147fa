package core

import "time"

// RawPacket is one captured link-layer frame.
type RawPacket struct {
	Data           []byte    // Raw frame data
	Timestamp      time.Time // Capture timestamp
	CaptureLen     uint32    // Actual captured length
	OrigLen        uint32    // Original frame length
	InterfaceIndex int       // Network interface index
}

// DecodedPacket is the result of decoding one frame. Layers that decoded before a
// failure are kept; Err holds the failure that stopped the descent.
//
// Network, Transport and Application hold one of the header value types from
// types.go, an UnknownLayer, or nil when decoding did not reach that layer.
type DecodedPacket struct {
	Timestamp   time.Time
	CaptureLen  uint32
	OrigLen     uint32
	Link        LinkFrame
	Network     Layer
	Transport   Layer
	Application Layer
	Warnings    []error // non-fatal conditions such as ErrVersionMismatch
	Err         error
}

// Layers returns the decoded layers from the bottom up. The link layer is
// omitted when the frame was too short to hold an Ethernet header.
func (p *DecodedPacket) Layers() []Layer {
	layers := make([]Layer, 0, 4)
	if p.Link.Payload == nil {
		return layers
	}
	layers = append(layers, p.Link)
	for _, l := range []Layer{p.Network, p.Transport, p.Application} {
		if l == nil {
			break
		}
		layers = append(layers, l)
	}
	return layers
}

// Top returns the highest decoded layer, or nil if none.
func (p *DecodedPacket) Top() Layer {
	layers := p.Layers()
	if len(layers) == 0 {
		return nil
	}
	return layers[len(layers)-1]
}

// DNS returns the DNS message if the application layer decoded as one.
func (p *DecodedPacket) DNS() (DNSMessage, bool) {
	msg, ok := p.Application.(DNSMessage)
	return msg, ok
}
