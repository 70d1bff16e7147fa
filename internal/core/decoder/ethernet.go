// Package decoder implements protocol decoding.
package decoder

import (
	"firestige.xyz/dissector/internal/core"
)

const (
	// Ethernet constants
	ethernetHeaderLen = 14
	macLen            = 6
)

// decodeEthernet decodes an Ethernet II header.
// Returns LinkFrame and remaining payload (offset 14 onward).
func decodeEthernet(data []byte) (core.LinkFrame, []byte, error) {
	if len(data) < ethernetHeaderLen {
		return core.LinkFrame{}, nil, core.NewDecodeError("ethernet", len(data), core.ErrTruncatedInput)
	}

	eth := core.LinkFrame{}

	// Destination MAC (6 bytes)
	copy(eth.Destination[:], data[0:macLen])

	// Source MAC (6 bytes)
	copy(eth.Source[:], data[macLen:2*macLen])

	// EtherType (2 bytes at offset 12)
	etherType, err := readUint16(data, 12)
	if err != nil {
		return core.LinkFrame{}, nil, wrap("ethernet", err)
	}
	eth.EtherType = core.EtherType(etherType)

	payload, err := tail(data, ethernetHeaderLen)
	if err != nil {
		return core.LinkFrame{}, nil, wrap("ethernet", err)
	}
	eth.Payload = payload
	return eth, payload, nil
}
