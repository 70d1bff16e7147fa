package decoder

import (
	"firestige.xyz/dissector/internal/core"
)

const arpFixedLen = 8

// decodeARP decodes an ARP message of any hardware/protocol address size.
// Address fields are copied out of data. The returned slice holds whatever
// follows the message (normally Ethernet padding).
func decodeARP(data []byte) (core.ARPMessage, []byte, error) {
	if len(data) < arpFixedLen {
		return core.ARPMessage{}, nil, core.NewDecodeError("arp", len(data), core.ErrTruncatedInput)
	}

	hwType, err := readUint16(data, 0)
	if err != nil {
		return core.ARPMessage{}, nil, wrap("arp", err)
	}
	protoType, err := readUint16(data, 2)
	if err != nil {
		return core.ARPMessage{}, nil, wrap("arp", err)
	}
	hwLen, err := readUint8(data, 4)
	if err != nil {
		return core.ARPMessage{}, nil, wrap("arp", err)
	}
	protoLen, err := readUint8(data, 5)
	if err != nil {
		return core.ARPMessage{}, nil, wrap("arp", err)
	}
	op, err := readUint16(data, 6)
	if err != nil {
		return core.ARPMessage{}, nil, wrap("arp", err)
	}

	msg := core.ARPMessage{
		HardwareType: core.ARPHardwareType(hwType),
		ProtocolType: core.EtherType(protoType),
		HardwareLen:  hwLen,
		ProtocolLen:  protoLen,
		Operation:    core.ARPOperation(op),
	}
	end := msg.Len()
	if end > len(data) {
		return core.ARPMessage{}, nil, core.NewDecodeError("arp", len(data), core.ErrTruncatedInput)
	}
	hl, pl := int(hwLen), int(protoLen)

	// Sender HA | Sender PA | Target HA | Target PA
	off := arpFixedLen
	fields := []struct {
		dst *[]byte
		n   int
	}{
		{&msg.SenderHardwareAddr, hl},
		{&msg.SenderProtocolAddr, pl},
		{&msg.TargetHardwareAddr, hl},
		{&msg.TargetProtocolAddr, pl},
	}
	for _, f := range fields {
		b, err := readBytes(data, off, f.n)
		if err != nil {
			return core.ARPMessage{}, nil, wrap("arp", err)
		}
		*f.dst = b
		off += f.n
	}

	rest, err := tail(data, end)
	if err != nil {
		return core.ARPMessage{}, nil, wrap("arp", err)
	}
	return msg, rest, nil
}
