package decoder

import (
	"firestige.xyz/dissector/internal/core"
)

const (
	udpHeaderLen     = 8
	icmpHeaderLen    = 8
	tcpHeaderMinLen  = 20
	tcpMinDataOffset = tcpHeaderMinLen / 4
)

// decodeUDP decodes a UDP header. The declared length is kept as read and never
// used to bound the payload; the payload is everything after the 8-byte header.
func decodeUDP(data []byte) (core.UDPHeader, []byte, error) {
	if len(data) < udpHeaderLen {
		return core.UDPHeader{}, nil, core.NewDecodeError("udp", len(data), core.ErrTruncatedInput)
	}

	var (
		udp core.UDPHeader
		err error
	)
	if udp.SrcPort, err = readUint16(data, 0); err != nil {
		return core.UDPHeader{}, nil, wrap("udp", err)
	}
	if udp.DstPort, err = readUint16(data, 2); err != nil {
		return core.UDPHeader{}, nil, wrap("udp", err)
	}
	// Length (2 bytes at offset 4) - includes header and data
	if udp.Length, err = readUint16(data, 4); err != nil {
		return core.UDPHeader{}, nil, wrap("udp", err)
	}
	if udp.Checksum, err = readUint16(data, 6); err != nil {
		return core.UDPHeader{}, nil, wrap("udp", err)
	}

	payload, err := tail(data, udpHeaderLen)
	if err != nil {
		return core.UDPHeader{}, nil, wrap("udp", err)
	}
	udp.Payload = payload
	return udp, payload, nil
}

// decodeTCP decodes a TCP header. Payload begins at DataOffset*4.
func decodeTCP(data []byte) (core.TCPHeader, []byte, error) {
	if len(data) < tcpHeaderMinLen {
		return core.TCPHeader{}, nil, core.NewDecodeError("tcp", len(data), core.ErrTruncatedInput)
	}

	var (
		tcp core.TCPHeader
		err error
	)
	if tcp.SrcPort, err = readUint16(data, 0); err != nil {
		return core.TCPHeader{}, nil, wrap("tcp", err)
	}
	if tcp.DstPort, err = readUint16(data, 2); err != nil {
		return core.TCPHeader{}, nil, wrap("tcp", err)
	}
	if tcp.Seq, err = readUint32(data, 4); err != nil {
		return core.TCPHeader{}, nil, wrap("tcp", err)
	}
	if tcp.Ack, err = readUint32(data, 8); err != nil {
		return core.TCPHeader{}, nil, wrap("tcp", err)
	}

	// Data Offset is the upper nibble of byte 12, in 32-bit words
	b12, err := readUint8(data, 12)
	if err != nil {
		return core.TCPHeader{}, nil, wrap("tcp", err)
	}
	tcp.DataOffset = b12 >> 4
	if tcp.DataOffset < tcpMinDataOffset {
		return core.TCPHeader{}, nil, core.NewDecodeError("tcp", 12, core.ErrInvalidHeaderLength)
	}
	headerLen := tcp.HeaderLen()
	if len(data) < headerLen {
		return core.TCPHeader{}, nil, core.NewDecodeError("tcp", len(data), core.ErrTruncatedInput)
	}

	if tcp.Flags, err = readUint8(data, 13); err != nil {
		return core.TCPHeader{}, nil, wrap("tcp", err)
	}
	if tcp.Window, err = readUint16(data, 14); err != nil {
		return core.TCPHeader{}, nil, wrap("tcp", err)
	}
	if tcp.Checksum, err = readUint16(data, 16); err != nil {
		return core.TCPHeader{}, nil, wrap("tcp", err)
	}
	if tcp.Urgent, err = readUint16(data, 18); err != nil {
		return core.TCPHeader{}, nil, wrap("tcp", err)
	}

	// Payload starts after TCP header (including options)
	payload, err := tail(data, headerLen)
	if err != nil {
		return core.TCPHeader{}, nil, wrap("tcp", err)
	}
	tcp.Payload = payload
	return tcp, payload, nil
}

// decodeICMP decodes the 8-byte ICMP header shared by ICMPv4 and ICMPv6.
func decodeICMP(data []byte) (core.ICMPHeader, []byte, error) {
	if len(data) < icmpHeaderLen {
		return core.ICMPHeader{}, nil, core.NewDecodeError("icmp", len(data), core.ErrTruncatedInput)
	}

	var icmp core.ICMPHeader
	typ, err := readUint8(data, 0)
	if err != nil {
		return core.ICMPHeader{}, nil, wrap("icmp", err)
	}
	icmp.Type = core.ICMPType(typ)
	if icmp.Code, err = readUint8(data, 1); err != nil {
		return core.ICMPHeader{}, nil, wrap("icmp", err)
	}
	if icmp.Checksum, err = readUint16(data, 2); err != nil {
		return core.ICMPHeader{}, nil, wrap("icmp", err)
	}
	if icmp.Rest, err = readUint32(data, 4); err != nil {
		return core.ICMPHeader{}, nil, wrap("icmp", err)
	}

	payload, err := tail(data, icmpHeaderLen)
	if err != nil {
		return core.ICMPHeader{}, nil, wrap("icmp", err)
	}
	icmp.Payload = payload
	return icmp, payload, nil
}
