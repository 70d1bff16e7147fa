package decoder

import (
	"net/netip"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"firestige.xyz/dissector/internal/core"
)

const (
	ipv4HeaderMinLen = ipv4.HeaderLen // 20
	ipv6HeaderLen    = ipv6.HeaderLen // 40

	ipv4MinIHL = ipv4HeaderMinLen / 4
)

// decodeIPv4 decodes an IPv4 header.
// Returns IPv4Header and the payload from offset IHL*4 to the end of data.
// A version nibble other than 4 is not an error here; the caller records it.
func decodeIPv4(data []byte) (core.IPv4Header, []byte, error) {
	b0, err := readUint8(data, 0)
	if err != nil {
		return core.IPv4Header{}, nil, wrap("ipv4", err)
	}

	ip := core.IPv4Header{
		Version: b0 >> 4,
		IHL:     b0 & 0x0F,
	}

	// IHL (Internet Header Length) is in 32-bit words
	if ip.IHL < ipv4MinIHL {
		return core.IPv4Header{}, nil, core.NewDecodeError("ipv4", 0, core.ErrInvalidHeaderLength)
	}
	headerLen := ip.HeaderLen()
	if len(data) < headerLen {
		return core.IPv4Header{}, nil, core.NewDecodeError("ipv4", len(data), core.ErrTruncatedInput)
	}

	if ip.TOS, err = readUint8(data, 1); err != nil {
		return core.IPv4Header{}, nil, wrap("ipv4", err)
	}
	if ip.TotalLength, err = readUint16(data, 2); err != nil {
		return core.IPv4Header{}, nil, wrap("ipv4", err)
	}
	if ip.ID, err = readUint16(data, 4); err != nil {
		return core.IPv4Header{}, nil, wrap("ipv4", err)
	}

	// Flags (top 3 bits) and Fragment Offset (low 13 bits) share bytes 6-7
	flagsOffset, err := readUint16(data, 6)
	if err != nil {
		return core.IPv4Header{}, nil, wrap("ipv4", err)
	}
	ip.Flags = uint8(flagsOffset>>13) & 0x07
	ip.FragmentOffset = flagsOffset & 0x1FFF

	if ip.TTL, err = readUint8(data, 8); err != nil {
		return core.IPv4Header{}, nil, wrap("ipv4", err)
	}
	proto, err := readUint8(data, 9)
	if err != nil {
		return core.IPv4Header{}, nil, wrap("ipv4", err)
	}
	ip.Protocol = core.IPProtocol(proto)
	if ip.Checksum, err = readUint16(data, 10); err != nil {
		return core.IPv4Header{}, nil, wrap("ipv4", err)
	}

	src, err := readUint32(data, 12)
	if err != nil {
		return core.IPv4Header{}, nil, wrap("ipv4", err)
	}
	dst, err := readUint32(data, 16)
	if err != nil {
		return core.IPv4Header{}, nil, wrap("ipv4", err)
	}
	ip.Src = addrFrom4(src)
	ip.Dst = addrFrom4(dst)

	// Payload starts after IP header, including options
	payload, err := tail(data, headerLen)
	if err != nil {
		return core.IPv4Header{}, nil, wrap("ipv4", err)
	}
	ip.Payload = payload
	return ip, payload, nil
}

// decodeIPv6 decodes the fixed IPv6 header.
// Extension headers are not followed; payload starts at offset 40.
func decodeIPv6(data []byte) (core.IPv6Header, []byte, error) {
	if len(data) < ipv6HeaderLen {
		return core.IPv6Header{}, nil, core.NewDecodeError("ipv6", len(data), core.ErrTruncatedInput)
	}

	// Version (4) | Traffic Class (8) | Flow Label (20)
	first, err := readUint32(data, 0)
	if err != nil {
		return core.IPv6Header{}, nil, wrap("ipv6", err)
	}
	vtc, err := readUint16(data, 0)
	if err != nil {
		return core.IPv6Header{}, nil, wrap("ipv6", err)
	}

	ip := core.IPv6Header{
		Version:      uint8(first >> 28),
		TrafficClass: uint8((vtc & 0x0FF0) >> 4),
		FlowLabel:    first & 0x000FFFFF,
	}

	if ip.PayloadLength, err = readUint16(data, 4); err != nil {
		return core.IPv6Header{}, nil, wrap("ipv6", err)
	}
	next, err := readUint8(data, 6)
	if err != nil {
		return core.IPv6Header{}, nil, wrap("ipv6", err)
	}
	ip.NextHeader = core.IPProtocol(next)
	if ip.HopLimit, err = readUint8(data, 7); err != nil {
		return core.IPv6Header{}, nil, wrap("ipv6", err)
	}

	src, err := readUint128(data, 8)
	if err != nil {
		return core.IPv6Header{}, nil, wrap("ipv6", err)
	}
	dst, err := readUint128(data, 24)
	if err != nil {
		return core.IPv6Header{}, nil, wrap("ipv6", err)
	}
	ip.Src = netip.AddrFrom16(src.bytes())
	ip.Dst = netip.AddrFrom16(dst.bytes())

	payload, err := tail(data, ipv6HeaderLen)
	if err != nil {
		return core.IPv6Header{}, nil, wrap("ipv6", err)
	}
	ip.Payload = payload
	return ip, payload, nil
}

func addrFrom4(v uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}
