// Package decoder implements L2 to L7 protocol stack decoding for
// Ethernet, ARP, IPv4, IPv6, TCP, UDP, ICMP and DNS.
package decoder

import (
	"firestige.xyz/dissector/internal/core"
)

// Decoder decodes raw packets into structured format.
type Decoder interface {
	Decode(raw core.RawPacket) (core.DecodedPacket, error)
}

// DefaultDNSPort is used when Config.DNSPorts is empty.
const DefaultDNSPort = 53

// Config configures StandardDecoder.
type Config struct {
	DNSPorts   []uint16 // ports whose UDP/TCP payload is decoded as DNS
	DNSOverTCP bool     // decode DNS on TCP, stripping the 2-byte length prefix
}

// layerFunc decodes one layer and returns it with the bytes that follow it.
type layerFunc func(data []byte) (core.Layer, []byte, error)

// appFunc decodes an application payload.
type appFunc func(payload []byte) (core.Layer, error)

// networkDecoders is keyed by the Ethernet ether-type.
var networkDecoders = map[core.EtherType]layerFunc{
	core.EtherTypeIPv4: func(b []byte) (core.Layer, []byte, error) { return asLayer(decodeIPv4(b)) },
	core.EtherTypeARP:  func(b []byte) (core.Layer, []byte, error) { return asLayer(decodeARP(b)) },
	core.EtherTypeIPv6: func(b []byte) (core.Layer, []byte, error) { return asLayer(decodeIPv6(b)) },
}

// transportDecoders is keyed by the IPv4 protocol / IPv6 next-header byte.
var transportDecoders = map[core.IPProtocol]layerFunc{
	core.IPProtocolICMP:     func(b []byte) (core.Layer, []byte, error) { return asLayer(decodeICMP(b)) },
	core.IPProtocolTCP:      func(b []byte) (core.Layer, []byte, error) { return asLayer(decodeTCP(b)) },
	core.IPProtocolUDP:      func(b []byte) (core.Layer, []byte, error) { return asLayer(decodeUDP(b)) },
	core.IPProtocolIPv6ICMP: func(b []byte) (core.Layer, []byte, error) { return asLayer(decodeICMP(b)) },
}

func asLayer[L core.Layer](l L, rest []byte, err error) (core.Layer, []byte, error) {
	if err != nil {
		return nil, nil, err
	}
	return l, rest, nil
}

// StandardDecoder walks Ethernet → network → transport → application,
// picking each decoder from a table keyed by the previous layer's discriminant.
// It holds no mutable state and is safe for concurrent use.
type StandardDecoder struct {
	udpApps map[uint16]appFunc
	tcpApps map[uint16]appFunc
}

// NewStandardDecoder creates a decoder.
func NewStandardDecoder(cfg Config) *StandardDecoder {
	ports := cfg.DNSPorts
	if len(ports) == 0 {
		ports = []uint16{DefaultDNSPort}
	}

	d := &StandardDecoder{
		udpApps: make(map[uint16]appFunc, len(ports)),
		tcpApps: make(map[uint16]appFunc, len(ports)),
	}
	for _, p := range ports {
		d.udpApps[p] = decodeDNSLayer
		if cfg.DNSOverTCP {
			d.tcpApps[p] = decodeDNSOverTCP
		}
	}
	return d
}

// Decode decodes raw.Data layer by layer. On failure it returns the layers
// decoded so far together with the error, which is also stored in Err.
func (d *StandardDecoder) Decode(raw core.RawPacket) (core.DecodedPacket, error) {
	pkt := core.DecodedPacket{
		Timestamp:  raw.Timestamp,
		CaptureLen: raw.CaptureLen,
		OrigLen:    raw.OrigLen,
	}
	fail := func(err error) (core.DecodedPacket, error) {
		pkt.Err = err
		return pkt, err
	}

	// Step 1: L2
	link, payload, err := decodeEthernet(raw.Data)
	if err != nil {
		return fail(err)
	}
	pkt.Link = link

	// Step 2: L3, selected by ether-type
	decodeNetwork, ok := networkDecoders[link.EtherType]
	if !ok {
		pkt.Network = core.UnknownLayer{Layer: core.LayerNetwork, Discriminant: uint32(link.EtherType)}
		return pkt, nil
	}
	network, payload, err := decodeNetwork(payload)
	if err != nil {
		return fail(err)
	}
	pkt.Network = network

	var proto core.IPProtocol
	switch ip := network.(type) {
	case core.IPv4Header:
		if ip.Version != 4 {
			pkt.Warnings = append(pkt.Warnings, core.NewDecodeError("ipv4", 0, core.ErrVersionMismatch))
		}
		proto = ip.Protocol
	case core.IPv6Header:
		if ip.Version != 6 {
			pkt.Warnings = append(pkt.Warnings, core.NewDecodeError("ipv6", 0, core.ErrVersionMismatch))
		}
		proto = ip.NextHeader
	default:
		// ARP carries nothing above it
		return pkt, nil
	}

	// Step 3: L4, selected by IP protocol
	decodeTransport, ok := transportDecoders[proto]
	if !ok {
		pkt.Transport = core.UnknownLayer{Layer: core.LayerTransport, Discriminant: uint32(proto)}
		return pkt, nil
	}
	transport, payload, err := decodeTransport(payload)
	if err != nil {
		return fail(err)
	}
	pkt.Transport = transport

	// Step 4: application, selected by port
	app, err := d.decodeApplication(transport, payload)
	if err != nil {
		return fail(err)
	}
	pkt.Application = app
	return pkt, nil
}

// decodeApplication looks up the destination port first, then the source port.
// Empty payloads and ICMP produce no application layer.
func (d *StandardDecoder) decodeApplication(transport core.Layer, payload []byte) (core.Layer, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	var (
		table    map[uint16]appFunc
		src, dst uint16
	)
	switch t := transport.(type) {
	case core.UDPHeader:
		table, src, dst = d.udpApps, t.SrcPort, t.DstPort
	case core.TCPHeader:
		table, src, dst = d.tcpApps, t.SrcPort, t.DstPort
	default:
		return nil, nil
	}

	decode, ok := table[dst]
	if !ok {
		decode, ok = table[src]
	}
	if !ok {
		return core.UnknownLayer{Layer: core.LayerApplication, Discriminant: uint32(dst)}, nil
	}
	return decode(payload)
}

func decodeDNSLayer(payload []byte) (core.Layer, error) {
	msg, _, err := decodeDNS(payload)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// decodeDNSOverTCP strips the RFC 1035 §4.2.2 length prefix. The prefix is
// informational; the message is decoded from whatever bytes follow it.
func decodeDNSOverTCP(payload []byte) (core.Layer, error) {
	msg, err := tail(payload, 2)
	if err != nil {
		return nil, wrap("dns", err)
	}
	return decodeDNSLayer(msg)
}
