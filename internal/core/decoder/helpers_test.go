package decoder

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

var (
	testSrcMAC = net.HardwareAddr{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	testDstMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
)

// serialize builds a frame with gopacket so that tests do not share the
// decoder's own offset arithmetic.
func serialize(t testing.TB, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, ls...); err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	return buf.Bytes()
}

func ethernetLayer(t layers.EthernetType) *layers.Ethernet {
	return &layers.Ethernet{SrcMAC: testSrcMAC, DstMAC: testDstMAC, EthernetType: t}
}

func ipv4Layer(proto layers.IPProtocol) *layers.IPv4 {
	return &layers.IPv4{
		Version:  4,
		TTL:      64,
		Id:       0x1234,
		Protocol: proto,
		SrcIP:    net.IPv4(192, 168, 1, 1).To4(),
		DstIP:    net.IPv4(192, 168, 1, 2).To4(),
	}
}

func ipv6Layer(next layers.IPProtocol) *layers.IPv6 {
	return &layers.IPv6{
		Version:      6,
		TrafficClass: 0xB8,
		FlowLabel:    0xABCDE,
		NextHeader:   next,
		HopLimit:     32,
		SrcIP:        net.ParseIP("2001:db8::1"),
		DstIP:        net.ParseIP("2001:db8::2"),
	}
}

func dnsQuery(id uint16, names ...string) *layers.DNS {
	d := &layers.DNS{ID: id, RD: true, OpCode: layers.DNSOpCodeQuery}
	for _, n := range names {
		d.Questions = append(d.Questions, layers.DNSQuestion{
			Name:  []byte(n),
			Type:  layers.DNSTypeA,
			Class: layers.DNSClassIN,
		})
	}
	return d
}

// dnsOverUDPFrame returns Ethernet + IPv4 + UDP(dst 53) + DNS query.
func dnsOverUDPFrame(t testing.TB, names ...string) []byte {
	t.Helper()
	return serialize(t,
		ethernetLayer(layers.EthernetTypeIPv4),
		ipv4Layer(layers.IPProtocolUDP),
		&layers.UDP{SrcPort: 40000, DstPort: 53},
		dnsQuery(0xBEEF, names...),
	)
}
