// Package core defines decoded header types with zero external dependencies.
package core

import (
	"net"
	"net/netip"
	"strconv"
)

// Layer is one decoded header in a frame. Every header type below implements it,
// as does UnknownLayer for discriminants that have no decoder.
type Layer interface {
	Kind() LayerKind
	Name() string
}

// UnknownLayer marks a discriminant value with no registered decoder.
// It is a valid terminal result, not an error.
type UnknownLayer struct {
	Layer        LayerKind
	Discriminant uint32
}

func (u UnknownLayer) Kind() LayerKind { return u.Layer }
func (u UnknownLayer) Name() string    { return "unknown(" + strconv.FormatUint(uint64(u.Discriminant), 10) + ")" }

// MAC is a 48-bit hardware address.
type MAC [6]byte

func (m MAC) String() string { return net.HardwareAddr(m[:]).String() }

// ParseMAC parses s in any form accepted by net.ParseMAC, restricted to 48 bits.
func ParseMAC(s string) (MAC, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return MAC{}, err
	}
	var m MAC
	if len(hw) != len(m) {
		return MAC{}, &net.AddrError{Err: "not a 48-bit address", Addr: s}
	}
	copy(m[:], hw)
	return m, nil
}

// LinkFrame is an Ethernet II header.
type LinkFrame struct {
	Destination MAC
	Source      MAC
	EtherType   EtherType
	Payload     []byte // bytes from offset 14, view into the capture buffer
}

func (LinkFrame) Kind() LayerKind { return LayerLink }
func (LinkFrame) Name() string    { return "ethernet" }

// ARPMessage is an ARP request or reply. Address fields are owned copies.
type ARPMessage struct {
	HardwareType       ARPHardwareType
	ProtocolType       EtherType
	HardwareLen        uint8
	ProtocolLen        uint8
	Operation          ARPOperation
	SenderHardwareAddr []byte
	SenderProtocolAddr []byte
	TargetHardwareAddr []byte
	TargetProtocolAddr []byte
}

func (ARPMessage) Kind() LayerKind { return LayerNetwork }
func (ARPMessage) Name() string    { return "arp" }

// Len is the number of bytes the message occupies on the wire.
func (a ARPMessage) Len() int { return 8 + 2*int(a.HardwareLen) + 2*int(a.ProtocolLen) }

// IPv4Header is an IPv4 header. Options are covered by IHL but not decoded.
type IPv4Header struct {
	Version        uint8
	IHL            uint8 // in 32-bit words
	TOS            uint8
	TotalLength    uint16
	ID             uint16
	Flags          uint8  // 3 bits: reserved, DF, MF
	FragmentOffset uint16 // 13 bits, in 8-byte units
	TTL            uint8
	Protocol       IPProtocol
	Checksum       uint16
	Src            netip.Addr
	Dst            netip.Addr
	Payload        []byte
}

// IPv4 flag bits as they appear in IPv4Header.Flags.
const (
	IPv4DontFragment  uint8 = 0x2
	IPv4MoreFragments uint8 = 0x1
)

func (IPv4Header) Kind() LayerKind { return LayerNetwork }
func (IPv4Header) Name() string    { return "ipv4" }

// HeaderLen returns the header length in bytes.
func (h IPv4Header) HeaderLen() int { return int(h.IHL) * 4 }

// IsFragment reports whether MF is set or the fragment offset is non-zero.
func (h IPv4Header) IsFragment() bool {
	return h.Flags&IPv4MoreFragments != 0 || h.FragmentOffset != 0
}

// IPv6Header is the fixed IPv6 header. Extension headers are not walked;
// NextHeader is carried through as read.
type IPv6Header struct {
	Version       uint8
	TrafficClass  uint8
	FlowLabel     uint32 // 20 bits
	PayloadLength uint16
	NextHeader    IPProtocol
	HopLimit      uint8
	Src           netip.Addr
	Dst           netip.Addr
	Payload       []byte
}

func (IPv6Header) Kind() LayerKind { return LayerNetwork }
func (IPv6Header) Name() string    { return "ipv6" }

// TCPHeader is a TCP header. Options are covered by DataOffset but not decoded.
type TCPHeader struct {
	SrcPort    uint16
	DstPort    uint16
	Seq        uint32
	Ack        uint32
	DataOffset uint8 // in 32-bit words
	Flags      uint8 // CWR ECE URG ACK PSH RST SYN FIN
	Window     uint16
	Checksum   uint16
	Urgent     uint16
	Payload    []byte
}

// TCP flag bits.
const (
	TCPFlagFIN uint8 = 1 << iota
	TCPFlagSYN
	TCPFlagRST
	TCPFlagPSH
	TCPFlagACK
	TCPFlagURG
	TCPFlagECE
	TCPFlagCWR
)

func (TCPHeader) Kind() LayerKind { return LayerTransport }
func (TCPHeader) Name() string    { return "tcp" }

// HeaderLen returns the header length in bytes.
func (h TCPHeader) HeaderLen() int { return int(h.DataOffset) * 4 }

// UDPHeader is a UDP header.
type UDPHeader struct {
	SrcPort  uint16
	DstPort  uint16
	Length   uint16 // as declared by the sender, not trusted
	Checksum uint16
	Payload  []byte
}

func (UDPHeader) Kind() LayerKind { return LayerTransport }
func (UDPHeader) Name() string    { return "udp" }

// LengthConsistent reports whether the declared length covers the header and
// does not exceed the captured segment.
func (h UDPHeader) LengthConsistent() bool {
	return h.Length >= 8 && int(h.Length) <= 8+len(h.Payload)
}

// ICMPHeader is the common 8-byte ICMP header.
type ICMPHeader struct {
	Type     ICMPType
	Code     uint8
	Checksum uint16
	Rest     uint32 // type-specific, e.g. echo identifier and sequence
	Payload  []byte
}

func (ICMPHeader) Kind() LayerKind { return LayerTransport }
func (ICMPHeader) Name() string    { return "icmp" }

// DNSMessage holds a DNS header and its question section. Answer, authority and
// additional records are counted but not decoded.
type DNSMessage struct {
	ID         uint16
	Flags      uint16
	Questions  uint16
	Answers    uint16
	Authority  uint16
	Additional uint16
	Question   []DNSQuestion
}

func (DNSMessage) Kind() LayerKind { return LayerApplication }
func (DNSMessage) Name() string    { return "dns" }

// Response reports whether the QR bit is set.
func (m DNSMessage) Response() bool { return m.Flags&0x8000 != 0 }

// Opcode returns the 4-bit opcode.
func (m DNSMessage) Opcode() uint8 { return uint8(m.Flags>>11) & 0x0F }

// RCode returns the 4-bit response code.
func (m DNSMessage) RCode() uint8 { return uint8(m.Flags & 0x000F) }

// DNSQuestion is one entry of the question section.
type DNSQuestion struct {
	Name  string // labels joined by ".", with a trailing dot
	Type  uint16
	Class uint16
}
