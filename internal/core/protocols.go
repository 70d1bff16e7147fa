package core

import "strconv"

// EtherType names the protocol carried in an Ethernet II payload.
type EtherType uint16

const (
	EtherTypeIPv4  EtherType = 0x0800
	EtherTypeARP   EtherType = 0x0806
	EtherTypeWOL   EtherType = 0x0842
	EtherTypeRARP  EtherType = 0x8035
	EtherTypeIPv6  EtherType = 0x86DD
	EtherTypeGOOSE EtherType = 0x88B8
)

var etherTypeNames = map[EtherType]string{
	EtherTypeIPv4:  "ipv4",
	EtherTypeARP:   "arp",
	EtherTypeWOL:   "wol",
	EtherTypeRARP:  "rarp",
	EtherTypeIPv6:  "ipv6",
	EtherTypeGOOSE: "goose",
}

func (t EtherType) String() string {
	if name, ok := etherTypeNames[t]; ok {
		return name
	}
	return "unknown(0x" + strconv.FormatUint(uint64(t), 16) + ")"
}

// IPProtocol is the IPv4 protocol / IPv6 next-header number.
type IPProtocol uint8

const (
	IPProtocolICMP     IPProtocol = 1
	IPProtocolIGMP     IPProtocol = 2
	IPProtocolTCP      IPProtocol = 6
	IPProtocolCHAOS    IPProtocol = 16
	IPProtocolUDP      IPProtocol = 17
	IPProtocolRDP      IPProtocol = 27
	IPProtocolIPv6ICMP IPProtocol = 58
)

var ipProtocolNames = map[IPProtocol]string{
	IPProtocolICMP:     "icmp",
	IPProtocolIGMP:     "igmp",
	IPProtocolTCP:      "tcp",
	IPProtocolCHAOS:    "chaos",
	IPProtocolUDP:      "udp",
	IPProtocolRDP:      "rdp",
	IPProtocolIPv6ICMP: "ipv6-icmp",
}

func (p IPProtocol) String() string {
	if name, ok := ipProtocolNames[p]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(p)) + ")"
}

// ARPOperation is the ARP opcode.
type ARPOperation uint16

const (
	ARPRequest ARPOperation = 1
	ARPReply   ARPOperation = 2
)

func (op ARPOperation) String() string {
	switch op {
	case ARPRequest:
		return "request"
	case ARPReply:
		return "reply"
	}
	return "unknown(" + strconv.Itoa(int(op)) + ")"
}

// Known reports whether op is a request or a reply.
func (op ARPOperation) Known() bool { return op == ARPRequest || op == ARPReply }

// ARPHardwareType is the ARP hardware (link) type.
type ARPHardwareType uint16

const (
	ARPHardwareEthernet     ARPHardwareType = 1
	ARPHardwareIEEE802      ARPHardwareType = 6
	ARPHardwareFibreChannel ARPHardwareType = 18
)

func (h ARPHardwareType) String() string {
	switch h {
	case ARPHardwareEthernet:
		return "ethernet"
	case ARPHardwareIEEE802:
		return "ieee802"
	case ARPHardwareFibreChannel:
		return "fibre-channel"
	}
	return "unknown(" + strconv.Itoa(int(h)) + ")"
}

// ICMPType is the ICMP message type.
type ICMPType uint8

const (
	ICMPEchoReply              ICMPType = 0
	ICMPDestinationUnreachable ICMPType = 3
	ICMPRedirect               ICMPType = 5
	ICMPEcho                   ICMPType = 8
	ICMPTimeExceeded           ICMPType = 11
)

var icmpTypeNames = map[ICMPType]string{
	ICMPEchoReply:              "echo-reply",
	ICMPDestinationUnreachable: "destination-unreachable",
	ICMPRedirect:               "redirect",
	ICMPEcho:                   "echo",
	ICMPTimeExceeded:           "time-exceeded",
}

func (t ICMPType) String() string {
	if name, ok := icmpTypeNames[t]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// Known reports whether t has a name.
func (t ICMPType) Known() bool {
	_, ok := icmpTypeNames[t]
	return ok
}

// LayerKind is the position of a decoded layer in the stack.
type LayerKind uint8

const (
	LayerLink LayerKind = iota + 1
	LayerNetwork
	LayerTransport
	LayerApplication
)

func (k LayerKind) String() string {
	switch k {
	case LayerLink:
		return "link"
	case LayerNetwork:
		return "network"
	case LayerTransport:
		return "transport"
	case LayerApplication:
		return "application"
	}
	return "unknown(" + strconv.Itoa(int(k)) + ")"
}
