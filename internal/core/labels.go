package core

// Labels represents key-value metadata attached to a decoded frame by reporters and processors.
type Labels map[string]string

// Label naming constants following {protocol}.{field} convention.
const (
	LabelEthSrc  = "eth.src"
	LabelEthDst  = "eth.dst"
	LabelEthType = "eth.type"

	LabelARPOperation = "arp.operation"
	LabelARPSenderHW  = "arp.sender_hw"
	LabelARPSenderIP  = "arp.sender_proto"
	LabelARPTargetHW  = "arp.target_hw"
	LabelARPTargetIP  = "arp.target_proto"

	LabelIPVersion  = "ip.version"
	LabelIPSrc      = "ip.src"
	LabelIPDst      = "ip.dst"
	LabelIPProtocol = "ip.protocol" // IPv4 protocol or IPv6 next header
	LabelIPTTL      = "ip.ttl"      // TTL or hop limit
	LabelIPFragment = "ip.fragment" // "true" when MF set or offset != 0
	LabelIPv6Flow   = "ipv6.flow_label"

	LabelL4SrcPort = "l4.src_port"
	LabelL4DstPort = "l4.dst_port"
	LabelTCPFlags  = "tcp.flags"
	LabelUDPLenOK  = "udp.length_ok"
	LabelICMPType  = "icmp.type"
	LabelICMPCode  = "icmp.code"

	LabelDNSID       = "dns.id"
	LabelDNSResponse = "dns.response"
	LabelDNSOpcode   = "dns.opcode"
	LabelDNSRCode    = "dns.rcode" // responses only
	LabelDNSQName    = "dns.qname" // Comma-separated when more than one question
	LabelDNSQType    = "dns.qtype"
	LabelDNSQClass   = "dns.qclass"
	LabelDNSAnswers  = "dns.answers"

	LabelUnknown = "unknown.discriminant"
)
