package pipeline

import (
	"encoding/hex"
	"net/netip"
	"strconv"
	"strings"

	"github.com/miekg/dns"

	"firestige.xyz/dissector/internal/core"
)

// BuildLabels flattens the decoded layers of pkt into {protocol}.{field} labels.
// Only layers that decoded contribute.
func BuildLabels(pkt *core.DecodedPacket) core.Labels {
	labels := make(core.Labels, 16)
	for _, layer := range pkt.Layers() {
		switch l := layer.(type) {
		case core.LinkFrame:
			labels[core.LabelEthSrc] = l.Source.String()
			labels[core.LabelEthDst] = l.Destination.String()
			labels[core.LabelEthType] = l.EtherType.String()
		case core.ARPMessage:
			labels[core.LabelARPOperation] = l.Operation.String()
			labels[core.LabelARPSenderHW] = formatHardware(l.SenderHardwareAddr)
			labels[core.LabelARPSenderIP] = formatProtocol(l.SenderProtocolAddr)
			labels[core.LabelARPTargetHW] = formatHardware(l.TargetHardwareAddr)
			labels[core.LabelARPTargetIP] = formatProtocol(l.TargetProtocolAddr)
		case core.IPv4Header:
			labels[core.LabelIPVersion] = strconv.Itoa(int(l.Version))
			labels[core.LabelIPSrc] = l.Src.String()
			labels[core.LabelIPDst] = l.Dst.String()
			labels[core.LabelIPProtocol] = l.Protocol.String()
			labels[core.LabelIPTTL] = strconv.Itoa(int(l.TTL))
			labels[core.LabelIPFragment] = strconv.FormatBool(l.IsFragment())
		case core.IPv6Header:
			labels[core.LabelIPVersion] = strconv.Itoa(int(l.Version))
			labels[core.LabelIPSrc] = l.Src.String()
			labels[core.LabelIPDst] = l.Dst.String()
			labels[core.LabelIPProtocol] = l.NextHeader.String()
			labels[core.LabelIPTTL] = strconv.Itoa(int(l.HopLimit))
			labels[core.LabelIPv6Flow] = strconv.FormatUint(uint64(l.FlowLabel), 10)
		case core.TCPHeader:
			labels[core.LabelL4SrcPort] = strconv.Itoa(int(l.SrcPort))
			labels[core.LabelL4DstPort] = strconv.Itoa(int(l.DstPort))
			labels[core.LabelTCPFlags] = TCPFlagString(l.Flags)
		case core.UDPHeader:
			labels[core.LabelL4SrcPort] = strconv.Itoa(int(l.SrcPort))
			labels[core.LabelL4DstPort] = strconv.Itoa(int(l.DstPort))
			labels[core.LabelUDPLenOK] = strconv.FormatBool(l.LengthConsistent())
		case core.ICMPHeader:
			// ICMPv6 numbers differ from the ICMPv4 names, so they stay numeric.
			if _, v4 := pkt.Network.(core.IPv4Header); v4 {
				labels[core.LabelICMPType] = l.Type.String()
			} else {
				labels[core.LabelICMPType] = strconv.Itoa(int(l.Type))
			}
			labels[core.LabelICMPCode] = strconv.Itoa(int(l.Code))
		case core.DNSMessage:
			labels[core.LabelDNSID] = strconv.Itoa(int(l.ID))
			labels[core.LabelDNSResponse] = strconv.FormatBool(l.Response())
			labels[core.LabelDNSOpcode] = codeName(dns.OpcodeToString, l.Opcode())
			if l.Response() {
				labels[core.LabelDNSRCode] = codeName(dns.RcodeToString, l.RCode())
			}
			labels[core.LabelDNSAnswers] = strconv.Itoa(int(l.Answers))
			if len(l.Question) > 0 {
				names := make([]string, len(l.Question))
				types := make([]string, len(l.Question))
				classes := make([]string, len(l.Question))
				for i, q := range l.Question {
					names[i] = q.Name
					types[i] = dns.Type(q.Type).String()
					classes[i] = dns.Class(q.Class).String()
				}
				labels[core.LabelDNSQName] = strings.Join(names, ",")
				labels[core.LabelDNSQType] = strings.Join(types, ",")
				labels[core.LabelDNSQClass] = strings.Join(classes, ",")
			}
		case core.UnknownLayer:
			labels[core.LabelUnknown] = strconv.FormatUint(uint64(l.Discriminant), 10)
		}
	}
	return labels
}

// codeName returns the mnemonic for code, or the number when it has none.
func codeName(names map[int]string, code uint8) string {
	if name, ok := names[int(code)]; ok {
		return name
	}
	return strconv.Itoa(int(code))
}

var tcpFlagNames = [...]string{"FIN", "SYN", "RST", "PSH", "ACK", "URG", "ECE", "CWR"}

// TCPFlagString renders the flag byte as names joined by "|", lowest bit first.
func TCPFlagString(flags uint8) string {
	var sb strings.Builder
	for i, name := range tcpFlagNames {
		if flags&(1<<i) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(name)
	}
	return sb.String()
}

func formatHardware(b []byte) string {
	if len(b) == 6 {
		var m core.MAC
		copy(m[:], b)
		return m.String()
	}
	return hex.EncodeToString(b)
}

func formatProtocol(b []byte) string {
	if addr, ok := netip.AddrFromSlice(b); ok {
		return addr.String()
	}
	return hex.EncodeToString(b)
}
