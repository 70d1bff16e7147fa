package core

import (
	"errors"
	"fmt"
	"net/netip"
	"testing"
	"time"
)

// Test zero values of core structs
func TestStructZeroValues(t *testing.T) {
	t.Run("LinkFrame", func(t *testing.T) {
		var eth LinkFrame
		if eth.EtherType != 0 {
			t.Errorf("expected EtherType=0, got %d", eth.EtherType)
		}
		if eth.Payload != nil {
			t.Errorf("expected Payload=nil, got %v", eth.Payload)
		}
	})

	t.Run("IPv4Header", func(t *testing.T) {
		var ip IPv4Header
		if ip.Version != 0 {
			t.Errorf("expected Version=0, got %d", ip.Version)
		}
		if ip.Src.IsValid() {
			t.Errorf("expected invalid Src, got %v", ip.Src)
		}
		if ip.Dst.IsValid() {
			t.Errorf("expected invalid Dst, got %v", ip.Dst)
		}
	})

	t.Run("RawPacket", func(t *testing.T) {
		var raw RawPacket
		if raw.Data != nil {
			t.Errorf("expected Data=nil, got %v", raw.Data)
		}
		if !raw.Timestamp.IsZero() {
			t.Errorf("expected zero Timestamp, got %v", raw.Timestamp)
		}
	})

	t.Run("DecodedPacket", func(t *testing.T) {
		var decoded DecodedPacket
		if decoded.Network != nil || decoded.Transport != nil || decoded.Application != nil {
			t.Errorf("expected no layers above link")
		}
		if len(decoded.Layers()) != 0 {
			t.Errorf("expected no layers, got %d", len(decoded.Layers()))
		}
		if _, ok := decoded.DNS(); ok {
			t.Errorf("expected no DNS message")
		}
	})
}

// Test Labels operations
func TestLabels(t *testing.T) {
	t.Run("CreateAndSet", func(t *testing.T) {
		labels := make(Labels)
		labels[LabelDNSQName] = "example.com."
		labels[LabelIPSrc] = "10.0.0.1"

		if labels[LabelDNSQName] != "example.com." {
			t.Errorf("expected example.com., got %s", labels[LabelDNSQName])
		}
		if labels[LabelIPSrc] != "10.0.0.1" {
			t.Errorf("expected 10.0.0.1, got %s", labels[LabelIPSrc])
		}
	})

	t.Run("LabelConstants", func(t *testing.T) {
		// Verify label naming convention {protocol}.{field}
		expected := map[string]string{
			LabelEthType:   "eth.type",
			LabelIPSrc:     "ip.src",
			LabelL4DstPort: "l4.dst_port",
			LabelDNSQName:  "dns.qname",
			LabelICMPType:  "icmp.type",
		}

		for constant, expectedName := range expected {
			if constant != expectedName {
				t.Errorf("label constant mismatch: expected %s, got %s", expectedName, constant)
			}
		}
	})

	t.Run("NilLabels", func(t *testing.T) {
		var labels Labels
		// Accessing nil map should not panic, but return zero value
		if val := labels[LabelDNSQName]; val != "" {
			t.Errorf("expected empty string from nil map, got %s", val)
		}
	})
}

// Test sentinel errors
func TestSentinelErrors(t *testing.T) {
	t.Run("ErrorMessages", func(t *testing.T) {
		tests := []struct {
			err     error
			message string
		}{
			{ErrTruncatedInput, "dissector: truncated input"},
			{ErrInvalidHeaderLength, "dissector: invalid header length"},
			{ErrMalformedLabel, "dissector: malformed dns label"},
			{ErrUnsupportedCompression, "dissector: unsupported dns name compression"},
			{ErrPipelineStopped, "dissector: pipeline stopped"},
			{ErrPluginNotFound, "dissector: plugin not found"},
			{ErrConfigInvalid, "dissector: invalid configuration"},
		}

		for _, tt := range tests {
			if tt.err.Error() != tt.message {
				t.Errorf("expected error message %q, got %q", tt.message, tt.err.Error())
			}
		}
	})

	t.Run("DecodeErrorWrapping", func(t *testing.T) {
		err := fmt.Errorf("frame 3: %w", NewDecodeError("ipv4", 20, ErrTruncatedInput))
		if !errors.Is(err, ErrTruncatedInput) {
			t.Error("errors.Is failed for wrapped DecodeError")
		}

		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatal("errors.As failed for wrapped DecodeError")
		}
		if de.Layer != "ipv4" || de.Offset != 20 {
			t.Errorf("expected ipv4 at 20, got %s at %d", de.Layer, de.Offset)
		}
		if de.Error() != "ipv4: dissector: truncated input at offset 20" {
			t.Errorf("unexpected message %q", de.Error())
		}
	})

	t.Run("Reason", func(t *testing.T) {
		tests := []struct {
			err  error
			want string
		}{
			{nil, "none"},
			{NewDecodeError("dns", 12, ErrMalformedLabel), "malformed_label"},
			{NewDecodeError("dns", 12, ErrUnsupportedCompression), "unsupported_compression"},
			{NewDecodeError("tcp", 12, ErrInvalidHeaderLength), "invalid_header_length"},
			{ErrTruncatedInput, "truncated_input"},
			{ErrVersionMismatch, "version_mismatch"},
			{errors.New("boom"), "other"},
		}
		for _, tt := range tests {
			if got := Reason(tt.err); got != tt.want {
				t.Errorf("Reason(%v) = %q, want %q", tt.err, got, tt.want)
			}
		}
	})
}

// Test packet structures with real data
func TestPacketStructures(t *testing.T) {
	t.Run("RawPacket", func(t *testing.T) {
		now := time.Now()
		raw := RawPacket{
			Data:           []byte{0x01, 0x02, 0x03},
			Timestamp:      now,
			CaptureLen:     3,
			OrigLen:        100,
			InterfaceIndex: 1,
		}

		if len(raw.Data) != 3 {
			t.Errorf("expected Data length 3, got %d", len(raw.Data))
		}
		if raw.Timestamp != now {
			t.Errorf("timestamp mismatch")
		}
		if raw.OrigLen != 100 {
			t.Errorf("expected OrigLen=100, got %d", raw.OrigLen)
		}
	})

	t.Run("DecodedPacketLayers", func(t *testing.T) {
		decoded := DecodedPacket{
			Timestamp: time.Now(),
			Link:      LinkFrame{EtherType: EtherTypeIPv4, Payload: []byte{}},
			Network: IPv4Header{
				Version:  4,
				IHL:      5,
				Src:      netip.MustParseAddr("192.168.1.1"),
				Dst:      netip.MustParseAddr("192.168.1.2"),
				Protocol: IPProtocolUDP,
			},
			Transport:   UDPHeader{SrcPort: 40000, DstPort: 53, Length: 8},
			Application: DNSMessage{ID: 1, Flags: 0x8183},
		}

		layers := decoded.Layers()
		want := []string{"ethernet", "ipv4", "udp", "dns"}
		if len(layers) != len(want) {
			t.Fatalf("expected %d layers, got %d", len(want), len(layers))
		}
		for i, l := range layers {
			if l.Name() != want[i] {
				t.Errorf("layer %d: expected %s, got %s", i, want[i], l.Name())
			}
		}
		if decoded.Top().Kind() != LayerApplication {
			t.Errorf("expected application on top, got %v", decoded.Top().Kind())
		}

		msg, ok := decoded.DNS()
		if !ok {
			t.Fatal("expected DNS message")
		}
		if !msg.Response() || msg.RCode() != 3 || msg.Opcode() != 0 {
			t.Errorf("unexpected flags decoding: response=%v rcode=%d opcode=%d", msg.Response(), msg.RCode(), msg.Opcode())
		}
	})

	t.Run("LayersStopAtGap", func(t *testing.T) {
		decoded := DecodedPacket{
			Link:        LinkFrame{Payload: []byte{0x00}},
			Network:     UnknownLayer{Layer: LayerNetwork, Discriminant: 0x88CC},
			Application: DNSMessage{},
		}
		layers := decoded.Layers()
		if len(layers) != 2 {
			t.Fatalf("expected 2 layers, got %d", len(layers))
		}
		if layers[1].Name() != "unknown(35020)" {
			t.Errorf("expected unknown(35020), got %s", layers[1].Name())
		}
	})
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got  fmt.Stringer
		want string
	}{
		{EtherTypeIPv4, "ipv4"},
		{EtherTypeARP, "arp"},
		{EtherTypeIPv6, "ipv6"},
		{EtherTypeWOL, "wol"},
		{EtherTypeRARP, "rarp"},
		{EtherTypeGOOSE, "goose"},
		{EtherType(0x88CC), "unknown(0x88cc)"},
		{IPProtocolTCP, "tcp"},
		{IPProtocolIPv6ICMP, "ipv6-icmp"},
		{IPProtocol(47), "unknown(47)"},
		{ARPHardwareFibreChannel, "fibre-channel"},
		{LayerTransport, "transport"},
	}
	for _, tt := range tests {
		if tt.got.String() != tt.want {
			t.Errorf("expected %q, got %q", tt.want, tt.got.String())
		}
	}
}
