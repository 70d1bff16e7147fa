package decoder

import (
	"strings"

	"firestige.xyz/dissector/internal/core"
)

const (
	dnsHeaderLen       = 12
	dnsMaxLabelLen     = 63
	dnsPointerMask     = 0xC0
	dnsQuestionTrailer = 4 // QTYPE + QCLASS
)

// decodeDNS decodes the DNS header and the question section. It returns the
// message and the offset just past the last question. Answer, authority and
// additional sections are left undecoded.
func decodeDNS(data []byte) (core.DNSMessage, int, error) {
	if len(data) < dnsHeaderLen {
		return core.DNSMessage{}, 0, core.NewDecodeError("dns", len(data), core.ErrTruncatedInput)
	}

	var (
		msg core.DNSMessage
		err error
	)
	if msg.ID, err = readUint16(data, 0); err != nil {
		return core.DNSMessage{}, 0, wrap("dns", err)
	}
	if msg.Flags, err = readUint16(data, 2); err != nil {
		return core.DNSMessage{}, 0, wrap("dns", err)
	}
	if msg.Questions, err = readUint16(data, 4); err != nil {
		return core.DNSMessage{}, 0, wrap("dns", err)
	}
	if msg.Answers, err = readUint16(data, 6); err != nil {
		return core.DNSMessage{}, 0, wrap("dns", err)
	}
	if msg.Authority, err = readUint16(data, 8); err != nil {
		return core.DNSMessage{}, 0, wrap("dns", err)
	}
	if msg.Additional, err = readUint16(data, 10); err != nil {
		return core.DNSMessage{}, 0, wrap("dns", err)
	}

	// A question needs at least 5 bytes; do not trust the count for sizing.
	capHint := int(msg.Questions)
	if maxFit := (len(data) - dnsHeaderLen) / 5; capHint > maxFit {
		capHint = maxFit
	}
	msg.Question = make([]core.DNSQuestion, 0, capHint)

	off := dnsHeaderLen
	for i := 0; i < int(msg.Questions); i++ {
		var q core.DNSQuestion
		q, off, err = decodeQuestion(data, off)
		if err != nil {
			return core.DNSMessage{}, off, err
		}
		msg.Question = append(msg.Question, q)
	}
	return msg, off, nil
}

// decodeQuestion walks one question starting at off and returns it together
// with the offset of the byte following its QCLASS.
func decodeQuestion(data []byte, off int) (core.DNSQuestion, int, error) {
	name, off, err := decodeName(data, off)
	if err != nil {
		return core.DNSQuestion{}, off, err
	}

	q := core.DNSQuestion{Name: name}
	if q.Type, err = readUint16(data, off); err != nil {
		return core.DNSQuestion{}, off, wrap("dns", err)
	}
	if q.Class, err = readUint16(data, off+2); err != nil {
		return core.DNSQuestion{}, off, wrap("dns", err)
	}
	return q, off + dnsQuestionTrailer, nil
}

// decodeName reads length-prefixed labels until the zero-length terminator.
// The name has a trailing dot; the root name is ".".
func decodeName(data []byte, off int) (string, int, error) {
	var sb strings.Builder
	for {
		l, err := readUint8(data, off)
		if err != nil {
			return "", off, wrap("dns", err)
		}
		if l == 0 {
			off++
			break
		}
		if l&dnsPointerMask == dnsPointerMask {
			return "", off, core.NewDecodeError("dns", off, core.ErrUnsupportedCompression)
		}
		if l > dnsMaxLabelLen {
			return "", off, core.NewDecodeError("dns", off, core.ErrMalformedLabel)
		}
		if err := need(data, off+1, int(l)); err != nil {
			return "", off, wrap("dns", err)
		}
		sb.Write(data[off+1 : off+1+int(l)])
		sb.WriteByte('.')
		off += int(l) + 1
	}
	if sb.Len() == 0 {
		return ".", off, nil
	}
	return sb.String(), off, nil
}
