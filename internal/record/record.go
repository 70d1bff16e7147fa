// Package record defines the serialized form of one output packet, shared
// by the reporters.
package record

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"firestige.xyz/dissector/internal/core"
)

// Record is one frame as written by reporters.
type Record struct {
	SessionID  string            `json:"session_id" yaml:"session_id"`
	Seq        uint64            `json:"seq" yaml:"seq"`
	Timestamp  time.Time         `json:"timestamp" yaml:"timestamp"`
	CaptureLen uint32            `json:"capture_len" yaml:"capture_len"`
	OrigLen    uint32            `json:"orig_len" yaml:"orig_len"`
	Layers     []string          `json:"layers" yaml:"layers"`
	Labels     map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Warnings   []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// New builds the record for pkt. Layers is never nil so that encoders write
// an empty list for frames too short to decode.
func New(pkt *core.OutputPacket) Record {
	layers := pkt.Layers
	if layers == nil {
		layers = []string{}
	}
	return Record{
		SessionID:  pkt.SessionID,
		Seq:        pkt.Seq,
		Timestamp:  pkt.Timestamp.UTC(),
		CaptureLen: pkt.CaptureLen,
		OrigLen:    pkt.OrigLen,
		Layers:     layers,
		Labels:     pkt.Labels,
		Warnings:   pkt.Warnings,
		Error:      pkt.Error,
	}
}

// MarshalJSON encodes pkt as a single JSON object.
func MarshalJSON(pkt *core.OutputPacket) ([]byte, error) {
	return json.Marshal(New(pkt))
}

// Text renders pkt on one line: sequence, time, layer path, then labels in
// key order.
func Text(pkt *core.OutputPacket) string {
	var sb strings.Builder
	sb.WriteString("#")
	sb.WriteString(strconv.FormatUint(pkt.Seq, 10))
	sb.WriteByte(' ')
	sb.WriteString(pkt.Timestamp.UTC().Format("15:04:05.000000"))
	sb.WriteByte(' ')
	if len(pkt.Layers) == 0 {
		sb.WriteString("-")
	} else {
		sb.WriteString(strings.Join(pkt.Layers, "/"))
	}

	keys := make([]string, 0, len(pkt.Labels))
	for k := range pkt.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(textValue(pkt.Labels[k]))
	}

	if pkt.Error != "" {
		sb.WriteString(" error=")
		sb.WriteString(strconv.Quote(pkt.Error))
	}
	return sb.String()
}

// textValue quotes values that could split a field or a line.
func textValue(v string) string {
	if v == "" || !utf8.ValidString(v) {
		return strconv.Quote(v)
	}
	for _, r := range v {
		if r == '"' || r == '=' || unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return strconv.Quote(v)
		}
	}
	return v
}
