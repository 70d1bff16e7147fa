// Package utils holds helpers shared by the capture plugins.
package utils

import (
	"fmt"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"
)

// CompileBPF compiles a tcpdump-style filter for Ethernet frames into raw
// classic BPF, the form accepted by afpacket.TPacket.SetBPF.
func CompileBPF(filter string, snapLen int) ([]bpf.RawInstruction, error) {
	pcapBpf, err := pcap.CompileBPFFilter(layers.LinkTypeEthernet, snapLen, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to compile BPF filter %q: %w", filter, err)
	}

	rawBpf := make([]bpf.RawInstruction, len(pcapBpf))
	for i, ins := range pcapBpf {
		rawBpf[i] = bpf.RawInstruction{Op: ins.Code, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	return rawBpf, nil
}

// BPFMatcher runs a compiled filter in user space, for sources that have no
// kernel to attach it to.
type BPFMatcher struct {
	filter string
	vm     *bpf.VM
}

// NewBPFMatcher compiles filter and loads it into a BPF virtual machine.
func NewBPFMatcher(filter string, snapLen int) (*BPFMatcher, error) {
	raw, err := CompileBPF(filter, snapLen)
	if err != nil {
		return nil, err
	}
	insns, ok := bpf.Disassemble(raw)
	if !ok {
		return nil, fmt.Errorf("BPF filter %q uses instructions the VM cannot run", filter)
	}
	vm, err := bpf.NewVM(insns)
	if err != nil {
		return nil, fmt.Errorf("failed to load BPF filter %q: %w", filter, err)
	}
	return &BPFMatcher{filter: filter, vm: vm}, nil
}

// Match reports whether the filter accepts frame.
func (m *BPFMatcher) Match(frame []byte) bool {
	n, err := m.vm.Run(frame)
	return err == nil && n > 0
}

// String returns the filter expression.
func (m *BPFMatcher) String() string { return m.filter }
