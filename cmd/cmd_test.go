package cmd

import (
	"bytes"
	"context"
	"encoding/hex"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/dissector/internal/config"
	"firestige.xyz/dissector/internal/core"
)

func writeConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	c, err := config.Load(path)
	require.NoError(t, err)
	return c
}

func dnsFrameHex(t *testing.T, name string) string {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolUDP,
		SrcIP: net.IP{10, 0, 0, 1}, DstIP: net.IP{10, 0, 0, 53}}
	udp := &layers.UDP{SrcPort: 40000, DstPort: 53}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
	dns := &layers.DNS{ID: 7, RD: true, QDCount: 1,
		Questions: []layers.DNSQuestion{{Name: []byte(name), Type: layers.DNSTypeA, Class: layers.DNSClassIN}}}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, udp, dns))
	return hex.EncodeToString(buf.Bytes())
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.HasPrefix(buf.String(), "dissector "+version+" (commit "))
}

func TestRunValidate(t *testing.T) {
	c := writeConfig(t, `
dissector:
  pipeline:
    workers: 2
  processors:
    - name: macfilter
      config:
        addresses: ["02:00:00:00:00:01"]
  reporters:
    - name: console
      config:
        format: text
`)
	var buf bytes.Buffer
	require.NoError(t, runValidate(c, &buf))
	assert.Equal(t, "VALID: 1 processor(s), 1 reporter(s), 2 worker(s)\n", buf.String())
}

func TestRunValidate_DefaultReporter(t *testing.T) {
	c, err := config.Load("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, runValidate(c, &buf))
	assert.Equal(t, "VALID: 0 processor(s), 1 reporter(s), 1 worker(s)\n", buf.String())
}

func TestRunValidate_Errors(t *testing.T) {
	t.Run("unknown plugin", func(t *testing.T) {
		c := writeConfig(t, `
dissector:
  reporters:
    - name: splunk
`)
		err := runValidate(c, &bytes.Buffer{})
		assert.ErrorIs(t, err, core.ErrPluginNotFound)
		assert.ErrorContains(t, err, "INVALID: reporters[0]")
	})

	t.Run("bad plugin settings", func(t *testing.T) {
		c := writeConfig(t, `
dissector:
  processors:
    - name: macfilter
      config:
        addresses: ["not-a-mac"]
`)
		err := runValidate(c, &bytes.Buffer{})
		assert.ErrorIs(t, err, core.ErrConfigInvalid)
	})
}

func TestRunSession_HexFrames(t *testing.T) {
	out := filepath.Join(t.TempDir(), "records.txt")
	c := writeConfig(t, `
dissector:
  reporters:
    - name: console
      config:
        format: text
        path: `+out+`
`)

	frames := []string{dnsFrameHex(t, "a.example"), "0x" + dnsFrameHex(t, "b.example"), "0200"}
	require.NoError(t, runSession(context.Background(), c, "hex", map[string]any{"frames": frames}, false))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)

	// Records of a single worker keep capture order.
	assert.Contains(t, lines[0], "#1 ")
	assert.Contains(t, lines[0], "ethernet/ipv4/udp/dns")
	assert.Contains(t, lines[0], "dns.qname=a.example.")
	assert.Contains(t, lines[1], "dns.qname=b.example.")
	assert.Contains(t, lines[2], "error=")
}

func TestRunSession_LiveEndsWithSource(t *testing.T) {
	out := filepath.Join(t.TempDir(), "records.json")
	c := writeConfig(t, `
dissector:
  reporters:
    - name: console
      config:
        format: json
        path: `+out+`
`)

	frames := []string{dnsFrameHex(t, "live.example")}
	require.NoError(t, runSession(context.Background(), c, "hex", map[string]any{"frames": frames}, true))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), `"dns.qname":"live.example."`)
}

func TestRunSession_LiveStopsOnCancel(t *testing.T) {
	c, err := config.Load("")
	require.NoError(t, err)
	c.Reporters = []config.PluginConfig{{Name: "console", Config: map[string]any{
		"format": "text", "path": filepath.Join(t.TempDir(), "records.txt"),
	}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// A signal before the pipeline gets going is a clean stop, not an error.
	assert.NoError(t, runSession(ctx, c, "hex", map[string]any{"frames": []string{"0200"}}, true))
}

func TestRunSession_UnknownCapturer(t *testing.T) {
	c, err := config.Load("")
	require.NoError(t, err)
	err = runSession(context.Background(), c, "pcap-over-ip", nil, false)
	assert.ErrorIs(t, err, core.ErrPluginNotFound)
}

func TestPrintPlugins(t *testing.T) {
	var buf bytes.Buffer
	printPlugins(&buf)
	assert.Contains(t, buf.String(), "processors: dedup, macfilter\n")
	assert.Contains(t, buf.String(), "reporters:  console, kafka\n")
}

func TestLoadEnvFile(t *testing.T) {
	const key = "DISSECTOR_CMD_TEST_ENV"
	t.Cleanup(func() { os.Unsetenv(key) })

	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	assert.NoError(t, loadEnvFile(""))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=loaded\n"), 0o644))
	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv(key))
}
