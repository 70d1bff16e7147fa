package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(FramesTotal.WithLabelValues(StageDecoded))
	FramesTotal.WithLabelValues(StageDecoded).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(FramesTotal.WithLabelValues(StageDecoded)))

	before = testutil.ToFloat64(DecodeErrorsTotal.WithLabelValues("dns", "malformed_label"))
	DecodeErrorsTotal.WithLabelValues("dns", "malformed_label").Add(2)
	assert.Equal(t, before+2, testutil.ToFloat64(DecodeErrorsTotal.WithLabelValues("dns", "malformed_label")))
}

func TestServerHandlerExposesMetrics(t *testing.T) {
	LayersTotal.WithLabelValues("network", "ipv4").Inc()

	s := NewServer("127.0.0.1:0", "/custom")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/custom")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "dissector_layers_total"))

	notFound, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	notFound.Body.Close()
	assert.Equal(t, http.StatusNotFound, notFound.StatusCode)
}

func TestServerDefaultPathAndStopWithoutStart(t *testing.T) {
	s := NewServer(":0", "")
	assert.Equal(t, "/metrics", s.path)
	assert.NoError(t, s.Stop(context.Background()))
}
