// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/metrics"
)

func TestStartAPIServer(t *testing.T) {
	url, closeFn, err := startAPIServer("localhost:0", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}))
	require.NoError(t, err)
	defer closeFn()

	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	_, _, err = startAPIServer("not an address", nil)
	assert.Error(t, err)
}

func TestStartMetricsServer(t *testing.T) {
	metrics.InitializePrometheusMetrics()

	url, closeFn, err := startMetricsServer("localhost:0")
	require.NoError(t, err)
	defer closeFn()
	assert.True(t, strings.HasSuffix(url, "/metrics"))

	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
