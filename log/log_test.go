// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextFollowsDefault(t *testing.T) {
	old := ethlog.Root()
	defer ethlog.SetDefault(old)

	logger := WithContext("pkg", "pool")

	var buf bytes.Buffer
	SetDefault(ethlog.JSONHandler(&buf))

	logger.With("account", "0x01").Info("staked", "amount", "10")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "staked", rec["msg"])
	assert.Equal(t, "pool", rec["pkg"])
	assert.Equal(t, "0x01", rec["account"])
	assert.Equal(t, "10", rec["amount"])
}

func TestInitVerbosity(t *testing.T) {
	old := ethlog.Root()
	defer ethlog.SetDefault(old)

	var buf bytes.Buffer
	Init(&buf, LegacyLevelInfo, false)

	logger := WithContext("pkg", "test")
	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.True(t, strings.Contains(out, "shown"))
	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), LevelInfo))
}
