// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/vechain/rewards/metrics"

var (
	metricOpCount       = metrics.LazyLoadCounterVec("runtime_ops_count", []string{"op"})
	metricRevertCount   = metrics.LazyLoadCounterVec("runtime_reverts_count", []string{"op"})
	metricEventCount    = metrics.LazyLoadCounter("runtime_events_count")
	metricExecutionTime = metrics.LazyLoadHistogram("runtime_execution_us", metrics.BucketExecution)
)
