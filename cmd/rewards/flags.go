// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"runtime"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rewards/log"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:   "datadir",
		Usage:  "directory for the state and event databases",
		EnvVar: "REWARDS_DATADIR",
	}
	configFlag = cli.StringSliceFlag{
		Name:   "config",
		Usage:  "scenario file to run, may be repeated",
		EnvVar: "REWARDS_CONFIG",
	}
	logDBFlag = cli.BoolFlag{
		Name:   "logdb",
		Usage:  "index emitted events into the event database",
		EnvVar: "REWARDS_LOGDB",
	}
	progressFlag = cli.BoolFlag{
		Name:  "progress",
		Usage: "show a progress bar while running scenarios",
	}
	parallelFlag = cli.IntFlag{
		Name:   "parallel",
		Value:  runtime.NumCPU(),
		Usage:  "maximum number of scenarios run at the same time",
		EnvVar: "REWARDS_PARALLEL",
	}
	apiAddrFlag = cli.StringFlag{
		Name:   "api-addr",
		Value:  "localhost:8669",
		Usage:  "API service listening address",
		EnvVar: "REWARDS_API_ADDR",
	}
	apiCorsFlag = cli.StringFlag{
		Name:   "api-cors",
		Value:  "",
		Usage:  "comma separated list of domains from which to accept cross origin requests to API",
		EnvVar: "REWARDS_API_CORS",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:   "api-logs-limit",
		Value:  1000,
		Usage:  "limit the number of events returned by /events API",
		EnvVar: "REWARDS_API_LOGS_LIMIT",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "all queries with execution time(ms) above threshold will be logged",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log all requests resulting in 5xx status codes",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:   "enable-api-logs",
		Usage:  "enables API requests logging",
		EnvVar: "REWARDS_ENABLE_API_LOGS",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:   "enable-metrics",
		Usage:  "enables metrics collection",
		EnvVar: "REWARDS_ENABLE_METRICS",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:   "metrics-addr",
		Value:  "localhost:2112",
		Usage:  "metrics service listening address",
		EnvVar: "REWARDS_METRICS_ADDR",
	}
	addressFlag = cli.StringFlag{
		Name:  "address",
		Usage: "only dump the storage of this contract",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:   "verbosity",
		Value:  uint64(log.LegacyLevelInfo),
		Usage:  "log verbosity (0-9)",
		EnvVar: "REWARDS_VERBOSITY",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
)
