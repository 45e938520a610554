// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/lvldb"
)

func initLogger(ctx *cli.Context) {
	log.Init(os.Stderr, int(ctx.GlobalUint64(verbosityFlag.Name)), ctx.GlobalBool(jsonLogsFlag.Name))
}

func openMainDB(dir string) (*lvldb.LevelDB, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create data dir [%v]", dir)
	}
	path := filepath.Join(dir, "main.db")
	db, err := lvldb.New(path, lvldb.Options{CacheSize: 16, OpenFilesCacheCapacity: 64})
	if err != nil {
		return nil, errors.Wrapf(err, "open state database [%v]", path)
	}
	return db, nil
}

func openLogDB(dir string) (*logdb.LogDB, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create data dir [%v]", dir)
	}
	path := filepath.Join(dir, "logs.db")
	db, err := logdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open log database [%v]", path)
	}
	return db, nil
}

func requireDataDir(ctx *cli.Context) (string, error) {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return "", errors.New("--datadir is required")
	}
	if _, err := os.Stat(filepath.Join(dir, "main.db")); err != nil {
		return "", errors.Wrapf(err, "no state in [%v]", dir)
	}
	return dir, nil
}

// handleExitSignal returns a context cancelled on the first interrupt or
// termination signal.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
