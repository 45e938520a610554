// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/lvldb"
	"github.com/vechain/rewards/runtime"
	"github.com/vechain/rewards/state"
)

// Result summarises one scenario run.
type Result struct {
	Name     string
	Executed int
	Reverted int
	Checked  int
	Now      uint64
	Seq      uint64
}

func (r *Result) String() string {
	return fmt.Sprintf("%-24s executed=%d reverted=%d checked=%d seq=%d now=%d",
		r.Name, r.Executed, r.Reverted, r.Checked, r.Seq, r.Now)
}

// runner executes scenarios, each against its own state.
type runner struct {
	dataDir  string // empty for in-memory databases
	withLogs bool
	parallel int
	onStep   func()
}

func (r *runner) open(name string) (*runtime.Runtime, func(), error) {
	var (
		mainDB *lvldb.LevelDB
		logDB  *logdb.LogDB
		err    error
	)
	if r.dataDir == "" {
		mainDB, err = lvldb.NewMem()
	} else {
		mainDB, err = openMainDB(filepath.Join(r.dataDir, name))
	}
	if err != nil {
		return nil, nil, err
	}
	if r.withLogs {
		if r.dataDir == "" {
			logDB, err = logdb.NewMem()
		} else {
			logDB, err = openLogDB(filepath.Join(r.dataDir, name))
		}
		if err != nil {
			mainDB.Close()
			return nil, nil, err
		}
	}

	rt := runtime.New(state.New(mainDB), logDB)
	return rt, func() {
		rt.Close()
		if logDB != nil {
			logDB.Close()
		}
		mainDB.Close()
	}, nil
}

// Run executes every scenario and returns their results in input order.
// The first failing scenario cancels the others.
func (r *runner) Run(ctx context.Context, scenarios []*Scenario) ([]*Result, error) {
	results := make([]*Result, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	if r.parallel > 0 {
		g.SetLimit(r.parallel)
	}
	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			rt, closeFn, err := r.open(sc.Name)
			if err != nil {
				return errors.WithMessagef(err, "scenario %q", sc.Name)
			}
			defer closeFn()

			res, err := r.runScenario(ctx, rt, sc)
			if err != nil {
				return errors.WithMessagef(err, "scenario %q", sc.Name)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *runner) runScenario(ctx context.Context, rt *runtime.Runtime, sc *Scenario) (*Result, error) {
	logger.Debug("running scenario", "name", sc.Name, "steps", len(sc.Steps))

	_, seq, err := rt.Clock()
	if err != nil {
		return nil, err
	}
	if seq != 0 {
		return nil, errors.Errorf("state already holds %d operations", seq)
	}

	res := &Result{Name: sc.Name}
	for i := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step := &sc.Steps[i]
		if err := r.runStep(rt, sc.Start+step.At, step, res); err != nil {
			return nil, errors.WithMessagef(err, "step %d (%s)", i, step.Op)
		}
		if r.onStep != nil {
			r.onStep()
		}
	}

	if res.Now, res.Seq, err = rt.Clock(); err != nil {
		return nil, err
	}
	logger.Info("scenario done", "name", sc.Name, "executed", res.Executed, "reverted", res.Reverted, "checked", res.Checked)
	return res, nil
}

func (r *runner) runStep(rt *runtime.Runtime, now uint64, step *Step, res *Result) error {
	op := operations[step.Op]
	if op.view {
		res.Checked++
		return rt.View(func() error { return op.run(rt, step, now) })
	}

	receipt, err := rt.Execute(now, step.From.Address(), step.Op, func() error {
		return op.run(rt, step, now)
	})
	if err != nil {
		return err
	}
	res.Executed++
	if receipt.Reverted {
		res.Reverted++
	}

	switch {
	case receipt.Reverted && !step.expectRevert():
		return errors.Errorf("unexpected revert: %s", receipt.Error)
	case !receipt.Reverted && step.expectRevert():
		return errors.New("expected revert")
	case receipt.Reverted && step.Reason != "" && !strings.Contains(receipt.Error, step.Reason):
		return errors.Errorf("revert %q does not match %q", receipt.Error, step.Reason)
	}
	return nil
}

func runAction(ctx *cli.Context) error {
	initLogger(ctx)

	paths := ctx.StringSlice(configFlag.Name)
	if len(paths) == 0 {
		return errors.New("no scenario given, use --config")
	}

	var scenarios []*Scenario
	names := make(map[string]bool)
	total := 0
	for _, path := range paths {
		loaded, err := LoadScenarioFile(path)
		if err != nil {
			return err
		}
		for _, sc := range loaded {
			if names[sc.Name] {
				return errors.Errorf("duplicate scenario name %q", sc.Name)
			}
			names[sc.Name] = true
			total += len(sc.Steps)
		}
		scenarios = append(scenarios, loaded...)
	}

	r := &runner{
		dataDir:  ctx.String(dataDirFlag.Name),
		withLogs: ctx.Bool(logDBFlag.Name),
		parallel: ctx.Int(parallelFlag.Name),
	}
	var bar *pb.ProgressBar
	if ctx.Bool(progressFlag.Name) {
		bar = pb.New(total).
			SetMaxWidth(90).
			Start()
		defer func() { bar.NotPrint = true }()
		r.onStep = func() { bar.Increment() }
	}

	results, err := r.Run(handleExitSignal(), scenarios)
	if err != nil {
		return err
	}
	if bar != nil {
		bar.Finish()
	}
	for _, res := range results {
		fmt.Println(res)
	}
	return nil
}
