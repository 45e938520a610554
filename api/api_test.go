// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/api/boosters"
	"github.com/vechain/rewards/api/escrows"
	"github.com/vechain/rewards/api/factories"
	"github.com/vechain/rewards/api/pools"
	"github.com/vechain/rewards/api/treasuries"
	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/booster"
	"github.com/vechain/rewards/builtin/escrow"
	"github.com/vechain/rewards/builtin/factory"
	"github.com/vechain/rewards/builtin/pool"
	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/lvldb"
	"github.com/vechain/rewards/metrics"
	"github.com/vechain/rewards/runtime"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

const t0 = uint64(1_700_000_000)

var (
	owner  = thor.BytesToAddress([]byte("owner"))
	minter = thor.BytesToAddress([]byte("minter"))
	alice  = thor.BytesToAddress([]byte("alice"))

	stakingToken = thor.BytesToAddress([]byte("staking"))
	rewardToken  = thor.BytesToAddress([]byte("reward"))
	lpToken      = thor.BytesToAddress([]byte("lp"))
	baseToken    = thor.BytesToAddress([]byte("base"))

	factoryAddr  = thor.BytesToAddress([]byte("factory"))
	boosterAddr  = thor.BytesToAddress([]byte("booster"))
	oracleAddr   = thor.BytesToAddress([]byte("oracle"))
	pairAddr     = thor.BytesToAddress([]byte("pair"))
	escrowAddr   = thor.BytesToAddress([]byte("escrow"))
	treasuryAddr = thor.BytesToAddress([]byte("treasury"))
	poolAddr     = factory.PoolAddress(factoryAddr, stakingToken)
)

func execute(t *testing.T, rt *runtime.Runtime, now uint64, origin thor.Address, op func() error) {
	receipt, err := rt.Execute(now, origin, "test", op)
	require.NoError(t, err)
	require.False(t, receipt.Reverted, receipt.Error)
}

func newTestServer(t *testing.T) (*runtime.Runtime, *httptest.Server) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logDB.Close() })

	rt := runtime.New(state.New(db), logDB)
	t.Cleanup(rt.Close)

	execute(t, rt, t0, owner, func() error {
		for _, tok := range []thor.Address{stakingToken, rewardToken, lpToken, baseToken} {
			if err := rt.Ledger(tok).Init(minter, false); err != nil {
				return err
			}
		}
		for tok, amount := range map[thor.Address]uint64{stakingToken: 100, lpToken: 10, baseToken: 50} {
			if err := rt.Ledger(tok).Mint(minter, alice, bn.Units(amount)); err != nil {
				return err
			}
		}
		if err := rt.Ledger(rewardToken).Mint(minter, owner, bn.Units(10_000)); err != nil {
			return err
		}
		if err := rt.Oracle(oracleAddr).Init(owner, bn.Units(2)); err != nil {
			return err
		}
		if err := rt.Booster(boosterAddr).Init(owner, booster.Config{
			Pair:           pairAddr,
			LPToken:        lpToken,
			ReferenceToken: stakingToken,
			OtherToken:     rewardToken,
			Oracle:         oracleAddr,
			EscrowToken:    escrow.TokenAddress(escrowAddr),
			EscrowRate:     bn.One(),
			ReferencePrice: bn.One(),
		}); err != nil {
			return err
		}
		if err := rt.Escrow(escrowAddr).Init(owner, baseToken); err != nil {
			return err
		}
		if err := rt.Treasury(treasuryAddr).Init(owner, owner, stakingToken, []thor.Address{rewardToken}); err != nil {
			return err
		}
		if err := rt.Factory(factoryAddr).Init(owner); err != nil {
			return err
		}
		if _, err := rt.Factory(factoryAddr).Deploy(owner, stakingToken, pool.Config{
			RewardTokens: []thor.Address{rewardToken},
			Booster:      boosterAddr,
		}); err != nil {
			return err
		}
		// 864 tokens over a day is 0.01 token per second
		return rt.Factory(factoryAddr).AddRewards(owner, stakingToken, rewardToken, bn.Units(864), 1, t0)
	})
	execute(t, rt, t0, alice, func() error {
		if err := rt.Pool(poolAddr).Stake(alice, bn.Units(10), t0); err != nil {
			return err
		}
		if err := rt.Booster(boosterAddr).Stake(alice, bn.Units(5), t0); err != nil {
			return err
		}
		if err := rt.Escrow(escrowAddr).Escrow(alice, bn.Units(50)); err != nil {
			return err
		}
		if err := rt.Escrow(escrowAddr).Vest(alice, bn.Units(20), t0); err != nil {
			return err
		}
		return rt.Treasury(treasuryAddr).Deposit(alice, bn.Units(20), t0)
	})

	handler, closeFn := New(rt, Options{
		AllowedOrigins: "*",
		EnableMetrics:  true,
		LogsLimit:      100,
	})
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		closeFn()
		ts.Close()
	})
	return rt, ts
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func getJSON(t *testing.T, url string, v any) {
	body, code := httpGet(t, url)
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, v))
}

func TestFactoryRoutes(t *testing.T) {
	_, ts := newTestServer(t)

	var deployed factories.DeployedPool
	getJSON(t, ts.URL+"/factories/"+factoryAddr.String()+"/pools/"+stakingToken.String(), &deployed)
	assert.Equal(t, poolAddr, deployed.Pool)

	var fac factories.Factory
	getJSON(t, ts.URL+"/factories/"+factoryAddr.String(), &fac)
	assert.Equal(t, owner, fac.Owner)
	assert.Equal(t, []thor.Address{poolAddr}, fac.Pools)

	_, code := httpGet(t, ts.URL+"/factories/"+factoryAddr.String()+"/pools/"+rewardToken.String())
	assert.Equal(t, http.StatusNotFound, code)

	_, code = httpGet(t, ts.URL+"/factories/0xzz/pools/"+stakingToken.String())
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPoolRoutes(t *testing.T) {
	_, ts := newTestServer(t)

	var p pools.Pool
	getJSON(t, fmt.Sprintf("%s/pools/%s?now=%d", ts.URL, poolAddr, t0+100), &p)
	assert.Equal(t, stakingToken, p.StakingToken)
	assert.Equal(t, owner, p.Owner)
	assert.Equal(t, boosterAddr, p.Booster)
	assert.Equal(t, bn.Units(10), p.TotalSupply)
	require.Len(t, p.Schedules, 1)
	assert.Equal(t, rewardToken, p.Schedules[0].Token)
	assert.Equal(t, bn.MustParse("0.01"), p.Schedules[0].Rate)
	assert.Equal(t, t0+thor.Day, p.Schedules[0].PeriodFinish)
	assert.Equal(t, bn.Units(864), p.Schedules[0].Funded)
	assert.Equal(t, bn.Units(864), p.Schedules[0].RewardForDuration)

	var acc pools.Account
	getJSON(t, fmt.Sprintf("%s/pools/%s/accounts/%s?now=%d", ts.URL, poolAddr, alice, t0+100), &acc)
	assert.Equal(t, bn.Units(10), acc.Balance)
	require.Len(t, acc.Earned, 1)
	assert.Equal(t, bn.Units(1), acc.Earned[0].Amount)

	// defaults to the time of the last operation
	getJSON(t, fmt.Sprintf("%s/pools/%s/accounts/%s", ts.URL, poolAddr, alice), &acc)
	assert.Equal(t, t0, acc.Now)
	assert.True(t, acc.Earned[0].Amount.IsZero())

	_, code := httpGet(t, ts.URL+"/pools/"+rewardToken.String())
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBoosterRoute(t *testing.T) {
	_, ts := newTestServer(t)

	var acc boosters.Account
	getJSON(t, fmt.Sprintf("%s/boosters/%s/accounts/%s?reference=10.0", ts.URL, boosterAddr, alice), &acc)
	assert.Equal(t, bn.Units(10), acc.Reference)
	require.Len(t, acc.Liquidity, 1)
	assert.Equal(t, bn.Units(5), acc.Liquidity[0].Amount)
	assert.Equal(t, t0+thor.DefaultStakePeriod, acc.Liquidity[0].Unlock)
	assert.Empty(t, acc.Escrow)
	// the pair holds no reserves, so the locked liquidity is worth nothing
	assert.True(t, acc.BoostValue.IsZero())
	assert.Equal(t, bn.One(), acc.BoostRate)
	assert.Equal(t, bn.Units(2), acc.VirtualPrice)

	_, code := httpGet(t, fmt.Sprintf("%s/boosters/%s/accounts/%s?reference=x", ts.URL, boosterAddr, alice))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEscrowRoute(t *testing.T) {
	_, ts := newTestServer(t)

	var acc escrows.Account
	getJSON(t, fmt.Sprintf("%s/escrows/%s/accounts/%s?now=%d", ts.URL, escrowAddr, alice, t0+9*thor.Day), &acc)
	assert.Equal(t, baseToken, acc.BaseToken)
	assert.Equal(t, escrow.TokenAddress(escrowAddr), acc.EscrowToken)
	assert.Equal(t, bn.Units(30), acc.EscrowBalance)
	assert.Equal(t, bn.Units(20), acc.Position.Amount)
	assert.Equal(t, bn.Units(2), acc.Claimable)
	assert.Equal(t, thor.DefaultVestingPeriod, acc.VestingPeriod)
}

func TestTreasuryRoute(t *testing.T) {
	_, ts := newTestServer(t)

	var acc treasuries.Account
	getJSON(t, fmt.Sprintf("%s/treasuries/%s/accounts/%s?now=%d", ts.URL, treasuryAddr, alice, t0+1), &acc)
	assert.Equal(t, bn.Units(20), acc.ReceiptBalance)
	require.Len(t, acc.Deposits, 1)
	assert.True(t, acc.Withdrawable.IsZero())

	getJSON(t, fmt.Sprintf("%s/treasuries/%s/accounts/%s?now=%d", ts.URL, treasuryAddr, alice, t0+thor.DefaultLockPeriod), &acc)
	assert.Equal(t, bn.Units(20), acc.Withdrawable)
}

func TestEventsRoute(t *testing.T) {
	_, ts := newTestServer(t)

	var events []*logdb.Event
	getJSON(t, fmt.Sprintf("%s/events?address=%s&name=%s", ts.URL, poolAddr, tx.EventStaked), &events)
	require.Len(t, events, 1)
	assert.Equal(t, alice, events[0].Account)
	assert.Equal(t, bn.Units(10), events[0].Amount)

	getJSON(t, fmt.Sprintf("%s/events?name=%s&order=desc&limit=1", ts.URL, tx.EventTransfer), &events)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(2), events[0].Seq)

	getJSON(t, ts.URL+"/events?from=1&to=2", &events)
	assert.Empty(t, events)

	_, code := httpGet(t, ts.URL+"/events?limit=101")
	assert.Equal(t, http.StatusForbidden, code)
	_, code = httpGet(t, ts.URL+"/events?order=up")
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = httpGet(t, ts.URL+"/events?from=3&to=2")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSubscribeEvents(t *testing.T) {
	rt, ts := newTestServer(t)

	u := url.URL{
		Scheme:   "ws",
		Host:     strings.TrimPrefix(ts.URL, "http://"),
		Path:     "/subscriptions/events",
		RawQuery: "name=" + tx.EventRewardPaid,
	}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	execute(t, rt, t0+100, alice, func() error {
		return rt.Pool(poolAddr).GetReward(alice, t0+100)
	})

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev logdb.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, tx.EventRewardPaid, ev.Name)
	assert.Equal(t, alice, ev.Account)
	assert.Equal(t, rewardToken, ev.Token)
	assert.Equal(t, bn.Units(1), ev.Amount)
	assert.Equal(t, t0+100, ev.Time)
}

func TestMetricsMiddleware(t *testing.T) {
	_, ts := newTestServer(t)

	httpGet(t, ts.URL+"/pools/"+poolAddr.String())
	httpGet(t, ts.URL+"/pools/"+rewardToken.String())
	httpGet(t, ts.URL+"/not/a/route")

	mts := httptest.NewServer(metrics.HTTPHandler())
	defer mts.Close()
	body, code := httpGet(t, mts.URL)
	require.Equal(t, http.StatusOK, code)

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)

	family, ok := families["rewards_api_request_count"]
	require.True(t, ok)
	assert.Equal(t, dto.MetricType_COUNTER, family.GetType())
	counts := make(map[string]float64)
	for _, m := range family.GetMetric() {
		labels := make(map[string]string)
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		if labels["name"] == "GET /pools/{pool}" {
			counts[labels["code"]] += m.GetCounter().GetValue()
		}
	}
	assert.GreaterOrEqual(t, counts["200"], float64(1))
	assert.GreaterOrEqual(t, counts["404"], float64(1))
}
