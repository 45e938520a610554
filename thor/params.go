// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// Time constants, in seconds.
const (
	Day uint64 = 24 * 60 * 60
)

// Fixed-point constants.
const (
	// Decimals is the implied number of fractional digits of every token amount.
	Decimals = 18
	// Scale is 10^Decimals, the fixed-point unit.
	Scale uint64 = 1e18
)

// Default contract parameters.
const (
	DefaultVestingPeriod = 90 * Day
	DefaultStakePeriod   = 30 * Day
	DefaultLockPeriod    = 7 * Day

	MaxBoostMultiple uint64 = 10 // boost rate cap, in multiples of the base reward
)
