// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventsFilter(t *testing.T) {
	events := Events{
		{Name: EventStaked},
		{Name: EventRewardPaid},
		{Name: EventStaked},
	}
	assert.Len(t, events.Filter(EventStaked), 2)
	assert.Len(t, events.Filter(EventWithdrawn), 0)
}
