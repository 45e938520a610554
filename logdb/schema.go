// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

const eventTableSchema = `
create table if not exists event (
	seq integer,
	eventIndex integer,
	time integer,
	origin blob(20),
	op text,
	address blob(20),
	name text,
	account blob(20),
	sender blob(20),
	token blob(20),
	amount blob(32),
	duration integer,
	primary key (seq, eventIndex)
);

create index if not exists eventTimeIndex on event(time);
create index if not exists eventAddressIndex on event(address);
create index if not exists eventNameIndex on event(name);
create index if not exists eventAccountIndex on event(account);
`

const eventColumns = "seq, eventIndex, time, origin, op, address, name, account, sender, token, amount, duration"
