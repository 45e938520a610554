// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/rewards/api/utils"
	"github.com/vechain/rewards/logdb"
)

type Events struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Events {
	return &Events{
		db,
		logsLimit,
	}
}

// parseFilter reads a single criteria filter from the query string.
func (e *Events) parseFilter(req *http.Request) (*logdb.EventFilter, error) {
	var (
		criteria logdb.EventCriteria
		filter   = &logdb.EventFilter{}
		q        = req.URL.Query()
		err      error
	)
	if criteria.Address, err = utils.QueryAddress(req, "address"); err != nil {
		return nil, err
	}
	if criteria.Account, err = utils.QueryAddress(req, "account"); err != nil {
		return nil, err
	}
	if criteria.Token, err = utils.QueryAddress(req, "token"); err != nil {
		return nil, err
	}
	if name := q.Get("name"); name != "" {
		criteria.Name = &name
	}
	if criteria.Address != nil || criteria.Account != nil || criteria.Token != nil || criteria.Name != nil {
		filter.CriteriaSet = []*logdb.EventCriteria{&criteria}
	}

	if q.Has("from") || q.Has("to") {
		r := &logdb.Range{}
		if r.From, err = utils.QueryUint(req, "from", 0); err != nil {
			return nil, err
		}
		if r.To, err = utils.QueryUint(req, "to", math.MaxInt64); err != nil {
			return nil, err
		}
		if r.From > math.MaxInt64 || r.To > math.MaxInt64 {
			return nil, utils.BadRequest(fmt.Errorf("range exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
		}
		if r.From > r.To {
			return nil, utils.BadRequest(fmt.Errorf("from must be less than or equal to to"))
		}
		filter.Range = r
	}

	switch order := logdb.Order(q.Get("order")); order {
	case "", logdb.ASC:
		filter.Order = logdb.ASC
	case logdb.DESC:
		filter.Order = logdb.DESC
	default:
		return nil, utils.BadRequest(fmt.Errorf("order: unsupported value %q", order))
	}

	opts := &logdb.Options{}
	if opts.Offset, err = utils.QueryUint(req, "offset", 0); err != nil {
		return nil, err
	}
	if opts.Offset > math.MaxInt64 {
		return nil, utils.BadRequest(fmt.Errorf("offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	// one more than the limit, to detect an oversized result
	if opts.Limit, err = utils.QueryUint(req, "limit", e.limit+1); err != nil {
		return nil, err
	}
	if q.Has("limit") && opts.Limit > e.limit {
		return nil, utils.HTTPError(fmt.Errorf("limit exceeds the maximum allowed value of %d", e.limit), http.StatusForbidden)
	}
	filter.Options = opts
	return filter, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := e.parseFilter(req)
	if err != nil {
		return err
	}
	events, err := e.db.FilterEvents(req.Context(), filter)
	if err != nil {
		return err
	}
	// ensure the result size is less than the configured limit
	if uint64(len(events)) > e.limit {
		return utils.HTTPError(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit), http.StatusForbidden)
	}
	if events == nil {
		events = []*logdb.Event{}
	}
	return utils.WriteJSON(w, events)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
