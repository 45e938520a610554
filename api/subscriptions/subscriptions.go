// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/vechain/rewards/api/utils"
	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/runtime"
	"github.com/vechain/rewards/tx"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	receiptQueueSize = 64
)

type Subscriptions struct {
	rt       *runtime.Runtime
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

func New(rt *runtime.Runtime, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		rt: rt,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// matches reports whether ev satisfies every set field of criteria.
func matches(criteria *logdb.EventCriteria, ev *tx.Event) bool {
	if criteria.Address != nil && *criteria.Address != ev.Address {
		return false
	}
	if criteria.Name != nil && *criteria.Name != ev.Name {
		return false
	}
	if criteria.Account != nil && *criteria.Account != ev.Account {
		return false
	}
	if criteria.Token != nil && *criteria.Token != ev.Token {
		return false
	}
	return true
}

func parseCriteria(req *http.Request) (*logdb.EventCriteria, error) {
	var (
		criteria logdb.EventCriteria
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
	if name := req.URL.Query().Get("name"); name != "" {
		criteria.Name = &name
	}
	return &criteria, nil
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	criteria, err := parseCriteria(req)
	if err != nil {
		return err
	}

	// subscribe before the handshake completes, so no receipt executed after it is missed
	receipts := make(chan *tx.Receipt, receiptQueueSize)
	sub := s.rt.SubscribeReceipts(receipts)
	defer sub.Unsubscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	s.wg.Add(1)
	defer s.wg.Done()

	if err := s.pipe(conn, criteria, receipts, sub); err != nil {
		logger.Debug("subscription closed", "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, criteria *logdb.EventCriteria, receipts <-chan *tx.Receipt, sub event.Subscription) error {
	defer conn.Close()

	// the read loop only serves control frames and detects the peer going away
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		case <-closed:
			return nil
		case <-sub.Err():
			return conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case receipt := <-receipts:
			if receipt.Reverted {
				continue
			}
			for i, ev := range receipt.Events {
				if !matches(criteria, ev) {
					continue
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(logdb.NewEvent(receipt, uint32(i), ev)); err != nil {
					return nil
				}
			}
		}
	}
}

// Close ends every open subscription and waits for them to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
