// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auth keeps the capability policy of a built-in contract: one owner
// plus any number of accounts granted named roles. Contracts test the policy
// before dispatching an admin operation.
package auth

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/builtin/reverts"
	"github.com/vechain/rewards/builtin/solidity"
	"github.com/vechain/rewards/thor"
)

// Role names a capability.
type Role string

const (
	// RoleRewarder may fund reward schedules.
	RoleRewarder Role = "rewarder"
)

var (
	slotOwner = thor.BytesToBytes32([]byte("auth-owner"))
	slotRoles = thor.BytesToBytes32([]byte("auth-roles"))
)

type roleKey struct {
	role    Role
	account thor.Address
}

func (k roleKey) Bytes() []byte {
	return append([]byte(k.role), k.account.Bytes()...)
}

// Policy is bound to one contract's storage.
type Policy struct {
	owner *solidity.Address
	roles *solidity.Mapping[roleKey, bool]
}

func New(sctx *solidity.Context) *Policy {
	return &Policy{
		owner: solidity.NewAddress(sctx, slotOwner),
		roles: solidity.NewMapping[roleKey, bool](sctx, slotRoles),
	}
}

// Init sets the first owner. It fails if an owner is already set.
func (p *Policy) Init(owner thor.Address) error {
	if owner.IsZero() {
		return reverts.ErrUnauthorized
	}
	current, err := p.owner.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get owner")
	}
	if !current.IsZero() {
		return reverts.ErrAlreadyInitialized
	}
	p.owner.Set(&owner)
	return nil
}

func (p *Policy) Owner() (thor.Address, error) {
	owner, err := p.owner.Get()
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "failed to get owner")
	}
	return owner, nil
}

// TransferOwnership hands the contract over to a new owner.
func (p *Policy) TransferOwnership(caller, newOwner thor.Address) error {
	if err := p.RequireOwner(caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return reverts.ErrUnauthorized
	}
	p.owner.Set(&newOwner)
	return nil
}

func (p *Policy) RequireOwner(caller thor.Address) error {
	owner, err := p.Owner()
	if err != nil {
		return err
	}
	if owner.IsZero() {
		return reverts.ErrNotInitialized
	}
	if owner != caller {
		return reverts.ErrUnauthorized
	}
	return nil
}

// HasRole reports whether account holds the role. The owner holds every role.
func (p *Policy) HasRole(role Role, account thor.Address) (bool, error) {
	owner, err := p.Owner()
	if err != nil {
		return false, err
	}
	if !owner.IsZero() && owner == account {
		return true, nil
	}
	granted, err := p.roles.Get(roleKey{role, account})
	if err != nil {
		return false, errors.Wrap(err, "failed to get role")
	}
	return granted, nil
}

func (p *Policy) Require(role Role, caller thor.Address) error {
	ok, err := p.HasRole(role, caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.ErrUnauthorized
	}
	return nil
}

func (p *Policy) Grant(caller thor.Address, role Role, account thor.Address) error {
	if err := p.RequireOwner(caller); err != nil {
		return err
	}
	if err := p.roles.Set(roleKey{role, account}, true); err != nil {
		return errors.Wrap(err, "failed to set role")
	}
	return nil
}

func (p *Policy) Revoke(caller thor.Address, role Role, account thor.Address) error {
	if err := p.RequireOwner(caller); err != nil {
		return err
	}
	p.roles.Delete(roleKey{role, account})
	return nil
}
