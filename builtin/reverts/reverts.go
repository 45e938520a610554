// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"

	"github.com/vechain/rewards/bn"
)

// Precondition and authorization failures. A call failing with one of these
// has left no effect; match with errors.Is.
var (
	ErrInvalidAmount       = New("invalid amount")
	ErrInsufficientBalance = New("insufficient balance")
	ErrInvalidRewardParams = New("invalid reward params")
	ErrNotReady            = New("not ready")
	ErrNothingToClaim      = New("nothing to claim")
	ErrNothingToUnstake    = New("nothing to unstake")
	ErrLocked              = New("locked")
	ErrAlreadyDeployed     = New("already deployed")
	ErrUnauthorized        = New("unauthorized")
	ErrTokenNotEnabled     = New("token not enabled")
	ErrTokenAlreadyAdded   = New("token already added")
	ErrNonTransferable     = New("non-transferable")
	ErrTransferFailed      = New("transfer failed")
	ErrOverflow            = New("arithmetic overflow")
	ErrNotInitialized      = New("not initialized")
	ErrAlreadyInitialized  = New("already initialized")
)

type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// IsRevertErr reports whether err aborts a call as a domain failure, as opposed
// to an infrastructure failure. Checked arithmetic failures count as reverts.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve) || bn.IsArithmeticErr(e)
}

// Checked maps a checked arithmetic failure to ErrOverflow, keeping the cause.
// Other errors pass through.
func Checked(err error) error {
	if err != nil && bn.IsArithmeticErr(err) && !errors.Is(err, ErrOverflow) {
		return fmt.Errorf("%w: %w", ErrOverflow, err)
	}
	return err
}
