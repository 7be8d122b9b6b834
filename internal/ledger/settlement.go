package ledger

import (
	"github.com/mmynk/dangidongi/internal/calculator"
	"github.com/mmynk/dangidongi/internal/models"
)

// ComputeSettlement recomputes every participant's net balance from the
// transaction history and returns the transfers that bring everyone to zero.
//
// As a side effect the participants' NetBalance fields are refreshed (with
// floating dust snapped to zero). Nothing else in the ledger changes, so
// calling it twice in a row yields the same plan.
func (l *Ledger) ComputeSettlement() ([]models.Transfer, error) {
	if len(l.order) < 2 {
		return nil, ErrInsufficientParticipants
	}

	users := calculator.NetBalances(l.Users(), l.transactions)
	plan := calculator.MatchTransfers(users, l.eps)
	calculator.SnapToZero(users, l.eps)

	for _, u := range users {
		l.users[u.Name].NetBalance = u.NetBalance
	}
	return plan, nil
}
