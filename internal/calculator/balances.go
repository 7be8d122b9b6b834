package calculator

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/mmynk/dangidongi/internal/models"
)

// DefaultEpsilon is the tolerance below which a balance is treated as zero.
const DefaultEpsilon = 1e-6

// NetBalances recomputes every user's net balance from the transaction history.
// It returns copies of users with NetBalance = AmountPaid - Σ fair shares.
//
// A transaction with no share for a user contributes 0 to that user. Shares
// held under names that match no user (participants removed after the
// transaction was recorded) are not attributed to anyone.
func NetBalances(users []models.User, transactions []models.Transaction) []models.User {
	owed := make(map[string]float64, len(users))
	for _, tx := range transactions {
		for _, s := range tx.Shares {
			owed[s.Name] += s.FairShare
		}
	}

	out := make([]models.User, len(users))
	for i, u := range users {
		u.NetBalance = u.AmountPaid - owed[u.Name]
		out[i] = u
	}
	return out
}

type position struct {
	name      string
	remaining float64
}

// MatchTransfers builds a settlement plan from net balances using greedy
// matching between creditors and debtors.
//
// Algorithm:
//   - creditors (balance > eps) sorted by balance descending
//   - debtors (balance < -eps) sorted by balance ascending, most indebted first
//   - at each step the current debtor pays the current creditor
//     min(credit, debt), and whichever side reaches zero (within eps) advances
//
// The plan has at most |creditors| + |debtors| - 1 transfers. Ties are broken
// by name so the plan is deterministic.
func MatchTransfers(users []models.User, eps float64) []models.Transfer {
	var creditors, debtors []position
	for _, u := range users {
		switch {
		case u.NetBalance > eps:
			creditors = append(creditors, position{u.Name, u.NetBalance})
		case u.NetBalance < -eps:
			debtors = append(debtors, position{u.Name, u.NetBalance})
		}
	}

	slices.SortStableFunc(creditors, func(a, b position) int {
		if c := cmp.Compare(b.remaining, a.remaining); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	slices.SortStableFunc(debtors, func(a, b position) int {
		if c := cmp.Compare(a.remaining, b.remaining); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})

	var transfers []models.Transfer
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		amount := math.Min(creditors[i].remaining, -debtors[j].remaining)

		transfers = append(transfers, models.Transfer{
			From:   debtors[j].name,
			To:     creditors[i].name,
			Amount: amount,
		})

		creditors[i].remaining -= amount
		debtors[j].remaining += amount // debtors hold negative values

		if creditors[i].remaining <= eps {
			i++
		}
		if debtors[j].remaining >= -eps {
			j++
		}
	}

	return transfers
}

// SnapToZero sets every net balance within eps of zero to exactly zero.
func SnapToZero(users []models.User, eps float64) {
	for i := range users {
		if math.Abs(users[i].NetBalance) <= eps {
			users[i].NetBalance = 0
		}
	}
}
