package ledger

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/dangidongi/internal/models"
)

func TestComputeSettlement_InsufficientParticipants(t *testing.T) {
	for _, names := range [][]string{nil, {"Solo"}} {
		l := newLedger(t, names...)
		plan, err := l.ComputeSettlement()
		assert.ErrorIs(t, err, ErrInsufficientParticipants)
		assert.Nil(t, plan)
	}
}

func TestComputeSettlement_OneCreditorTwoDebtors(t *testing.T) {
	// A fronts 60 weighted 1:3:2, leaving A +50, B -30, C -20.
	l := newLedger(t, "A", "B", "C")
	_, err := l.RecordWeightedPayment("A", Draft{Amount: 60, Weights: []Weight{{"A", 1}, {"B", 3}, {"C", 2}}})
	require.NoError(t, err)

	plan, err := l.ComputeSettlement()
	require.NoError(t, err)

	want := []models.Transfer{
		{From: "B", To: "A", Amount: 30},
		{From: "C", To: "A", Amount: 20},
	}
	if diff := cmp.Diff(want, plan, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("ComputeSettlement() mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, plan, 2)
	assert.Equal(t, "B should pay A 30.00", plan[0].String())
	assert.Equal(t, "C should pay A 20.00", plan[1].String())

	balances := map[string]float64{}
	for _, u := range l.Users() {
		balances[u.Name] = u.NetBalance
	}
	assert.InDelta(t, 50, balances["A"], 1e-9)
	assert.InDelta(t, -30, balances["B"], 1e-9)
	assert.InDelta(t, -20, balances["C"], 1e-9)

	// Applying the plan brings every balance to zero.
	for _, tr := range plan {
		balances[tr.From] += tr.Amount
		balances[tr.To] -= tr.Amount
	}
	for name, b := range balances {
		assert.InDelta(t, 0, b, 1e-6, name)
	}
}

func TestComputeSettlement_Deterministic(t *testing.T) {
	l := newLedger(t, "Ann", "Ben", "Cat", "Dan")
	_, err := l.RecordEqualPayment("Ann", 100)
	require.NoError(t, err)
	_, err = l.RecordEqualPayment("Ben", 100)
	require.NoError(t, err)
	_, err = l.RecordWeightedPayment("Cat", Draft{Amount: 17.35, Weights: []Weight{{"Ann", 1}, {"Ben", 2}, {"Cat", 3}, {"Dan", 4}}})
	require.NoError(t, err)

	first, err := l.ComputeSettlement()
	require.NoError(t, err)
	second, err := l.ComputeSettlement()
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("plans differ between runs:\n%s", diff)
	}
	assert.LessOrEqual(t, len(first), 3)
}

func TestComputeSettlement_Conservation(t *testing.T) {
	l := newLedger(t, "A", "B", "C")
	_, err := l.RecordEqualPayment("A", 10)
	require.NoError(t, err)
	_, err = l.RecordEqualPayment("B", 33.33)
	require.NoError(t, err)
	_, err = l.RecordWeightedPayment("C", Draft{Amount: 7.77, Weights: []Weight{{"A", 5}, {"B", 1}, {"C", 9}}})
	require.NoError(t, err)

	_, err = l.ComputeSettlement()
	require.NoError(t, err)

	var sum float64
	for _, u := range l.Users() {
		sum += u.NetBalance
	}
	assert.InDelta(t, 0, sum, 1e-6)
}

func TestComputeSettlement_SnapsDust(t *testing.T) {
	l := newLedger(t, "A", "B", "C")
	_, err := l.RecordEqualPayment("A", 0.1)
	require.NoError(t, err)
	_, err = l.RecordEqualPayment("B", 0.1)
	require.NoError(t, err)
	_, err = l.RecordEqualPayment("C", 0.1)
	require.NoError(t, err)

	plan, err := l.ComputeSettlement()
	require.NoError(t, err)
	assert.Empty(t, plan)
	for _, u := range l.Users() {
		assert.Equal(t, 0.0, u.NetBalance, u.Name)
	}
}

func TestComputeSettlement_RemovedParticipantHistory(t *testing.T) {
	l := newLedger(t, "A", "B", "C")
	_, err := l.RecordEqualPayment("A", 30)
	require.NoError(t, err)
	require.NoError(t, l.RemoveParticipant("C"))

	plan, err := l.ComputeSettlement()
	require.NoError(t, err)

	// C's 10 is untracked: A is owed 20, B owes only its own 10.
	want := []models.Transfer{{From: "B", To: "A", Amount: 10}}
	if diff := cmp.Diff(want, plan, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("ComputeSettlement() mismatch (-want +got):\n%s", diff)
	}
	u, _ := l.Participant("A")
	assert.InDelta(t, 20, u.NetBalance, 1e-9)
}

func TestComputeSettlement_ParticipantAddedLater(t *testing.T) {
	l := newLedger(t, "A", "B")
	_, err := l.RecordEqualPayment("A", 20)
	require.NoError(t, err)
	require.NoError(t, l.AddParticipant("C"))

	plan, err := l.ComputeSettlement()
	require.NoError(t, err)

	want := []models.Transfer{{From: "B", To: "A", Amount: 10}}
	if diff := cmp.Diff(want, plan, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("ComputeSettlement() mismatch (-want +got):\n%s", diff)
	}
	u, _ := l.Participant("C")
	assert.Zero(t, u.NetBalance)
}

func TestComputeSettlement_CustomEpsilon(t *testing.T) {
	l := New(WithEpsilon(0.5))
	require.NoError(t, l.AddParticipant("A"))
	require.NoError(t, l.AddParticipant("B"))
	_, err := l.RecordEqualPayment("A", 0.8)
	require.NoError(t, err)

	plan, err := l.ComputeSettlement()
	require.NoError(t, err)
	assert.Empty(t, plan, "a 0.4 balance is below the 0.5 tolerance")
	assert.Equal(t, 0.5, l.Epsilon())
}
