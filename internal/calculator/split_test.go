package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestFairShares(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		weights []uint8
		want    []float64
		wantErr error
	}{
		{
			name:    "weighted three-person split",
			amount:  40.0,
			weights: []uint8{2, 1, 1},
			want:    []float64{20.0, 10.0, 10.0},
		},
		{
			name:    "equal weights",
			amount:  90.0,
			weights: []uint8{1, 1, 1},
			want:    []float64{30.0, 30.0, 30.0},
		},
		{
			name:    "single participant takes everything",
			amount:  12.5,
			weights: []uint8{7},
			want:    []float64{12.5},
		},
		{
			name:    "large weights do not overflow",
			amount:  510.0,
			weights: []uint8{255, 255},
			want:    []float64{255.0, 255.0},
		},
		{
			name:    "zero weight should error",
			amount:  10.0,
			weights: []uint8{1, 0},
			wantErr: ErrZeroWeight,
		},
		{
			name:    "no participants should error",
			amount:  10.0,
			weights: []uint8{},
			wantErr: ErrNoParticipants,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := FairShares(tt.amount, tt.weights)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FairShares() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(shares) != len(tt.want) {
				t.Fatalf("FairShares() returned %d shares, want %d", len(shares), len(tt.want))
			}
			var sum float64
			for i := range shares {
				if math.Abs(shares[i]-tt.want[i]) > 1e-9 {
					t.Errorf("share[%d] = %v, want %v", i, shares[i], tt.want[i])
				}
				sum += shares[i]
			}
			if math.Abs(sum-tt.amount) > 1e-9 {
				t.Errorf("shares sum to %v, want %v", sum, tt.amount)
			}
		})
	}
}

func TestEqualShares(t *testing.T) {
	shares, err := EqualShares(100, 3)
	if err != nil {
		t.Fatalf("EqualShares failed: %v", err)
	}
	for i, s := range shares {
		if math.Abs(s-100.0/3) > 1e-9 {
			t.Errorf("share[%d] = %v, want %v", i, s, 100.0/3)
		}
	}

	if _, err := EqualShares(100, 0); !errors.Is(err, ErrNoParticipants) {
		t.Errorf("EqualShares(100, 0) error = %v, want ErrNoParticipants", err)
	}
}
