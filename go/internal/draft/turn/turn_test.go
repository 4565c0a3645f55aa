package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerSnakeOrderFourSeats(t *testing.T) {
	want := []int{0, 1, 2, 3, 3, 2, 1, 0, 0, 1, 2, 3, 3, 2, 1, 0}
	for i, seat := range want {
		pick := i + 1
		assert.Equalf(t, seat, Owner(pick, 4), "pick %d", pick)
	}
}

func TestOwnerSnakeOrderTwoSeats(t *testing.T) {
	// n=2: rounds alternate 0,1 then 1,0
	want := []int{0, 1, 1, 0, 0, 1, 1, 0}
	for i, seat := range want {
		assert.Equal(t, seat, Owner(i+1, 2))
	}
}

func TestOwnerIsReferentiallyTransparent(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Equal(t, Owner(7, 4), Owner(7, 4))
	}
}

func TestOwnerRejectsBadInput(t *testing.T) {
	assert.Equal(t, -1, Owner(0, 4))
	assert.Equal(t, -1, Owner(1, 0))
	assert.Equal(t, -1, Owner(-3, 4))
}

func TestRound(t *testing.T) {
	cases := []struct {
		pick, n, want int
	}{
		{1, 4, 1},
		{4, 4, 1},
		{5, 4, 2},
		{8, 4, 2},
		{9, 4, 3},
		{16, 4, 4},
		{1, 2, 1},
		{3, 2, 2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Round(tc.pick, tc.n))
	}
}

func TestNextEligibleAdvancesOnePick(t *testing.T) {
	nobodyDone := func(seat int) bool { return false }

	pick, seat, ok := NextEligible(1, 4, 4, nobodyDone)
	require.True(t, ok)
	assert.Equal(t, 2, pick)
	assert.Equal(t, 1, seat)

	// end of round one reverses into round two
	pick, seat, ok = NextEligible(4, 4, 4, nobodyDone)
	require.True(t, ok)
	assert.Equal(t, 5, pick)
	assert.Equal(t, 3, seat)
}

func TestNextEligibleSkipsCompletedSeats(t *testing.T) {
	// seat 3 finished early; after pick 4 the turn must jump past it
	done := map[int]bool{3: true}
	pick, seat, ok := NextEligible(4, 4, 4, func(s int) bool { return done[s] })
	require.True(t, ok)
	assert.Equal(t, 6, pick, "pick 5 belongs to seat 3 and must be skipped")
	assert.Equal(t, 2, seat)
}

func TestNextEligibleAllComplete(t *testing.T) {
	_, _, ok := NextEligible(16, 4, 4, func(int) bool { return true })
	assert.False(t, ok)
}

func TestNextEligibleSingleOpenSeat(t *testing.T) {
	// only seat 1 still has open slots
	pick, seat, ok := NextEligible(10, 4, 4, func(s int) bool { return s != 1 })
	require.True(t, ok)
	assert.Equal(t, 1, seat)
	assert.Equal(t, 1, Owner(pick, 4))
}
