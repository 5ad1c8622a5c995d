package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierOf_Thresholds(t *testing.T) {
	testCases := []struct {
		value int
		want  Rating
	}{
		{value: -100, want: RatingHate},
		{value: -4, want: RatingHate},
		{value: -3, want: RatingNormal},
		{value: 0, want: RatingNormal},
		{value: 3, want: RatingNormal},
		{value: 4, want: RatingLike},
		{value: 7, want: RatingLike},
		{value: 8, want: RatingBestFriend},
		{value: 19, want: RatingBestFriend},
		{value: 20, want: RatingPartner},
		{value: 1000, want: RatingPartner},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, TierOf(tc.value), "rating %d", tc.value)
	}
}

func TestTierOf_Monotonic(t *testing.T) {
	prev := TierOf(-50)
	for r := -49; r <= 50; r++ {
		tier := TierOf(r)
		assert.GreaterOrEqual(t, int(tier), int(prev), "tier decreased at %d", r)
		prev = tier
	}
}

func TestRating_String(t *testing.T) {
	assert.Equal(t, "best_friend", RatingBestFriend.String())
	assert.Equal(t, "unknown", Rating(42).String())
	assert.True(t, RatingPartner.AtLeast(RatingLike))
	assert.False(t, RatingNormal.AtLeast(RatingLike))
}
