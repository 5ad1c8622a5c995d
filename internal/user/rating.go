package user

// Rating is the affinity tier derived from a user's numeric rating.
type Rating int

const (
	RatingHate Rating = iota
	RatingNormal
	RatingLike
	RatingBestFriend
	RatingPartner
)

var ratingNames = [...]string{"hate", "normal", "like", "best_friend", "partner"}

func (r Rating) String() string {
	if r < RatingHate || r > RatingPartner {
		return "unknown"
	}
	return ratingNames[r]
}

// AtLeast reports whether r is the given tier or a friendlier one.
func (r Rating) AtLeast(other Rating) bool {
	return r >= other
}

// TierOf maps a stored rating value to its tier. It is recomputed on every read and never persisted.
func TierOf(value int) Rating {
	switch {
	case value < -3:
		return RatingHate
	case value < 4:
		return RatingNormal
	case value < 8:
		return RatingLike
	case value < 20:
		return RatingBestFriend
	default:
		return RatingPartner
	}
}
