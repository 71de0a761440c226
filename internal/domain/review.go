package domain

import "time"

// DeveloperResponse is the optional reply attached to an App Store review.
// Modified stays in wire form (YYYY-MM-DDTHH:MM:SSZ); the normalizer parses it.
type DeveloperResponse struct {
	ID       int64
	Body     string
	Modified string
}

type AppStoreReview struct {
	Date              time.Time
	Title             string
	Review            string
	Rating            int // 1-5
	IsEdited          bool
	UserName          string
	DeveloperResponse *DeveloperResponse
}

type PlayStoreReview struct {
	ReviewID             string
	UserName             string
	UserImage            string
	Content              string
	Score                int // 1-5
	ThumbsUpCount        int
	ReviewCreatedVersion string
	At                   time.Time
	ReplyContent         *string    // nil when no developer reply
	RepliedAt            *time.Time // nil when no developer reply
	AppVersion           string
}

// Sort selects the Play Store review ordering. Values match the wire protocol.
type Sort int

const (
	SortMostRelevant Sort = 1
	SortNewest       Sort = 2
	SortRating       Sort = 3
)

// ContinuationToken resumes a paginated Play Store query where the previous
// page left off. The zero value requests the first page.
type ContinuationToken string
