package domain

import "context"

// AppStoreClient answers one bulk review query. Implementations may page
// internally; callers must not trust limit to be respected exactly.
type AppStoreClient interface {
	Reviews(ctx context.Context, appName, appID, country string, limit int) ([]AppStoreReview, error)
}

// PlayStoreClient answers one review page per call. The returned token
// resumes iteration; an empty page signals exhaustion.
type PlayStoreClient interface {
	ReviewsPage(ctx context.Context, req ReviewsPageRequest) ([]PlayStoreReview, ContinuationToken, error)
}

type ReviewsPageRequest struct {
	AppID   string
	Lang    string
	Country string
	Count   int
	Sort    Sort
	Token   ContinuationToken // zero value: first page
}
