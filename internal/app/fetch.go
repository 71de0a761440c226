package app

import (
	"context"
	"math"

	"revscrap/internal/domain"
)

// playStorePageSize is the page size of every Play Store request; the service
// shows at most 150 reviews per page.
const playStorePageSize = 150

// Defaults matching the original tool: Italian storefront, effectively
// unbounded App Store fetches, a 100k cap for the Play Store.
const (
	DefaultCountry        = "it"
	DefaultLang           = "it"
	DefaultPlayStoreLimit = 100000
)

// FetchOptions are the service-level fetch defaults. Per-request overrides
// come in through ExportParams.
type FetchOptions struct {
	Country        string
	Lang           string
	AppStoreLimit  int // 0: unbounded
	PlayStoreLimit int // 0: DefaultPlayStoreLimit
}

func (o FetchOptions) withDefaults() FetchOptions {
	if o.Country == "" {
		o.Country = DefaultCountry
	}
	if o.Lang == "" {
		o.Lang = DefaultLang
	}
	if o.AppStoreLimit <= 0 {
		o.AppStoreLimit = math.MaxInt
	}
	if o.PlayStoreLimit <= 0 {
		o.PlayStoreLimit = DefaultPlayStoreLimit
	}
	return o
}

// fetchAppStore issues the single bulk query, then truncates to limit: the
// external service is not trusted to respect the cap exactly.
func (s *ExportService) fetchAppStore(ctx context.Context, t domain.Target, country string, limit int) ([]domain.AppStoreReview, error) {
	revs, err := s.appstore.Reviews(ctx, t.AppName, t.AppID, country, limit)
	if err != nil {
		return nil, &domain.FetchError{Platform: domain.PlatformAppStore, Err: err}
	}
	if len(revs) > limit {
		revs = revs[:limit]
	}
	return revs, nil
}

// fetchPlayStore pages through the review feed newest-first, threading the
// continuation token from each response into the next request. Another page
// is fetched only while the accumulated count is below limit and the last
// page was non-empty; a page without a continuation token ends the feed,
// since there is nothing to resume from. The result may overshoot limit by
// up to one page and is deliberately not truncated.
func (s *ExportService) fetchPlayStore(ctx context.Context, t domain.Target, country, lang string, limit int) ([]domain.PlayStoreReview, error) {
	var (
		out   []domain.PlayStoreReview
		token domain.ContinuationToken
	)
	for len(out) < limit {
		page, next, err := s.playstore.ReviewsPage(ctx, domain.ReviewsPageRequest{
			AppID:   t.AppID,
			Lang:    lang,
			Country: country,
			Count:   playStorePageSize,
			Sort:    domain.SortNewest,
			Token:   token,
		})
		if err != nil {
			return nil, &domain.FetchError{Platform: domain.PlatformPlayStore, Err: err}
		}
		if len(page) == 0 {
			break
		}
		out = append(out, page...)
		if next == "" {
			break
		}
		token = next
	}
	return out, nil
}
