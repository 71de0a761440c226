package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"revscrap/internal/domain"
)

// appStorePageSize is the catalog API's per-request review cap.
const appStorePageSize = 20

// tokenRE locates the bearer token inside the URL-encoded config blob
// embedded in a listing page.
var tokenRE = regexp.MustCompile(`token%22%3A%22(.+?)%22`)

// AppStore fetches reviews from the catalog API backing the store web pages.
// The API wants a bearer token that is only handed out inside the listing
// page markup, so every fetch starts by scraping the landing page for it.
type AppStore struct {
	apiBase string
	webBase string
	c       *client
}

func NewAppStore(apiBase, webBase string, rps int) *AppStore {
	if apiBase == "" {
		apiBase = "https://amp-api.apps.apple.com"
	}
	if webBase == "" {
		webBase = "https://apps.apple.com"
	}
	return &AppStore{apiBase: apiBase, webBase: webBase, c: newClient(rps)}
}

type appStorePage struct {
	Next string `json:"next"`
	Data []struct {
		Attributes appStoreAttributes `json:"attributes"`
	} `json:"data"`
}

type appStoreAttributes struct {
	Date              string `json:"date"`
	Review            string `json:"review"`
	Rating            int    `json:"rating"`
	IsEdited          bool   `json:"isEdited"`
	Title             string `json:"title"`
	UserName          string `json:"userName"`
	DeveloperResponse *struct {
		ID       int64  `json:"id"`
		Body     string `json:"body"`
		Modified string `json:"modified"`
	} `json:"developerResponse"`
}

// Reviews pulls up to limit reviews, paging the catalog API by offset until
// the feed ends or the cap is reached.
func (a *AppStore) Reviews(ctx context.Context, appName, appID, country string, limit int) ([]domain.AppStoreReview, error) {
	landing := fmt.Sprintf("%s/%s/app/%s/id%s", a.webBase, country, appName, appID)
	token, err := a.token(ctx, landing)
	if err != nil {
		return nil, err
	}

	var out []domain.AppStoreReview
	offset := 0
	for {
		u := fmt.Sprintf("%s/v1/catalog/%s/apps/%s/reviews?l=&offset=%d&limit=%d&platform=web&additionalPlatforms=appletv,ipad,iphone,mac",
			a.apiBase, country, appID, offset, appStorePageSize)
		body, err := a.c.do(ctx, "appstore", "reviews", func() (*http.Request, error) {
			r, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return nil, err
			}
			r.Header.Set("Accept", "application/json")
			r.Header.Set("Authorization", "bearer "+token)
			r.Header.Set("Origin", a.webBase)
			r.Header.Set("Referer", landing)
			return r, nil
		})
		if err != nil {
			return nil, err
		}

		var page appStorePage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("appstore: decode reviews: %w", err)
		}
		for _, item := range page.Data {
			rev, err := mapAppStoreReview(item.Attributes)
			if err != nil {
				return nil, err
			}
			out = append(out, rev)
		}

		next, ok := nextOffset(page.Next)
		if !ok || len(page.Data) == 0 || len(out) >= limit {
			break
		}
		offset = next
	}
	return out, nil
}

func (a *AppStore) token(ctx context.Context, landing string) (string, error) {
	body, err := a.c.do(ctx, "appstore", "landing", func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, landing, nil)
	})
	if err != nil {
		return "", err
	}
	m := tokenRE.FindSubmatch(body)
	if m == nil {
		return "", errors.New("appstore: no API token on landing page")
	}
	return string(m[1]), nil
}

func mapAppStoreReview(a appStoreAttributes) (domain.AppStoreReview, error) {
	date, err := time.Parse(time.RFC3339, a.Date)
	if err != nil {
		return domain.AppStoreReview{}, &domain.MalformedRecordError{Platform: domain.PlatformAppStore, Field: "date", Err: err}
	}
	rev := domain.AppStoreReview{
		Date:     date,
		Title:    a.Title,
		Review:   a.Review,
		Rating:   a.Rating,
		IsEdited: a.IsEdited,
		UserName: a.UserName,
	}
	if a.DeveloperResponse != nil {
		rev.DeveloperResponse = &domain.DeveloperResponse{
			ID:       a.DeveloperResponse.ID,
			Body:     a.DeveloperResponse.Body,
			Modified: a.DeveloperResponse.Modified,
		}
	}
	return rev, nil
}

// nextOffset pulls the offset query parameter out of the API's next link.
func nextOffset(next string) (int, bool) {
	if next == "" {
		return 0, false
	}
	u, err := url.Parse(next)
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(u.Query().Get("offset"))
	if err != nil {
		return 0, false
	}
	return n, true
}
