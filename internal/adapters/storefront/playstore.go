package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"revscrap/internal/domain"
)

// playRPCID is the batchexecute RPC serving the review feed of a listing page.
const playRPCID = "UsvDTd"

// PlayStore fetches review pages through the store web app's private
// batchexecute endpoint, the same call the public listing page issues when
// the visitor scrolls the review feed. There is no documented API; request
// and response shapes follow the web app's positional envelopes.
type PlayStore struct {
	base string
	c    *client
}

func NewPlayStore(base string, rps int) *PlayStore {
	if base == "" {
		base = "https://play.google.com"
	}
	return &PlayStore{base: base, c: newClient(rps)}
}

func (p *PlayStore) ReviewsPage(ctx context.Context, req domain.ReviewsPageRequest) ([]domain.PlayStoreReview, domain.ContinuationToken, error) {
	form, err := reviewsForm(req)
	if err != nil {
		return nil, "", err
	}
	u := fmt.Sprintf("%s/_/PlayStoreUi/data/batchexecute?hl=%s&gl=%s",
		p.base, url.QueryEscape(req.Lang), url.QueryEscape(req.Country))

	body, err := p.c.do(ctx, "playstore", "batchexecute", func() (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
		return r, nil
	})
	if err != nil {
		return nil, "", err
	}
	return parseReviewsPage(body)
}

// reviewsForm renders the f.req form field: an envelope holding the RPC id
// and the request payload, itself a JSON array serialized into a string.
func reviewsForm(req domain.ReviewsPageRequest) (string, error) {
	count := req.Count
	if count <= 0 {
		count = 150
	}
	sort := req.Sort
	if sort == 0 {
		sort = domain.SortNewest
	}
	paging := []any{count, nil, nil}
	if req.Token != "" {
		paging[2] = string(req.Token)
	}
	inner, err := json.Marshal([]any{nil, nil, []any{2, int(sort), paging, nil, []any{}}, []any{req.AppID, 7}})
	if err != nil {
		return "", err
	}
	envelope, err := json.Marshal([]any{[]any{[]any{playRPCID, string(inner), nil, "generic"}}})
	if err != nil {
		return "", err
	}
	v := url.Values{}
	v.Set("f.req", string(envelope))
	return v.Encode(), nil
}

// parseReviewsPage unwraps the double-encoded response. Bodies open with an
// anti-XSSI prefix before the JSON; the first envelope frame carries the RPC
// payload as a JSON string whose element 0 lists the reviews and whose last
// element ends with the next continuation token, absent on the final page.
func parseReviewsPage(body []byte) ([]domain.PlayStoreReview, domain.ContinuationToken, error) {
	i := bytes.IndexByte(body, '[')
	if i < 0 {
		return nil, "", fmt.Errorf("batchexecute: no JSON in response")
	}
	var envelope []any
	if err := json.Unmarshal(body[i:], &envelope); err != nil {
		return nil, "", fmt.Errorf("batchexecute: decode envelope: %w", err)
	}
	raw, ok := at(envelope, 0, 2).(string)
	if !ok {
		return nil, "", fmt.Errorf("batchexecute: missing payload frame")
	}
	var payload []any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, "", fmt.Errorf("batchexecute: decode payload: %w", err)
	}

	items, _ := at(payload, 0).([]any)
	revs := make([]domain.PlayStoreReview, 0, len(items))
	for _, it := range items {
		rev, err := mapPlayReview(it)
		if err != nil {
			return nil, "", err
		}
		revs = append(revs, rev)
	}
	token, _ := at(payload, -1, -1).(string)
	return revs, domain.ContinuationToken(token), nil
}

// mapPlayReview extracts one review from its positional array. Index paths
// follow the store web app; absent optional elements map to zero values.
func mapPlayReview(v any) (domain.PlayStoreReview, error) {
	rev := domain.PlayStoreReview{
		ReviewID:             atStr(v, 0),
		UserName:             atStr(v, 1, 0),
		UserImage:            atStr(v, 1, 1, 3, 2),
		Content:              atStr(v, 4),
		ReviewCreatedVersion: atStr(v, 10),
		AppVersion:           atStr(v, 10),
	}
	if rev.UserName == "" {
		return rev, &domain.MalformedRecordError{Platform: domain.PlatformPlayStore, Field: "userName"}
	}
	score, ok := atInt(v, 2)
	if !ok {
		return rev, &domain.MalformedRecordError{Platform: domain.PlatformPlayStore, Field: "score"}
	}
	rev.Score = score
	sec, ok := atInt64(v, 5, 0)
	if !ok {
		return rev, &domain.MalformedRecordError{Platform: domain.PlatformPlayStore, Field: "at"}
	}
	rev.At = time.Unix(sec, 0).UTC()
	if n, ok := atInt(v, 6); ok {
		rev.ThumbsUpCount = n
	}
	if s, ok := at(v, 7, 1).(string); ok {
		rev.ReplyContent = &s
	}
	if sec, ok := atInt64(v, 7, 2, 0); ok {
		t := time.Unix(sec, 0).UTC()
		rev.RepliedAt = &t
	}
	return rev, nil
}

// at walks nested positional arrays; negative indices count from the end.
func at(v any, idxs ...int) any {
	for _, i := range idxs {
		arr, ok := v.([]any)
		if !ok {
			return nil
		}
		if i < 0 {
			i += len(arr)
		}
		if i < 0 || i >= len(arr) {
			return nil
		}
		v = arr[i]
	}
	return v
}

// atStr returns the string at the path or "".
func atStr(v any, idxs ...int) string {
	s, _ := at(v, idxs...).(string)
	return s
}

func atInt(v any, idxs ...int) (int, bool) {
	f, ok := at(v, idxs...).(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func atInt64(v any, idxs ...int) (int64, bool) {
	f, ok := at(v, idxs...).(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
