package app_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"revscrap/internal/app"
	"revscrap/internal/domain"
)

type fakeAppStore struct {
	revs       []domain.AppStoreReview
	err        error
	gotName    string
	gotID      string
	gotCountry string
	gotLimit   int
	calls      int
}

func (f *fakeAppStore) Reviews(_ context.Context, appName, appID, country string, limit int) ([]domain.AppStoreReview, error) {
	f.calls++
	f.gotName, f.gotID, f.gotCountry, f.gotLimit = appName, appID, country, limit
	if f.err != nil {
		return nil, f.err
	}
	return f.revs, nil
}

type fakePlayStore struct {
	pages     [][]domain.PlayStoreReview
	repeat    bool // serve the last page again once pages run out
	noToken   bool // payloads carry no continuation token
	err       error
	gotTokens []domain.ContinuationToken
	gotReqs   []domain.ReviewsPageRequest
	calls     int
}

func (f *fakePlayStore) ReviewsPage(_ context.Context, req domain.ReviewsPageRequest) ([]domain.PlayStoreReview, domain.ContinuationToken, error) {
	f.calls++
	f.gotTokens = append(f.gotTokens, req.Token)
	f.gotReqs = append(f.gotReqs, req)
	if f.err != nil {
		return nil, "", f.err
	}
	i := f.calls - 1
	if i >= len(f.pages) {
		if !f.repeat || len(f.pages) == 0 {
			return nil, "", nil
		}
		i = len(f.pages) - 1
	}
	if f.noToken {
		return f.pages[i], "", nil
	}
	return f.pages[i], domain.ContinuationToken(fmt.Sprintf("tok-%d", f.calls)), nil
}

func playReviews(n int) []domain.PlayStoreReview {
	revs := make([]domain.PlayStoreReview, n)
	for i := range revs {
		revs[i] = domain.PlayStoreReview{
			ReviewID: fmt.Sprintf("r-%d", i),
			UserName: "user",
			Content:  "ok",
			Score:    5,
			At:       time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	return revs
}

func newService(t *testing.T, as domain.AppStoreClient, ps domain.PlayStoreClient, opts app.FetchOptions) *app.ExportService {
	t.Helper()
	svc, err := app.NewExportService(as, ps, opts)
	if err != nil {
		t.Fatalf("NewExportService: %v", err)
	}
	return svc
}

const (
	appStoreURL  = "https://apps.apple.com/it/app/enel-x-way/id1377291789"
	playStoreURL = "https://play.google.com/store/apps/details?id=com.enel.mobile.recharge2&hl=it&gl=US"
)

func TestExport_PlayStorePagination(t *testing.T) {
	ps := &fakePlayStore{pages: [][]domain.PlayStoreReview{
		playReviews(150),
		playReviews(150),
		playReviews(40),
	}}
	svc := newService(t, &fakeAppStore{}, ps, app.FetchOptions{})

	res, err := svc.Export(context.Background(), playStoreURL, app.ExportParams{Limit: 1000})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Rows != 340 {
		t.Fatalf("rows: %d", res.Rows)
	}
	if ps.calls != 4 {
		t.Fatalf("calls: %d", ps.calls)
	}
	wantTokens := []domain.ContinuationToken{"", "tok-1", "tok-2", "tok-3"}
	if !reflect.DeepEqual(ps.gotTokens, wantTokens) {
		t.Fatalf("tokens: %v", ps.gotTokens)
	}
	for _, req := range ps.gotReqs {
		if req.AppID != "com.enel.mobile.recharge2" {
			t.Fatalf("app id: %q", req.AppID)
		}
		if req.Sort != domain.SortNewest || req.Count != 150 {
			t.Fatalf("unexpected request: %+v", req)
		}
		if req.Lang != "it" || req.Country != "it" {
			t.Fatalf("locale defaults: %+v", req)
		}
	}
}

// A full last page may push the result past the limit; the overshoot is kept.
func TestExport_PlayStoreOvershootKept(t *testing.T) {
	ps := &fakePlayStore{pages: [][]domain.PlayStoreReview{playReviews(150)}, repeat: true}
	svc := newService(t, &fakeAppStore{}, ps, app.FetchOptions{})

	res, err := svc.Export(context.Background(), playStoreURL, app.ExportParams{Limit: 200})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if ps.calls != 2 {
		t.Fatalf("calls: %d", ps.calls)
	}
	if res.Rows != 300 {
		t.Fatalf("rows: %d", res.Rows)
	}
}

// A page that carries no continuation token ends the feed.
func TestExport_PlayStoreStopsWithoutToken(t *testing.T) {
	ps := &fakePlayStore{pages: [][]domain.PlayStoreReview{playReviews(150)}, repeat: true, noToken: true}
	svc := newService(t, &fakeAppStore{}, ps, app.FetchOptions{})

	res, err := svc.Export(context.Background(), playStoreURL, app.ExportParams{Limit: 1000})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if ps.calls != 1 {
		t.Fatalf("calls: %d", ps.calls)
	}
	if res.Rows != 150 {
		t.Fatalf("rows: %d", res.Rows)
	}
}

func TestExport_PlayStoreLocaleOverride(t *testing.T) {
	ps := &fakePlayStore{pages: [][]domain.PlayStoreReview{playReviews(1)}}
	svc := newService(t, &fakeAppStore{}, ps, app.FetchOptions{})

	_, err := svc.Export(context.Background(), playStoreURL, app.ExportParams{Country: "us", Lang: "en", Limit: 1})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if ps.gotReqs[0].Country != "us" || ps.gotReqs[0].Lang != "en" {
		t.Fatalf("locale: %+v", ps.gotReqs[0])
	}
}

func TestExport_AppStore(t *testing.T) {
	as := &fakeAppStore{revs: []domain.AppStoreReview{{
		Date:     time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC),
		Title:    "Great",
		Review:   " app",
		Rating:   5,
		UserName: "mario88",
	}}}
	svc := newService(t, as, &fakePlayStore{}, app.FetchOptions{})

	res, err := svc.Export(context.Background(), appStoreURL, app.ExportParams{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if as.gotName != "enel-x-way" || as.gotID != "1377291789" {
		t.Fatalf("target: %q %q", as.gotName, as.gotID)
	}
	if as.gotCountry != "it" {
		t.Fatalf("country: %q", as.gotCountry)
	}
	if as.gotLimit != math.MaxInt {
		t.Fatalf("limit: %d", as.gotLimit)
	}
	if res.Filename != "appstore_enel-x-way_reviews.csv" {
		t.Fatalf("filename: %q", res.Filename)
	}
	if res.ContentType != "text/csv; charset=utf-8" {
		t.Fatalf("content type: %q", res.ContentType)
	}
	if res.Rows != 1 {
		t.Fatalf("rows: %d", res.Rows)
	}
}

func TestExport_AppStoreTruncatesToLimit(t *testing.T) {
	as := &fakeAppStore{revs: []domain.AppStoreReview{
		{Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), UserName: "a"},
		{Date: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), UserName: "b"},
		{Date: time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), UserName: "c"},
		{Date: time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC), UserName: "d"},
		{Date: time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), UserName: "e"},
	}}
	svc := newService(t, as, &fakePlayStore{}, app.FetchOptions{})

	res, err := svc.Export(context.Background(), appStoreURL, app.ExportParams{Limit: 3})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if as.gotLimit != 3 {
		t.Fatalf("limit: %d", as.gotLimit)
	}
	if res.Rows != 3 {
		t.Fatalf("rows: %d", res.Rows)
	}
}

func TestExport_PlayStoreFilename(t *testing.T) {
	ps := &fakePlayStore{pages: [][]domain.PlayStoreReview{playReviews(1)}}
	svc := newService(t, &fakeAppStore{}, ps, app.FetchOptions{})

	res, err := svc.Export(context.Background(), playStoreURL, app.ExportParams{Limit: 1})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Filename != "playstore_com_enel_mobile_recharge2_reviews.csv" {
		t.Fatalf("filename: %q", res.Filename)
	}
}

func TestExport_WrapsClientErrors(t *testing.T) {
	cause := errors.New("boom")

	svc := newService(t, &fakeAppStore{err: cause}, &fakePlayStore{err: cause}, app.FetchOptions{})

	for _, tc := range []struct {
		url      string
		platform domain.Platform
	}{
		{appStoreURL, domain.PlatformAppStore},
		{playStoreURL, domain.PlatformPlayStore},
	} {
		_, err := svc.Export(context.Background(), tc.url, app.ExportParams{})
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("%s: expected FetchError, got %v", tc.platform, err)
		}
		if fetchErr.Platform != tc.platform {
			t.Fatalf("platform: %s", fetchErr.Platform)
		}
		if !errors.Is(err, cause) {
			t.Fatalf("cause not wrapped: %v", err)
		}
	}
}

func TestExport_UnsupportedURL(t *testing.T) {
	svc := newService(t, &fakeAppStore{}, &fakePlayStore{}, app.FetchOptions{})

	_, err := svc.Export(context.Background(), "https://example.com/reviews", app.ExportParams{})
	if !errors.Is(err, domain.ErrUnsupportedURL) {
		t.Fatalf("expected ErrUnsupportedURL, got %v", err)
	}
}

func TestExport_CSVRoundTrip(t *testing.T) {
	ps := &fakePlayStore{pages: [][]domain.PlayStoreReview{{
		{
			UserName: "anna",
			Content:  "good, \"but\" slow",
			Score:    4,
			At:       time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		},
	}}}
	svc := newService(t, &fakeAppStore{}, ps, app.FetchOptions{})

	res, err := svc.Export(context.Background(), playStoreURL, app.ExportParams{Limit: 1})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	wantPrefix := "Datetime,Username,Review,Rating,Reply,Reply Datetime,Thumbs Up\n"
	if !bytes.HasPrefix(res.Data, []byte(wantPrefix)) {
		t.Fatalf("data: %q", res.Data)
	}

	records, err := csv.NewReader(bytes.NewReader(res.Data)).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records: %d", len(records))
	}
	want := []string{"15/01/2023", "anna", `good, "but" slow`, "4", "", "", "0"}
	if !reflect.DeepEqual(records[1], want) {
		t.Fatalf("row: %v", records[1])
	}
}
