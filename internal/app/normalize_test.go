package app_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"revscrap/internal/app"
	"revscrap/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func newNormalizer(t *testing.T) *app.Normalizer {
	t.Helper()
	n, err := app.NewNormalizer()
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	return n
}

func TestNormalizer_AppStoreTable(t *testing.T) {
	n := newNormalizer(t)

	revs := []domain.AppStoreReview{
		{
			Date:     time.Date(2023, 3, 5, 12, 30, 0, 0, time.UTC),
			Title:    "Great",
			Review:   " app",
			Rating:   5,
			UserName: "mario88",
			DeveloperResponse: &domain.DeveloperResponse{
				ID:       1,
				Body:     "Thanks!",
				Modified: "2023-03-06T10:00:00Z",
			},
		},
		{
			Date:     time.Date(2023, 4, 1, 8, 0, 0, 0, time.UTC),
			Title:    "Meh",
			Review:   "crashes a lot",
			Rating:   2,
			UserName: "luigi",
		},
	}

	table, err := n.AppStoreTable(revs)
	if err != nil {
		t.Fatalf("AppStoreTable: %v", err)
	}

	wantHeader := []string{"Datetime", "Username", "Review", "Rating", "Reply", "Reply Datetime"}
	if !reflect.DeepEqual(table.Header, wantHeader) {
		t.Fatalf("header: %v", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows: %d", len(table.Rows))
	}

	want0 := []string{"05/03/2023", "mario88", "Great app", "5", "Thanks!", "06/03/2023"}
	if !reflect.DeepEqual(table.Rows[0], want0) {
		t.Fatalf("row 0: %v", table.Rows[0])
	}
	want1 := []string{"01/04/2023", "luigi", "Mehcrashes a lot", "2", "", ""}
	if !reflect.DeepEqual(table.Rows[1], want1) {
		t.Fatalf("row 1: %v", table.Rows[1])
	}
}

func TestNormalizer_AppStoreTable_MalformedReplyDate(t *testing.T) {
	n := newNormalizer(t)

	revs := []domain.AppStoreReview{{
		Date:     time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC),
		UserName: "mario88",
		DeveloperResponse: &domain.DeveloperResponse{
			Body:     "Thanks!",
			Modified: "yesterday",
		},
	}}

	_, err := n.AppStoreTable(revs)
	var malformed *domain.MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedRecordError, got %v", err)
	}
	if malformed.Platform != domain.PlatformAppStore {
		t.Fatalf("platform: %s", malformed.Platform)
	}
	if malformed.Field != "developerResponse.modified" {
		t.Fatalf("field: %q", malformed.Field)
	}
}

func TestNormalizer_PlayStoreTable(t *testing.T) {
	n := newNormalizer(t)

	revs := []domain.PlayStoreReview{
		{
			UserName:      "anna",
			Content:       "super",
			Score:         4,
			ThumbsUpCount: 12,
			At:            time.Date(2023, 1, 15, 9, 0, 0, 0, time.UTC),
			ReplyContent:  ptr("grazie"),
			RepliedAt:     ptr(time.Date(2023, 1, 16, 10, 0, 0, 0, time.UTC)),
		},
		{
			UserName: "bruno",
			Content:  "won't start",
			Score:    1,
			At:       time.Date(2023, 2, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	table := n.PlayStoreTable(revs)

	wantHeader := []string{"Datetime", "Username", "Review", "Rating", "Reply", "Reply Datetime", "Thumbs Up"}
	if !reflect.DeepEqual(table.Header, wantHeader) {
		t.Fatalf("header: %v", table.Header)
	}

	want0 := []string{"15/01/2023", "anna", "super", "4", "grazie", "16/01/2023", "12"}
	if !reflect.DeepEqual(table.Rows[0], want0) {
		t.Fatalf("row 0: %v", table.Rows[0])
	}
	want1 := []string{"02/02/2023", "bruno", "won't start", "1", "", "", "0"}
	if !reflect.DeepEqual(table.Rows[1], want1) {
		t.Fatalf("row 1: %v", table.Rows[1])
	}
}

func TestNormalizer_StripsNewlines(t *testing.T) {
	n := newNormalizer(t)

	revs := []domain.PlayStoreReview{{
		UserName:     "a\nb",
		Content:      "line1\nline2\nline3",
		Score:        3,
		At:           time.Date(2023, 5, 5, 0, 0, 0, 0, time.UTC),
		ReplyContent: ptr("ok\nthanks"),
	}}

	table := n.PlayStoreTable(revs)
	want := []string{"05/05/2023", "ab", "line1line2line3", "3", "okthanks", "", "0"}
	if !reflect.DeepEqual(table.Rows[0], want) {
		t.Fatalf("row: %v", table.Rows[0])
	}
}

// A record that never carried a timestamp renders an empty datetime cell,
// not the zero date.
func TestNormalizer_ZeroTimeRendersEmpty(t *testing.T) {
	n := newNormalizer(t)

	table := n.PlayStoreTable([]domain.PlayStoreReview{{
		UserName: "dino",
		Content:  "ok",
		Score:    3,
	}})
	if got := table.Rows[0][0]; got != "" {
		t.Fatalf("datetime: %q", got)
	}
}

func TestNormalizer_EmptyInput(t *testing.T) {
	n := newNormalizer(t)

	table, err := n.AppStoreTable(nil)
	if err != nil {
		t.Fatalf("AppStoreTable: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Fatalf("rows: %d", len(table.Rows))
	}
	if len(table.Header) != 6 {
		t.Fatalf("header: %v", table.Header)
	}

	table = n.PlayStoreTable(nil)
	if len(table.Rows) != 0 || len(table.Header) != 7 {
		t.Fatalf("table: %+v", table)
	}
}

// Projection is a pure function of its input.
func TestNormalizer_Deterministic(t *testing.T) {
	n := newNormalizer(t)

	revs := []domain.PlayStoreReview{{
		UserName: "carla",
		Content:  "fine",
		Score:    5,
		At:       time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	}}

	first := n.PlayStoreTable(revs)
	second := n.PlayStoreTable(revs)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("tables differ:\n%+v\n%+v", first, second)
	}
}
