package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"revscrap/internal/domain"
)

// Canonical output columns. Both platforms share the first six; the Play
// Store appends a trailing thumbs-up count.
const (
	colDatetime      = "Datetime"
	colUsername      = "Username"
	colReview        = "Review"
	colRating        = "Rating"
	colReply         = "Reply"
	colReplyDatetime = "Reply Datetime"
	colThumbsUp      = "Thumbs Up"
)

const dateLayout = "02/01/2006"

// columnSpec binds one output column to the cell extracted from a record.
// A platform's entries form an ordered mapping table; entry order is output
// column order.
type columnSpec[R any] struct {
	Column string
	Cell   func(R) domain.Cell
}

// appStoreRow is the enriched App Store record built before projection:
// title merged into the review text, reply fields synthesized from the
// developer response. Inputs are never mutated.
type appStoreRow struct {
	At        time.Time
	UserName  string
	Review    string
	Rating    int
	Reply     string
	RepliedAt *time.Time
}

var appStoreColumns = []columnSpec[appStoreRow]{
	{colDatetime, func(r appStoreRow) domain.Cell { return domain.TimeCell(r.At) }},
	{colUsername, func(r appStoreRow) domain.Cell { return domain.StringCell(r.UserName) }},
	{colReview, func(r appStoreRow) domain.Cell { return domain.StringCell(r.Review) }},
	{colRating, func(r appStoreRow) domain.Cell { return domain.IntCell(r.Rating) }},
	{colReply, func(r appStoreRow) domain.Cell { return domain.StringCell(r.Reply) }},
	{colReplyDatetime, func(r appStoreRow) domain.Cell {
		if r.RepliedAt == nil {
			return domain.StringCell("")
		}
		return domain.TimeCell(*r.RepliedAt)
	}},
}

var playStoreColumns = []columnSpec[domain.PlayStoreReview]{
	{colDatetime, func(r domain.PlayStoreReview) domain.Cell { return domain.TimeCell(r.At) }},
	{colUsername, func(r domain.PlayStoreReview) domain.Cell { return domain.StringCell(r.UserName) }},
	{colReview, func(r domain.PlayStoreReview) domain.Cell { return domain.StringCell(r.Content) }},
	{colRating, func(r domain.PlayStoreReview) domain.Cell { return domain.IntCell(r.Score) }},
	{colReply, func(r domain.PlayStoreReview) domain.Cell {
		if r.ReplyContent == nil {
			return domain.StringCell("")
		}
		return domain.StringCell(*r.ReplyContent)
	}},
	{colReplyDatetime, func(r domain.PlayStoreReview) domain.Cell {
		if r.RepliedAt == nil {
			return domain.StringCell("")
		}
		return domain.TimeCell(*r.RepliedAt)
	}},
	{colThumbsUp, func(r domain.PlayStoreReview) domain.Cell { return domain.IntCell(r.ThumbsUpCount) }},
}

// Normalizer reshapes platform review records into the canonical table.
// NewNormalizer validates the mapping tables once at construction.
type Normalizer struct{}

func NewNormalizer() (*Normalizer, error) {
	if err := validateColumns(appStoreColumns); err != nil {
		return nil, fmt.Errorf("appstore mapping: %w", err)
	}
	if err := validateColumns(playStoreColumns); err != nil {
		return nil, fmt.Errorf("playstore mapping: %w", err)
	}
	// both platforms must agree on the shared canonical prefix
	for i, spec := range appStoreColumns {
		if i >= len(playStoreColumns) || playStoreColumns[i].Column != spec.Column {
			return nil, fmt.Errorf("playstore mapping: column %d diverges from %q", i, spec.Column)
		}
	}
	return &Normalizer{}, nil
}

func validateColumns[R any](specs []columnSpec[R]) error {
	if len(specs) == 0 {
		return errors.New("empty mapping table")
	}
	seen := make(map[string]struct{}, len(specs))
	for i, s := range specs {
		if s.Column == "" {
			return fmt.Errorf("column %d: empty name", i)
		}
		if s.Cell == nil {
			return fmt.Errorf("column %q: nil extractor", s.Column)
		}
		if _, dup := seen[s.Column]; dup {
			return fmt.Errorf("column %q: duplicate", s.Column)
		}
		seen[s.Column] = struct{}{}
	}
	return nil
}

// AppStoreTable enriches App Store reviews and projects them onto the
// canonical six columns.
func (n *Normalizer) AppStoreTable(revs []domain.AppStoreReview) (domain.Table, error) {
	rows, err := enrichAppStore(revs)
	if err != nil {
		return domain.Table{}, err
	}
	return render(header(appStoreColumns), project(rows, appStoreColumns)), nil
}

// PlayStoreTable projects Play Store reviews onto the canonical columns plus
// Thumbs Up. No preparation step: raw fields project directly.
func (n *Normalizer) PlayStoreTable(revs []domain.PlayStoreReview) domain.Table {
	return render(header(playStoreColumns), project(revs, playStoreColumns))
}

func enrichAppStore(revs []domain.AppStoreReview) ([]appStoreRow, error) {
	rows := make([]appStoreRow, 0, len(revs))
	for _, rv := range revs {
		row := appStoreRow{
			At:       rv.Date,
			UserName: rv.UserName,
			Review:   rv.Title + rv.Review, // title first, no separator
			Rating:   rv.Rating,
		}
		if dr := rv.DeveloperResponse; dr != nil {
			at, err := time.Parse(time.RFC3339, dr.Modified)
			if err != nil {
				return nil, &domain.MalformedRecordError{
					Platform: domain.PlatformAppStore,
					Field:    "developerResponse.modified",
					Err:      err,
				}
			}
			row.Reply = dr.Body
			row.RepliedAt = &at
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func header[R any](specs []columnSpec[R]) []string {
	h := make([]string, len(specs))
	for i, s := range specs {
		h[i] = s.Column
	}
	return h
}

// project extracts one cell per column from each record, in record order.
// Every string cell has its newlines removed here, before storage.
func project[R any](recs []R, specs []columnSpec[R]) [][]domain.Cell {
	out := make([][]domain.Cell, len(recs))
	for i, rec := range recs {
		row := make([]domain.Cell, len(specs))
		for j, s := range specs {
			c := s.Cell(rec)
			if c.Kind == domain.CellString {
				c.Str = stripNewlines(c.Str)
			}
			row[j] = c
		}
		out[i] = row
	}
	return out
}

// render turns projected cells into the final table. Datetime columns render
// as DD/MM/YYYY or the empty string; all other columns render verbatim.
func render(header []string, cells [][]domain.Cell) domain.Table {
	rows := make([][]string, len(cells))
	for i, row := range cells {
		out := make([]string, len(row))
		for j := range row {
			if isDateColumn(header[j]) {
				out[j] = formatDate(row[j])
				continue
			}
			out[j] = row[j].String()
		}
		rows[i] = out
	}
	return domain.Table{Header: header, Rows: rows}
}

func isDateColumn(name string) bool {
	return name == colDatetime || name == colReplyDatetime
}

// formatDate renders a datetime cell. A cell that never carried a real
// timestamp (the empty string synthesized for absent replies, or a zero
// time) renders empty.
func formatDate(c domain.Cell) string {
	if c.Kind != domain.CellTime || c.Time.IsZero() {
		return ""
	}
	return c.Time.Format(dateLayout)
}

func stripNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", "")
}
