package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"revscrap/internal/domain"
)

// ExportResult is a ready-to-download CSV artifact.
type ExportResult struct {
	Platform    domain.Platform
	Filename    string
	ContentType string
	Rows        int
	Data        []byte
}

// ExportParams override the service defaults for a single request. Zero
// values fall back to the configured defaults.
type ExportParams struct {
	Country string
	Lang    string
	Limit   int
}

// ExportService runs the whole pipeline for one storefront URL: classify,
// fetch the raw reviews, normalize into the canonical table, render CSV.
// Stages run strictly in sequence; no state survives a request.
type ExportService struct {
	appstore  domain.AppStoreClient
	playstore domain.PlayStoreClient
	norm      *Normalizer
	opts      FetchOptions
}

func NewExportService(as domain.AppStoreClient, ps domain.PlayStoreClient, opts FetchOptions) (*ExportService, error) {
	norm, err := NewNormalizer()
	if err != nil {
		return nil, err
	}
	return &ExportService{appstore: as, playstore: ps, norm: norm, opts: opts.withDefaults()}, nil
}

func (s *ExportService) Export(ctx context.Context, rawURL string, p ExportParams) (*ExportResult, error) {
	target, err := ClassifyURL(rawURL)
	if err != nil {
		return nil, err
	}

	country := s.opts.Country
	if p.Country != "" {
		country = p.Country
	}
	lang := s.opts.Lang
	if p.Lang != "" {
		lang = p.Lang
	}

	var table domain.Table
	switch target.Platform {
	case domain.PlatformAppStore:
		limit := s.opts.AppStoreLimit
		if p.Limit > 0 {
			limit = p.Limit
		}
		revs, err := s.fetchAppStore(ctx, target, country, limit)
		if err != nil {
			return nil, err
		}
		table, err = s.norm.AppStoreTable(revs)
		if err != nil {
			return nil, err
		}
	case domain.PlatformPlayStore:
		limit := s.opts.PlayStoreLimit
		if p.Limit > 0 {
			limit = p.Limit
		}
		revs, err := s.fetchPlayStore(ctx, target, country, lang, limit)
		if err != nil {
			return nil, err
		}
		table = s.norm.PlayStoreTable(revs)
	default:
		return nil, domain.ErrUnsupportedURL
	}

	data, err := WriteCSV(table)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Platform:    target.Platform,
		Filename:    exportFilename(target),
		ContentType: "text/csv; charset=utf-8",
		Rows:        len(table.Rows),
		Data:        data,
	}, nil
}

// WriteCSV renders a table as UTF-8 comma-separated text: header row first,
// then one row per review in table order. Fields are quoted only when they
// contain the delimiter, a quote, or a line break.
func WriteCSV(t domain.Table) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(t.Header); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportFilename(t domain.Target) string {
	if t.Platform == domain.PlatformPlayStore {
		return fmt.Sprintf("playstore_%s_reviews.csv", strings.ReplaceAll(t.AppID, ".", "_"))
	}
	return fmt.Sprintf("appstore_%s_reviews.csv", t.AppName)
}
