package app

import (
	"strings"

	"revscrap/internal/domain"
)

const (
	appStoreMarker  = "apps.apple.com"
	playStoreMarker = "play.google.com"
)

// ClassifyURL decides which platform a storefront URL belongs to and extracts
// the identifiers a review fetch needs. The App Store marker is checked
// first. Extraction is purely positional: a malformed URL that still contains
// a marker yields best-effort (possibly empty) identifiers, not an error.
func ClassifyURL(rawURL string) (domain.Target, error) {
	switch {
	case strings.Contains(rawURL, appStoreMarker):
		id, name := appStoreIDs(rawURL)
		return domain.Target{Platform: domain.PlatformAppStore, AppID: id, AppName: name}, nil
	case strings.Contains(rawURL, playStoreMarker):
		return domain.Target{Platform: domain.PlatformPlayStore, AppID: playStoreID(rawURL)}, nil
	default:
		return domain.Target{}, domain.ErrUnsupportedURL
	}
}

// appStoreIDs reads the app id (last path segment, "id" prefix stripped) and
// the name slug (second-to-last segment) from an App Store URL, e.g.
// https://apps.apple.com/it/app/enel-x-way/id1377291789.
func appStoreIDs(rawURL string) (appID, appName string) {
	parts := strings.Split(rawURL, "/")
	appID = strings.TrimPrefix(parts[len(parts)-1], "id")
	if len(parts) > 1 {
		appName = parts[len(parts)-2]
	}
	return appID, appName
}

// playStoreID reads the id query parameter from a Play Store URL, e.g.
// https://play.google.com/store/apps/details?id=com.enel.mobile.recharge2&hl=it.
// The value is assumed to carry no &-encoded characters.
func playStoreID(rawURL string) string {
	parts := strings.Split(rawURL, "/")
	query := strings.Split(parts[len(parts)-1], "?")
	first := strings.Split(query[len(query)-1], "&")[0]
	return strings.TrimPrefix(first, "id=")
}
