package app_test

import (
	"errors"
	"testing"

	"revscrap/internal/app"
	"revscrap/internal/domain"
)

func TestClassifyURL_AppStore(t *testing.T) {
	target, err := app.ClassifyURL("https://apps.apple.com/it/app/enel-x-way/id1377291789")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if target.Platform != domain.PlatformAppStore {
		t.Fatalf("platform: %s", target.Platform)
	}
	if target.AppID != "1377291789" || target.AppName != "enel-x-way" {
		t.Fatalf("unexpected target: %+v", target)
	}
}

func TestClassifyURL_PlayStore(t *testing.T) {
	target, err := app.ClassifyURL("https://play.google.com/store/apps/details?id=com.enel.mobile.recharge2&hl=it&gl=US")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if target.Platform != domain.PlatformPlayStore {
		t.Fatalf("platform: %s", target.Platform)
	}
	if target.AppID != "com.enel.mobile.recharge2" {
		t.Fatalf("app id: %q", target.AppID)
	}
	if target.AppName != "" {
		t.Fatalf("app name should be empty for Play Store, got %q", target.AppName)
	}
}

func TestClassifyURL_Unsupported(t *testing.T) {
	for _, u := range []string{"", "https://example.com/app/id42", "not a url at all"} {
		if _, err := app.ClassifyURL(u); !errors.Is(err, domain.ErrUnsupportedURL) {
			t.Fatalf("url %q: expected ErrUnsupportedURL, got %v", u, err)
		}
	}
	const want = "Invalid url. Make sure to use a Playstore or Appstore url."
	if got := domain.ErrUnsupportedURL.Error(); got != want {
		t.Fatalf("message: %q", got)
	}
}

func TestClassifyURL_AppStoreCheckedFirst(t *testing.T) {
	target, err := app.ClassifyURL("https://apps.apple.com/via/play.google.com/id99")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if target.Platform != domain.PlatformAppStore {
		t.Fatalf("platform: %s", target.Platform)
	}
	if target.AppID != "99" {
		t.Fatalf("app id: %q", target.AppID)
	}
}

// Marker-matched URLs with an unexpected shape produce best-effort values,
// never an error.
func TestClassifyURL_BestEffortExtraction(t *testing.T) {
	target, err := app.ClassifyURL("https://apps.apple.com")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if target.AppID != "apps.apple.com" || target.AppName != "" {
		t.Fatalf("unexpected target: %+v", target)
	}

	target, err = app.ClassifyURL("https://play.google.com/store/apps/details")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if target.AppID != "details" {
		t.Fatalf("app id: %q", target.AppID)
	}
}
