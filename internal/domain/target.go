package domain

type Platform string

const (
	PlatformAppStore  Platform = "appstore"
	PlatformPlayStore Platform = "playstore"
)

// Target is the classifier's output: which platform a storefront URL belongs
// to and the identifiers a review fetch needs. AppName is set for the App
// Store only.
type Target struct {
	Platform Platform
	AppID    string
	AppName  string
}
