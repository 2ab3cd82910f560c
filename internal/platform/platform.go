package platform

// Platform identifies a supported social network. It is the key for
// capability lookups and adapter caching.
type Platform string

const (
	Instagram Platform = "instagram"
	X         Platform = "x"
	Facebook  Platform = "facebook"
	TikTok    Platform = "tiktok"
	LinkedIn  Platform = "linkedin"
	Mock      Platform = "mock"
)

func (p Platform) String() string {
	return string(p)
}

func All() []Platform {
	return []Platform{Instagram, X, Facebook, TikTok, LinkedIn}
}

// Parse returns the Platform for s, and whether s names a known platform.
func Parse(s string) (Platform, bool) {
	switch Platform(s) {
	case Instagram, X, Facebook, TikTok, LinkedIn, Mock:
		return Platform(s), true
	default:
		return "", false
	}
}
