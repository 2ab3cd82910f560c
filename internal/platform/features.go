package platform

// Features flags what a platform supports beyond plain text posts.
type Features struct {
	Stories        bool
	Polls          bool
	Carousel       bool
	Scheduling     bool
	Hashtags       bool
	Mentions       bool
	Location       bool
	CommentToggle  bool
	LikeToggle     bool
	VideoOnly      bool
	AltText        bool
	AudienceTarget bool
}

var featuresTable = map[Platform]Features{
	Instagram: {
		Stories:       true,
		Carousel:      true,
		Scheduling:    true,
		Hashtags:      true,
		Mentions:      true,
		Location:      true,
		CommentToggle: true,
		AltText:       true,
	},
	X: {
		Polls:      true,
		Scheduling: true,
		Hashtags:   true,
		Mentions:   true,
		AltText:    true,
	},
	Facebook: {
		Stories:        true,
		Polls:          true,
		Carousel:       true,
		Scheduling:     true,
		Hashtags:       true,
		Mentions:       true,
		Location:       true,
		CommentToggle:  true,
		AudienceTarget: true,
	},
	TikTok: {
		Scheduling:    true,
		Hashtags:      true,
		Mentions:      true,
		CommentToggle: true,
		VideoOnly:     true,
	},
	LinkedIn: {
		Carousel:       true,
		Scheduling:     true,
		Hashtags:       true,
		Mentions:       true,
		CommentToggle:  true,
		AudienceTarget: true,
	},
	Mock: {
		Stories:        true,
		Polls:          true,
		Carousel:       true,
		Scheduling:     true,
		Hashtags:       true,
		Mentions:       true,
		Location:       true,
		CommentToggle:  true,
		LikeToggle:     true,
		AltText:        true,
		AudienceTarget: true,
	},
}

// FeaturesFor returns the feature flags for p. Unknown platforms report
// no optional features.
func FeaturesFor(p Platform) Features {
	return featuresTable[p]
}
