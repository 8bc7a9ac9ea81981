package domain

// LegendPlacement 决定 legend 放在简介之前还是之后。
type LegendPlacement string

const (
	LegendPrefix LegendPlacement = "prefix"
	LegendSuffix LegendPlacement = "suffix"
)

// Prefs 是宿主传入的偏好设置（构造一次，按值传给各组件）。
type Prefs struct {
	CastToCollection         bool
	ClearCollectionsOnUpdate bool
	CountryToCollection      bool
	DirectorToCollection     bool
	GenreToCollection        bool
	StudioToCollection       bool
	TitleToCollection        bool

	InterRequestDelaySeconds int
	SummaryLanguageDetect    bool

	DurationToleranceMinutes     int
	MatchAgainstRegistryDuration bool
	MatchAgainstSiteDuration     bool

	LegendPlacement LegendPlacement

	// TitleSimilarity / NameSimilarity 是编辑距离相似度阈值，取值 (0, 1]。
	TitleSimilarity float64
	NameSimilarity  float64

	// PlaceholderPhoto 用于 registry 未命中的演员/导演。
	PlaceholderPhoto string
}

const (
	DefaultDurationTolerance = 2
	DefaultTitleSimilarity   = 0.85
	DefaultNameSimilarity    = 0.80
	DefaultPlaceholderPhoto  = "https://www.iafd.com/graphics/headshots/thumbs/th_iafd_ad.gif"
)

func DefaultPrefs() Prefs {
	return Prefs{
		StudioToCollection:       true,
		TitleToCollection:        true,
		InterRequestDelaySeconds: 1,
		DurationToleranceMinutes: DefaultDurationTolerance,
		LegendPlacement:          LegendPrefix,
		TitleSimilarity:          DefaultTitleSimilarity,
		NameSimilarity:           DefaultNameSimilarity,
		PlaceholderPhoto:         DefaultPlaceholderPhoto,
	}
}
