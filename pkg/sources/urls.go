package sources

const (
	// EuropeFeaturesURL is the GeoJSON FeatureCollection of European
	// country boundaries drawn behind the markers.
	EuropeFeaturesURL = "https://gist.githubusercontent.com/spiker830/3eab0cb407031bf9f2286f98b9d0558a/raw/7edae936285e77be675366550e20f9166bed0ed5/europe_features.json"

	// DefaultPlacesFile is the normalized place/time table, resolved
	// relative to the working directory.
	DefaultPlacesFile = "onb-place-time-normalized.csv"
)
