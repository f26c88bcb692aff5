package resolve

// DefaultTables returns the override set for the stock tool bundle. Every
// entry records a known divergence between a catalog id and the category or
// camel-case function name its artifact actually uses; tools absent from
// both maps follow the fallback rules in Resolver.
//
// Returned maps are fresh copies, so callers may extend them with entries
// from config without affecting later calls.
func DefaultTables() Tables {
	return Tables{
		Categories: map[string]string{
			// Shipped before label conventions settled; their artifacts
			// never moved out of the legacy directories.
			"threshold":    "filter",
			"edge-detect":  "filter",
			"color-counts": "measure",
		},
		RegistrationNames: map[string]string{
			"flip-horizontal": "flipHorizontal",
			"flip-vertical":   "flipVertical",
			"edge-detect":     "edgeDetect",
			"color-counts":    "colorCounts",
			"auto-contrast":   "autoContrast",
		},
	}
}
