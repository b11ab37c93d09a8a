package fonts

// tier lists acceptable format labels and content types in order of
// preference. Formats are checked before content types.
type tier struct {
	name         string
	formats      []string
	contentTypes []string
}

var tiers = []tier{
	{
		name:         "woff",
		formats:      []string{"woff2-variations", "woff2", "woff"},
		contentTypes: []string{"font/woff2", "font/woff", "application/font-woff", "application/x-font-woff"},
	},
	{
		name:         "truetype",
		formats:      []string{"truetype-variations", "truetype"},
		contentTypes: []string{"font/ttf", "application/x-font-ttf", "application/x-font-truetype"},
	},
	{
		name:         "opentype",
		formats:      []string{"opentype", "embedded-opentype"},
		contentTypes: []string{"font/otf", "application/x-font-opentype", "application/font-sfnt"},
	},
}

// Select picks the single source to keep out of resolved candidates. Kept list
// has the winner and every local() source in candidates order. When nothing
// is recognized all candidates are kept and winner is nil.
func Select(candidates []*Source) (kept []*Source, winner *Source) {
	for _, t := range tiers {
		if winner = t.find(candidates); winner != nil {
			break
		}
	}
	if winner == nil {
		return candidates, nil
	}
	for _, s := range candidates {
		if s == winner || s.IsLocal() {
			kept = append(kept, s)
		}
	}
	return kept, winner
}

func (t tier) find(candidates []*Source) *Source {
	for _, f := range t.formats {
		if s := findSource(candidates, func(s *Source) bool { return s.Format == f }); s != nil {
			return s
		}
	}
	for _, ct := range t.contentTypes {
		if s := findSource(candidates, func(s *Source) bool { return s.ContentType == ct }); s != nil {
			return s
		}
	}
	return nil
}

func findSource(candidates []*Source, match func(*Source) bool) *Source {
	for _, s := range candidates {
		if !s.IsEmptyData() && match(s) {
			return s
		}
	}
	return nil
}
