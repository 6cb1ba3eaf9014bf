package sources

// Default returns the compiled-in registry of Czech and world news feeds.
func Default() *Registry {
	reg, err := New(defaultCategories(), defaultGroups())
	if err != nil {
		// The built-in tables are covered by tests; failing here is a programming error.
		panic("sources: invalid default registry: " + err.Error())
	}
	return reg
}

func defaultCategories() []Category {
	return []Category{
		{
			Key:  "cz-politika",
			Name: "Česká politika",
			Icon: "flag",
			Sources: []Source{
				{Name: "iROZHLAS", URL: "https://www.irozhlas.cz/rss/irozhlas/section/zpravy-domov"},
				{Name: "Novinky.cz", URL: "https://www.novinky.cz/rss"},
				{Name: "ČT24", URL: "https://ct24.ceskatelevize.cz/rss/hlavni-zpravy"},
				{Name: "Aktuálně.cz", URL: "https://zpravy.aktualne.cz/domaci/rss/"},
				{Name: "ČTK", URL: "https://www.ceskenoviny.cz/sluzby/rss/cr/"},
				{Name: "Deník.cz", URL: "https://www.denik.cz/rss/zpravy_domov.html"},
			},
		},
		{
			Key:  "svet-politika",
			Name: "Světová politika",
			Icon: "globe",
			Sources: []Source{
				{Name: "iROZHLAS", URL: "https://www.irozhlas.cz/rss/irozhlas/section/zpravy-svet"},
				{Name: "BBC World", URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
				{Name: "Al Jazeera", URL: "https://www.aljazeera.com/xml/rss/all.xml"},
				{Name: "Aktuálně.cz", URL: "https://zpravy.aktualne.cz/zahranici/rss/"},
			},
		},
		{
			Key:  "cz-sport",
			Name: "Český sport",
			Icon: "trophy",
			Sources: []Source{
				{Name: "iROZHLAS", URL: "https://www.irozhlas.cz/rss/irozhlas/section/sport"},
				{Name: "iSport.cz", URL: "https://isport.blesk.cz/rss"},
				{Name: "Aktuálně.cz", URL: "https://zpravy.aktualne.cz/sport/rss/"},
			},
		},
		{
			Key:  "svet-sport",
			Name: "Světový sport",
			Icon: "globe-trophy",
			Sources: []Source{
				{Name: "BBC Sport", URL: "https://feeds.bbci.co.uk/sport/rss.xml"},
				{Name: "ESPN", URL: "https://www.espn.com/espn/rss/news"},
			},
		},
		{
			Key:  "kultura",
			Name: "Kultura",
			Icon: "palette",
			Sources: []Source{
				{Name: "iROZHLAS", URL: "https://www.irozhlas.cz/rss/irozhlas/section/kultura"},
				{Name: "Aktuálně.cz", URL: "https://magazin.aktualne.cz/kultura/rss/"},
				{Name: "Guardian Film", URL: "https://www.theguardian.com/film/rss"},
				{Name: "Guardian Music", URL: "https://www.theguardian.com/music/rss"},
			},
		},
		{
			Key:  "ai",
			Name: "IT & AI",
			Icon: "cpu",
			Sources: []Source{
				{Name: "iROZHLAS", URL: "https://www.irozhlas.cz/rss/irozhlas/section/veda-technologie"},
				{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/technology-lab"},
				{Name: "The Verge AI", URL: "https://www.theverge.com/rss/ai-artificial-intelligence/index.xml"},
				{Name: "TechCrunch", URL: "https://techcrunch.com/feed/"},
				{Name: "MIT News AI", URL: "https://news.mit.edu/rss/topic/artificial-intelligence2"},
			},
		},
	}
}

func defaultGroups() []Group {
	return []Group{
		{Alias: "politika", Members: []string{"cz-politika", "svet-politika"}},
		{Alias: "sport", Members: []string{"cz-sport", "svet-sport"}},
		{Alias: "kultura", Members: []string{"kultura"}},
		{Alias: "ai", Members: []string{"ai"}},
	}
}
