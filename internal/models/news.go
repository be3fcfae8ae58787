package models

import (
	"sort"
	"time"
)

// NewsArticle is one company news item from the news provider.
type NewsArticle struct {
	URL         string `json:"url"`
	Headline    string `json:"headline"`
	Summary     string `json:"summary"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"` // YYYY-MM-DD HH:MM:SS
}

// CompanyNews holds the deduplicated news articles collected for a
// ticker. Articles accumulate across collection windows; URL is the
// identity, first write wins.
type CompanyNews struct {
	Ticker    string        `json:"ticker"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Articles  []NewsArticle `json:"articles"`
	CreatedAt time.Time     `json:"created_at"`
}

// Merge adds articles whose URL is not already present and returns the
// number added. Existing articles keep their stored content.
func (n *CompanyNews) Merge(articles []NewsArticle) int {
	seen := make(map[string]bool, len(n.Articles))
	for _, a := range n.Articles {
		seen[a.URL] = true
	}
	added := 0
	for _, a := range articles {
		if a.URL == "" || seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		n.Articles = append(n.Articles, a)
		added++
	}
	return added
}

// Recent returns up to limit articles, newest first by published time.
func (n *CompanyNews) Recent(limit int) []NewsArticle {
	articles := make([]NewsArticle, len(n.Articles))
	copy(articles, n.Articles)
	sort.Slice(articles, func(i, j int) bool { return articles[i].PublishedAt > articles[j].PublishedAt })
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles
}
