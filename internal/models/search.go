package models

import "github.com/myproject/website/internal/pagination"

// SearchPageSize is the fixed number of results per search page.
const SearchPageSize = 10

// Document is a search hit. Backends fill at least ID and Title.
type Document struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary,omitempty"`
}

// ResultPage is one page of search hits.
type ResultPage = pagination.Page[Document]

// SearchContext is what a search request renders.
type SearchContext struct {
	Query   string     `json:"query"`
	Results ResultPage `json:"results"`
}

// SiteSettings is the per-request snapshot of site-wide settings.
type SiteSettings struct {
	SiteName          string `json:"site_name"`
	SiteDescription   string `json:"site_description"`
	IsTestEnvironment bool   `json:"is_test_environment"`
}
