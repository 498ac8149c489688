package model

import "time"

// Site is a competitor website tracked in the site store
type Site struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// SiteStatus is the reachability of a tracked site's pricing page
type SiteStatus struct {
	Site         Site       `json:"site"`
	Reachable    bool       `json:"reachable"`
	Dead         bool       `json:"dead"` // 404 or 410
	StatusCode   int        `json:"status_code,omitempty"`
	RedirectURL  string     `json:"redirect_url,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	Stale        bool       `json:"stale"` // not modified for over a year
	Attempts     int        `json:"attempts"`
	Error        string     `json:"error,omitempty"`
}
