// Package models defines data structures used across the application.
// File: models/content.go
package models

// ----------------------- site content -----------------------

// NavLink is one entry in the public navigation bar.
type NavLink struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// SocialLink points at one of the camp's social profiles.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// Partner is a sponsor or partner organisation shown in the footer.
type Partner struct {
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl"`
}

// ScheduleItem is one row of the published event programme.
type ScheduleItem struct {
	Time     string `json:"time"`
	Title    string `json:"title"`
	Venue    string `json:"venue"`
	Category string `json:"category"`
}

// SiteContent is the singleton configuration record behind every public page.
// It lives at settings/siteContent and is replaced wholesale on every push;
// merging only happens on the write side.
type SiteContent struct {
	LogoText        string         `json:"logoText"`
	AnnouncementBar string         `json:"announcementBar"`
	FooterTagline   string         `json:"footerTagline"`
	FooterAddress   string         `json:"footerAddress"`
	FooterEmail     string         `json:"footerEmail"`
	FooterPhone     string         `json:"footerPhone"`
	CopyrightText   string         `json:"copyrightText"`
	EventDate       string         `json:"eventDate"` // RFC 3339, countdown target
	NavLinks        []NavLink      `json:"navLinks"`
	SocialLinks     []SocialLink   `json:"socialLinks"`
	Partners        []Partner      `json:"partners"`
	Schedule        []ScheduleItem `json:"schedule"`
}

// DefaultSiteContent is served until the first settings push arrives, so the
// public pages never render from a zero value.
func DefaultSiteContent() SiteContent {
	return SiteContent{
		LogoText:        "ATH-PROOF",
		AnnouncementBar: "Welcome to the Ife Youth Sports Camp",
		CopyrightText:   "© 2026 ATH-PROOF",
		EventDate:       "2026-02-25T08:00:00Z",
		NavLinks: []NavLink{
			{Name: "Home", Path: "/"},
			{Name: "Events", Path: "/events"},
			{Name: "Gallery", Path: "/gallery"},
			{Name: "Blog", Path: "/blog"},
		},
	}
}
