package models

import (
	"errors"
	"fmt"
	"strings"
)

// Page identifies which dashboard view a session is looking at
type Page string

// Page constants
const (
	PageDashboard Page = "dashboard"
	PageAssistant Page = "assistant"
	PageExplorer  Page = "explorer"
	PageExport    Page = "export"
)

// DefaultPage is shown to sessions that never navigated
const DefaultPage = PageDashboard

// ErrUnknownPage is returned by ParsePage for names outside the page set
var ErrUnknownPage = errors.New("unknown page")

// Pages lists the navigable pages in sidebar order
var Pages = []Page{PageDashboard, PageExplorer, PageAssistant, PageExport}

// ParsePage converts a page name to a Page
func ParsePage(name string) (Page, error) {
	p := Page(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Pages {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, name)
}

// Title is the sidebar label for the page
func (p Page) Title() string {
	switch p {
	case PageDashboard:
		return "Dashboard"
	case PageExplorer:
		return "Skill Explorer"
	case PageAssistant:
		return "AI Roadmap"
	case PageExport:
		return "Export"
	default:
		return string(p)
	}
}
