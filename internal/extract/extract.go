// Package extract is the boundary to the web extraction service. An
// Extractor pulls structured records out of pages and maps the URLs
// nested under a site root. Results carry an explicit Success flag:
// the service reports structured failures in-band, and callers must
// treat Success=false as a failed extraction, never a partial result.
//
// Two backends implement the contract: Remote speaks a Firecrawl-style
// JSON API, Local crawls and parses pages in-process.
package extract

import (
	"context"
	"errors"
	"net/http"
)

// ErrFailed reports a structured extraction failure: the service
// responded, but could not produce the requested data.
var ErrFailed = errors.New("extraction failed")

// Data types for extracted records.
const (
	DataTypeTeamMember = "team-member"
	DataTypeDeal       = "deal"
	DataTypeRaw        = "raw"
)

// ValidDataType reports whether s names a known record type.
func ValidDataType(s string) bool {
	switch s {
	case DataTypeTeamMember, DataTypeDeal, DataTypeRaw:
		return true
	}
	return false
}

// ExtractResult is the outcome of a structured extraction.
type ExtractResult struct {
	Success  bool             `json:"success"`
	Error    string           `json:"error,omitempty"`
	DataType string           `json:"dataType,omitempty"`
	Items    []map[string]any `json:"items,omitempty"`
}

// MapResult is the outcome of mapping a site's nested URLs.
type MapResult struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Links   []string `json:"links,omitempty"`
}

// Extractor extracts structured content from the web.
type Extractor interface {
	// Extract pulls records from the given URLs guided by a prompt and
	// an optional schema hint naming the expected record type.
	Extract(ctx context.Context, urls []string, prompt, schemaHint string) (*ExtractResult, error)

	// MapURL discovers the URLs nested under a website root.
	MapURL(ctx context.Context, url string) (*MapResult, error)
}

// URLValidator screens outbound fetch targets. Satisfied by
// *security.HTTP.
type URLValidator interface {
	ValidateURL(urlStr string) error
	CreateSafeHTTPClient() *http.Client
}

// TeamMember is a person extracted from a company page.
type TeamMember struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Designation string `json:"designation,omitempty"`
	LinkedInURL string `json:"linkedInUrl,omitempty"`
	CompanyURL  string `json:"companyUrl,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
}

// Deal is a business listing extracted from a brokerage page.
type Deal struct {
	Brokerage     string `json:"brokerage"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	Email         string `json:"email,omitempty"`
	LinkedInURL   string `json:"linkedInUrl,omitempty"`
	WorkPhone     string `json:"workPhone,omitempty"`
	Title         string `json:"title"`
	Revenue       string `json:"revenue,omitempty"`
	EBITDA        string `json:"ebitda,omitempty"`
	AskingPrice   string `json:"askingPrice,omitempty"`
	Industry      string `json:"industry"`
	DealType      string `json:"dealType,omitempty"`
	SourceWebsite string `json:"sourceWebsite,omitempty"`
}
