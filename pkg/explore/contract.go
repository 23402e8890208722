package explore

// Names shared by the page markup, the search endpoint and its clients.
const (
	// DefaultEndpoint is the search path. GET serves the page, POST searches.
	DefaultEndpoint = "/explore"

	// CSRFHeader carries the anti-forgery token on search requests.
	CSRFHeader = "X-CSRFToken"
	// CSRFCookie binds the token to the browser session.
	CSRFCookie = "explore_csrf"

	// Element ids and names of the page filter controls.
	IDFilters       = "filters"
	IDToken         = "csrf_token"
	IDQuery         = "filter_title"
	IDAuthor        = "filter_author"
	IDDescription   = "filter_description"
	IDTags          = "filter_tags"
	IDCategory      = "tournament_type"
	NameSort        = "sorting"
	IDResults       = "results"
	IDResultsNumber = "results_number"
	IDNotFound      = "results_not_found"
	IDClearFilters  = "clear-filters"
)
