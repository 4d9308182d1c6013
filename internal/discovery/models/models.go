package models

// PaginationState tracks the organization loader's position in the cursor
// sequence. A new filter always resets the cursor and clears the accumulated
// rows before refetching; stale pages must never show under a new filter.
type PaginationState struct {
	FilterText     string `json:"filter_text"`
	AfterCursor    string `json:"-"`
	HasMore        bool   `json:"has_more"`
	IsFetchPending bool   `json:"is_fetch_pending"`
}

// PageTag identifies the request a page response answers. Responses whose
// tag no longer matches current state are dropped instead of applied. The
// generation increases on every filter reset; without it, re-applying the
// same filter while its first page is in flight would let both responses
// match (filter, "") and append twice.
type PageTag struct {
	Filter     string
	Cursor     string
	Generation uint64
}

// DomainFlags are the email-domain input's inline error flags. At most one
// is set at a time; both clear on the next input change.
type DomainFlags struct {
	FormatError       bool `json:"format_error"`
	AvailabilityError bool `json:"availability_error"`
}
