package domain

// Page is an online store page
type Page struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

// Menu is a navigation menu with its top-level items
type Menu struct {
	ID     string     `json:"id"`
	Handle string     `json:"handle"`
	Title  string     `json:"title"`
	Items  []MenuItem `json:"items"`
}

// MenuItem is one entry of a navigation menu
type MenuItem struct {
	ID         string  `json:"id,omitempty"`
	Title      string  `json:"title"`
	Type       string  `json:"type"`
	URL        *string `json:"url,omitempty"`
	ResourceID *string `json:"resourceId,omitempty"`
}

// Menu actions recorded by a provisioning run
const (
	MenuActionNone      = "none"
	MenuActionUnchanged = "unchanged"
	MenuActionUpdated   = "updated"
	MenuActionCreated   = "created"
	MenuActionFailed    = "failed"
)

// ProvisioningReport describes what a provisioning run did
type ProvisioningReport struct {
	Shop        string
	Skipped     bool
	PageExists  bool
	PageCreated bool
	PageID      string
	PageHandle  string
	MenuAction  string
}
