package models

// WordlistStatus is the lifecycle state of a wordlist.
// IMPORTED -> DOWNLOADING -> DOWNLOADED -> VALIDATING -> VALIDATED,
// with FAILED reachable from any step.
type WordlistStatus string

const (
	WordlistStatusImported    WordlistStatus = "IMPORTED"
	WordlistStatusDownloading WordlistStatus = "DOWNLOADING"
	WordlistStatusDownloaded  WordlistStatus = "DOWNLOADED"
	WordlistStatusValidating  WordlistStatus = "VALIDATING"
	WordlistStatusValidated   WordlistStatus = "VALIDATED"
	WordlistStatusFailed      WordlistStatus = "FAILED"
)

// Wordlist is the metadata for a set of on-disk password files, one per
// password length, each pre-sorted lexicographically so a membership check
// is a binary search. Files live at {slug}/data/{length}.ticket under the
// wordlist data directory.
type Wordlist struct {
	ID             string         `json:"id"`
	DisplayName    string         `json:"display_name"`
	Slug           string         `json:"slug"`
	Description    string         `json:"description"`
	Repository     string         `json:"repository"`
	Source         string         `json:"source"`
	PublishedBy    string         `json:"published_by"`
	AdaptedBy      string         `json:"adapted_by"`
	SizeUnits      string         `json:"size_units"`
	Status         WordlistStatus `json:"status"`
	Message        string         `json:"message"`
	Year           int            `json:"year"`
	Size           float64        `json:"size"`
	MinLength      int            `json:"min_length"`
	MaxLength      int            `json:"max_length"`
	TotalFiles     int            `json:"total_files"`
	TotalPasswords int            `json:"total_passwords"`
}

// Downloaded reports whether the wordlist files are present on disk.
func (w *Wordlist) Downloaded() bool {
	switch w.Status {
	case WordlistStatusImported, WordlistStatusDownloading:
		return false
	default:
		return true
	}
}
