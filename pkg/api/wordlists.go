package api

// ImportWordlistRequest registers wordlist metadata.
type ImportWordlistRequest struct {
	DisplayName    string  `json:"display_name"`
	Slug           string  `json:"slug"`
	Description    string  `json:"description"`
	Repository     string  `json:"repository"`
	Source         string  `json:"source"`
	PublishedBy    string  `json:"published_by"`
	AdaptedBy      string  `json:"adapted_by"`
	SizeUnits      string  `json:"size_units"`
	Year           int     `json:"year"`
	Size           float64 `json:"size"`
	MinLength      int     `json:"min_length"`
	MaxLength      int     `json:"max_length"`
	TotalFiles     int     `json:"total_files"`
	TotalPasswords int     `json:"total_passwords"`
}

// WordlistResponse is one wordlist with its lifecycle state.
type WordlistResponse struct {
	ID             string  `json:"id"`
	DisplayName    string  `json:"display_name"`
	Slug           string  `json:"slug"`
	Description    string  `json:"description"`
	Repository     string  `json:"repository"`
	Source         string  `json:"source"`
	PublishedBy    string  `json:"published_by"`
	AdaptedBy      string  `json:"adapted_by"`
	SizeUnits      string  `json:"size_units"`
	Status         string  `json:"status"`
	Message        string  `json:"message"`
	Year           int     `json:"year"`
	Size           float64 `json:"size"`
	MinLength      int     `json:"min_length"`
	MaxLength      int     `json:"max_length"`
	TotalFiles     int     `json:"total_files"`
	TotalPasswords int     `json:"total_passwords"`
}

// WordlistStatusResponse is the lifecycle state and its last message.
type WordlistStatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
