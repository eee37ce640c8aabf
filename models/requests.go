package models

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	User
	ConfirmPassword string `json:"confirmPassword"`
}

// Credentials is the body of POST /auth/login
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// AuthResponse is returned by the auth backend and by our auth endpoints
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
}

// Position is a device-reported coordinate
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SubmitReportRequest is the citizen form as posted to the gateway.
// CurrentLocation is nil when the device refused geolocation.
type SubmitReportRequest struct {
	Problem            string    `json:"problem"`
	Subtype            string    `json:"subtype"`
	Priority           Priority  `json:"priority"`
	Description        string    `json:"description"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone"`
	Area               string    `json:"area"`
	UseCurrentLocation bool      `json:"useCurrentLocation"`
	CurrentLocation    *Position `json:"currentLocation,omitempty"`
	Photo              string    `json:"photo"`
	CameraFrame        string    `json:"cameraFrame,omitempty"`
}

// NewReport is the body sent to POST /reports
type NewReport struct {
	UserEmail   string   `json:"userEmail"`
	Problem     string   `json:"problem"`
	Subtype     string   `json:"subtype"`
	Priority    Priority `json:"priority"`
	Description string   `json:"description"`
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Area        string   `json:"area"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Photo       string   `json:"photo"`
}

// ReportUpdate is a partial update for PUT /reports/{id}; empty fields are omitted
type ReportUpdate struct {
	Status        ReportStatus `json:"status,omitempty"`
	Comment       *string      `json:"comment,omitempty"`
	ScheduledAt   string       `json:"scheduledAt,omitempty"`
	EstimatedDays *string      `json:"estimatedDays,omitempty"`
	ResolvedPic   string       `json:"resolvedPic,omitempty"`
}

// RatingRequest is the body of PUT /reports/{id}/rating
type RatingRequest struct {
	Rating int `json:"rating"`
}

// PhotoRequest carries a data URI for a staged resolution photo
type PhotoRequest struct {
	Photo string `json:"photo"`
}

// ManageReportsResponse is the authority working set
type ManageReportsResponse struct {
	Reports []Report         `json:"reports"`
	Stats   StatusCounts     `json:"stats"`
	Drafts  map[string]Draft `json:"drafts"`
}
