package setup

// UserRequest is the profile of the first admin.
type UserRequest struct {
	FirstName *string `json:"first_name" validate:"omitnil,notblank"`
	LastName  *string `json:"last_name"  validate:"omitnil,notblank"`
	Email     string  `json:"email"      validate:"email"`
	Password  string  `json:"password"   validate:"password"`
}

// DatabaseRequest is the optional first database connection.
type DatabaseRequest struct {
	Engine         string         `json:"engine"           validate:"dbengine"`
	Name           string         `json:"name"             validate:"notblank"`
	Details        map[string]any `json:"details"`
	IsOnDemand     *bool          `json:"is_on_demand"`
	IsFullSync     *bool          `json:"is_full_sync"`
	AutoRunQueries *bool          `json:"auto_run_queries"`
}

// InviteRequest is an optional second user invited by the admin.
type InviteRequest struct {
	FirstName *string `json:"first_name" validate:"omitnil,notblank"`
	LastName  *string `json:"last_name"  validate:"omitnil,notblank"`
	Email     string  `json:"email"      validate:"email"`
}

// PrefsRequest are the initial site settings.
type PrefsRequest struct {
	SiteName   string  `json:"site_name"   validate:"notblank"`
	SiteLocale *string `json:"site_locale" validate:"omitnil,locale"`
	// AllowTracking accepts a JSON boolean or a boolean literal string.
	AllowTracking any `json:"allow_tracking"`
}

// Request is the body of a setup call.
type Request struct {
	Token    string           `json:"token"`
	User     UserRequest      `json:"user"`
	Database *DatabaseRequest `json:"database"`
	Invite   *InviteRequest   `json:"invite"`
	Prefs    PrefsRequest     `json:"prefs"`
}

// ConnectionDetails names an engine and its connection details.
type ConnectionDetails struct {
	Engine  string         `json:"engine"`
	Details map[string]any `json:"details"`
}

// ValidateRequest is the body of a connection check.
type ValidateRequest struct {
	Token   string            `json:"token"`
	Details ConnectionDetails `json:"details"`
}

// Result is what a successful setup hands back.
type Result struct {
	SessionID string
	UserID    uint64
}
