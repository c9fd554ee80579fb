package settings

// Type is the value type of a setting.
type Type int

// Setting types.
const (
	String Type = iota
	Boolean
	Integer
	Locale
	Email
)

// Visibility controls who may read a setting.
type Visibility int

// Visibilities.
const (
	// Public settings are readable without a session.
	Public Visibility = iota
	// Admin settings are readable and writable by admins.
	Admin
	// Internal settings are never exposed by the API.
	Internal
)

// Setting names.
const (
	SiteName            = "site-name"
	SiteLocale          = "site-locale"
	SiteURL             = "site-url"
	AnonTrackingEnabled = "anon-tracking-enabled"
	AdminEmail          = "admin-email"
	EmailSMTPHost       = "email-smtp-host"
	EmailSMTPPort       = "email-smtp-port"
	EmailSMTPUsername   = "email-smtp-username"
	EmailSMTPPassword   = "email-smtp-password"
	EmailFromAddress    = "email-from-address"
	SlackAppToken       = "slack-app-token"
	SetupToken          = "setup-token"
	InstanceCreatedAt   = "instance-created-at"
)

// Definition declares one setting.
type Definition struct {
	Name        string
	Type        Type
	Default     string
	Visibility  Visibility
	Description string
	// NonBlank rejects empty and whitespace-only values.
	NonBlank bool
	// Sensitive values are masked when listed.
	Sensitive bool
}

var definitions = []Definition{
	{
		Name: SiteName, Type: String, Default: "Lumenboard", Visibility: Public, NonBlank: true,
		Description: "The name used for this instance of Lumenboard.",
	},
	{
		Name: SiteLocale, Type: Locale, Default: "en", Visibility: Public,
		Description: "The default language for all users across the Lumenboard UI.",
	},
	{
		Name: SiteURL, Type: String, Visibility: Public,
		Description: "This URL is used for things like creating links in emails.",
	},
	{
		Name: AnonTrackingEnabled, Type: Boolean, Default: "true", Visibility: Public,
		Description: "Enable the collection of anonymous usage data in order to help improve Lumenboard.",
	},
	{
		Name: AdminEmail, Type: Email, Visibility: Admin,
		Description: "The email address users should be referred to if they encounter a problem.",
	},
	{
		Name: EmailSMTPHost, Type: String, Visibility: Admin,
		Description: "The address of the SMTP server that handles your emails.",
	},
	{
		Name: EmailSMTPPort, Type: Integer, Visibility: Admin,
		Description: "The port your SMTP server uses for outgoing emails.",
	},
	{
		Name: EmailSMTPUsername, Type: String, Visibility: Admin,
		Description: "SMTP username.",
	},
	{
		Name: EmailSMTPPassword, Type: String, Visibility: Admin, Sensitive: true,
		Description: "SMTP password.",
	},
	{
		Name: EmailFromAddress, Type: Email, Visibility: Admin,
		Description: "The email address you want to use for the sender of emails.",
	},
	{
		Name: SlackAppToken, Type: String, Visibility: Admin, Sensitive: true,
		Description: "Bot user OAuth token for connecting the Lumenboard Slack app.",
	},
	{Name: SetupToken, Type: String, Visibility: Internal},
	{Name: InstanceCreatedAt, Type: String, Visibility: Internal},
}

var byName = func() map[string]*Definition {
	out := make(map[string]*Definition, len(definitions))
	for i := range definitions {
		out[definitions[i].Name] = &definitions[i]
	}

	return out
}()

// Lookup returns the definition of name.
func Lookup(name string) (Definition, bool) {
	def, ok := byName[name]
	if !ok {
		return Definition{}, false
	}

	return *def, true
}

// Definitions returns all definitions in declaration order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)

	return out
}
