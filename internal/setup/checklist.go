package setup

import (
	"gorm.io/gorm"

	"github.com/lumenboard/lumenboard/internal/db/controller/database"
	"github.com/lumenboard/lumenboard/internal/db/controller/user"
	"github.com/lumenboard/lumenboard/internal/db/engine"
	"github.com/lumenboard/lumenboard/internal/settings"
)

// State is everything the checklist is computed from.
type State struct {
	HasDatabase     bool
	UserCount       int64
	EmailConfigured bool
	SlackConfigured bool
	AppDBEngine     string
}

// Task is one onboarding step.
type Task struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Completed   bool   `json:"completed"`
	Triggered   bool   `json:"triggered"`
	IsNextStep  bool   `json:"is_next_step"`
}

// Group is a named, ordered list of tasks.
type Group struct {
	Name  string `json:"name"`
	Tasks []Task `json:"tasks"`
}

// LoadState reads the checklist state. appEngine is the engine of the application database.
func LoadState(db *gorm.DB, appEngine string) (State, error) {
	var (
		st  = State{AppDBEngine: appEngine}
		err error
	)

	if st.HasDatabase, err = database.HasUserDatabase(db); err != nil {
		return State{}, err
	}

	if st.UserCount, err = user.Count(db); err != nil {
		return State{}, err
	}

	host, err := settings.IsSet(db, settings.EmailSMTPHost)
	if err != nil {
		return State{}, err
	}

	port, err := settings.IsSet(db, settings.EmailSMTPPort)
	if err != nil {
		return State{}, err
	}

	st.EmailConfigured = host && port

	if st.SlackConfigured, err = settings.IsSet(db, settings.SlackAppToken); err != nil {
		return State{}, err
	}

	return st, nil
}

// Checklist returns the onboarding groups for st. Only the first triggered,
// uncompleted task is marked as the next step.
func Checklist(st State) []Group {
	groups := []Group{
		{
			Name: "Get connected",
			Tasks: []Task{
				{
					Title:       "Add a database",
					Description: "Connect to your data so your whole team can start to explore.",
					Link:        "/admin/databases/create",
					Completed:   st.HasDatabase,
					Triggered:   true,
				},
				{
					Title:       "Set up email",
					Description: "Add email credentials so you can more easily invite team members and get updates via subscriptions.",
					Link:        "/admin/settings/email",
					Completed:   st.EmailConfigured,
					Triggered:   true,
				},
				{
					Title:       "Set Slack credentials",
					Description: "Does your team use Slack? If so, you can send automated updates via dashboard subscriptions.",
					Link:        "/admin/settings/slack",
					Completed:   st.SlackConfigured,
					Triggered:   true,
				},
				{
					Title:       "Invite team members",
					Description: "Share answers and data with the rest of your team.",
					Link:        "/admin/people/",
					Completed:   st.UserCount > 1,
					Triggered:   st.HasDatabase,
				},
			},
		},
		{
			Name: "Productionize",
			Tasks: []Task{
				{
					Title:       "Switch to a production-ready app database",
					Description: "Lumenboard is running on SQLite. Migrate to PostgreSQL or MySQL before relying on it.",
					Link:        "/admin/troubleshooting/app-database",
					Completed:   engine.IsProductionReady(st.AppDBEngine),
					Triggered:   !engine.IsProductionReady(st.AppDBEngine),
				},
			},
		},
	}

	marked := false

	for g := range groups {
		for t := range groups[g].Tasks {
			task := &groups[g].Tasks[t]
			if !marked && task.Triggered && !task.Completed {
				task.IsNextStep = true
				marked = true
			}
		}
	}

	return groups
}
