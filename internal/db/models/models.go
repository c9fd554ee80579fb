package models

// All returns every model the application migrates.
func All() []any {
	return []any{
		&Role{},
		&User{},
		&Setting{},
		&Database{},
		&Session{},
		&Activity{},
	}
}
