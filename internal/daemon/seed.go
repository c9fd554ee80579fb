package daemon

import (
	"time"

	"gorm.io/gorm"

	"github.com/lumenboard/lumenboard/internal/db/controller/role"
	"github.com/lumenboard/lumenboard/internal/settings"
)

// seed inserts the fixed roles and stamps the instance creation time once.
func seed(db *gorm.DB) error {
	if err := role.Seed(db); err != nil {
		return err
	}

	created, err := settings.IsSet(db, settings.InstanceCreatedAt)
	if err != nil {
		return err
	}

	if created {
		return nil
	}

	return settings.Set(db, settings.InstanceCreatedAt, time.Now().UTC().Format(time.RFC3339))
}
