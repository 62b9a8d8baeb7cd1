// Package settlerdb holds all the migrations for the settlement database
package settlerdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the settlement database
var Migrations = migrate.NewMigrations()
