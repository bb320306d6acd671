package data

import "github.com/rkit/filemanager-go/internal/pkg/database"

// AutoMigrate creates the files table. Link tables are part of the
// integrating application's schema and are never migrated here.
func AutoMigrate(db *database.DB) error {
	return db.AutoMigrate(&FilePO{})
}
