// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (SQLite or Postgres), migrations
//	├── errors.go        # Driver error classification for upserts
//	├── catalog/         # Catalog entries (books) shared by all users
//	├── shelves/         # Per-user reading status and reading progress
//	├── imports/         # Import job history
//	└── users/           # User management
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(cfg.Database, log)
//
//	catalogRepo := catalog.NewRepository(db.DB)
//	shelvesRepo := shelves.NewRepository(db.DB)
//
//	book, err := catalogRepo.FindByISBN13("9780441013593")
//	result := shelvesRepo.UpsertStatus(&entities.UserBook{...})
//
// # Upsert results
//
// Writes that can hit a constraint report a tagged UpsertResult rather than a bare
// error, so callers branch on the Kind instead of inspecting driver error codes.
package database
