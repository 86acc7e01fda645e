package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./readtrack.db"

	// DefaultOpenLibraryURL is the public OpenLibrary API root
	DefaultOpenLibraryURL = "https://openlibrary.org"

	// DefaultHardcoverURL is the Hardcover GraphQL endpoint
	DefaultHardcoverURL = "https://api.hardcover.app/v1/graphql"
)
