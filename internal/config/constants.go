package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./weengz-air.db"

	// DefaultTasksDatabasePath is where the background task queue keeps its state
	DefaultTasksDatabasePath = "./weengz-air-tasks.db"
)
