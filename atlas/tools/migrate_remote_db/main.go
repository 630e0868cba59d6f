package main

import (
	"fmt"
	"os"
	"os/exec"

	"socialdex/src/config"
	"socialdex/src/database"
	"socialdex/src/datamodels"
)

// Applies the atlas migrations in atlas/migrations to the configured database.

func main() {
	appConfig, err := config.Load()
	if err != nil {
		fmt.Printf("❌ failed to load config: %v\n", err)
		os.Exit(1)
	}

	dbConfig := appConfig.DatabaseConfig
	var uri, dir string
	switch dbConfig.Driver {
	case datamodels.DriverPostgres:
		uri = database.MakeConnectionString(&dbConfig.Postgres)
		dir = "file://atlas/migrations/postgres"
	case datamodels.DriverSqlite:
		uri = "sqlite://" + dbConfig.SqlitePath
		dir = "file://atlas/migrations/sqlite"
	default:
		fmt.Printf("❌ unknown database driver %q\n", dbConfig.Driver)
		os.Exit(1)
	}

	fmt.Printf("Executing migrations against %s database\n", dbConfig.Driver)

	cmd := exec.Command("atlas", "migrate", "apply",
		"--url", uri,
		"--dir", dir,
	)
	output, err := cmd.CombinedOutput()

	fmt.Print(string(output))

	if err != nil {
		fmt.Printf("❌ failed to run Atlas migrations: %v\n", err)
		os.Exit(1)
	}
}
