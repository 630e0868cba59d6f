package main

import (
	"fmt"
	"io"
	"os"

	_ "ariga.io/atlas-go-sdk/recordriver" // import used by the CLI tool
	"ariga.io/atlas-provider-gorm/gormschema"

	"socialdex/src/database"
)

// Prints the schema of every table as DDL for atlas. The dialect is the first
// argument: postgres (default) or sqlite.
func main() {
	dialect := "postgres"
	if len(os.Args) > 1 {
		dialect = os.Args[1]
	}
	if dialect != "postgres" && dialect != "sqlite" {
		fmt.Fprintf(os.Stderr, "unsupported dialect %q\n", dialect)
		os.Exit(1)
	}

	statements, err := gormschema.New(dialect).Load(database.DbTables...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load GORM schema: %v\n", err)
		os.Exit(1)
	}

	io.WriteString(os.Stdout, statements) //nolint:errcheck
}
