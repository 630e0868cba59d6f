package main

import (
	"github.com/spf13/cobra"

	"socialdex/src/config"
	"socialdex/src/datamodels"
	"socialdex/src/version"
)

// --- Global Command Variables ---
var (
	configPath  string
	authorsPath string
	csvHeader   bool
	csvPlatform string
	csvStart    string
	csvEnd      string
	skipCrawl   bool

	socialdexConfig *datamodels.SocialdexConfig

	rootCmd = &cobra.Command{
		Use:           "socialdex",
		Short:         "Track follower counts and build point-in-time indices from them",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if configPath != "" {
				socialdexConfig, err = config.LoadFile(configPath)
			} else {
				socialdexConfig, err = config.Load()
			}
			return err
		},
	}

	// --- Store ---
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create or upgrade the database schema",
		RunE:  runInit, // Defined in cmd_store.go
	}
	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Push authors and tags from the authors file into the database",
		RunE:  runSync, // Defined in cmd_store.go
	}

	// --- Acquisition ---
	crawlCmd = &cobra.Command{
		Use:   "crawl",
		Short: "Record the current follower count of every author",
		RunE:  runCrawl, // Defined in cmd_crawl.go
	}
	importCmd = &cobra.Command{
		Use:   "import [csv file]",
		Short: "Backfill observations from a uid,followers_count,recorded_at CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport, // Defined in cmd_crawl.go
	}

	// --- Indices ---
	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Build every index and write the configured outputs",
		RunE:  runGenerate, // Defined in cmd_generate.go
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve indices over HTTP and websocket, rebuilding on new observations",
		RunE:  runServe, // Defined in cmd_serve.go
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "init, sync, crawl and generate in one go",
		RunE:  runPipeline, // Defined in cmd_generate.go
	}

	versionCmd = &cobra.Command{
		Use:               "version",
		Short:             "Print build information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run:               runVersion, // Defined in cmd_generate.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to the YAML config (defaults to CONFIG_PATH or config.local.yaml)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVar(&authorsPath, "authors", "", "Authors file, overrides authors_file from the config")

	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&csvHeader, "header", true, "The first CSV line is a header")
	importCmd.Flags().StringVar(&csvPlatform, "platform", string(datamodels.PlatformBilibili), "Platform the uids belong to")
	importCmd.Flags().StringVar(&csvStart, "start", "", "Skip rows recorded before this time (unix seconds, RFC3339 or \"2006-01-02 15:04:05\")")
	importCmd.Flags().StringVar(&csvEnd, "end", "", "Skip rows recorded after this time")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&authorsPath, "authors", "", "Authors file, overrides authors_file from the config")
	runCmd.Flags().BoolVar(&skipCrawl, "skip-crawl", false, "Build from stored observations without polling")

	rootCmd.AddCommand(versionCmd)
}
