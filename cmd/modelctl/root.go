/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/suparena/entitymodel"
	"github.com/suparena/entitymodel/datastore/ddb"
)

var (
	definitionPath string
	envFile        string
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:           "modelctl",
	Short:         "Read and write entity records in DynamoDB",
	Long:          "modelctl loads an entity definition from YAML and reads or writes its records in DynamoDB. Records are printed as JSON.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&definitionPath, "definition", "d", "", "Entity definition YAML file (default: $MODELCTL_DEFINITION)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "File with AWS_REGION, AWS_ACCESS_KEY, AWS_SECRET_KEY and AWS_DDB_ENDPOINT (default: ./.env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log persistence events to stderr")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func getDefinitionPath() (string, error) {
	if definitionPath != "" {
		return definitionPath, nil
	}
	if env := os.Getenv("MODELCTL_DEFINITION"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("an entity definition is required (--definition or $MODELCTL_DEFINITION)")
}

// openType connects to DynamoDB and builds the entity type from the definition file.
func openType(ctx context.Context) (*entitymodel.Type, error) {
	path, err := getDefinitionPath()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open definition: %w", err)
	}
	defer f.Close()

	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	awsCfg, err := ddb.ConfigFromEnv(files...)
	if err != nil {
		return nil, err
	}

	logger := newLogger()
	client, err := ddb.NewClient(ctx, awsCfg, ddb.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	cfg := entitymodel.DefaultConfig("")
	cfg.Logger = logger
	return entitymodel.NewCatalog().Load(f, client, cfg)
}
