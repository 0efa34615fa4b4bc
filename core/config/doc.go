// Package config provides configuration management for refdesk.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: record store connection details (MySQL, SQLite)
//   - Storage: S3/MinIO credentials for the feed body archive
//   - Log: logging level and format
//   - Ingest: feed ingestion settings (timezone, fetch timeout, schedule)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
