// Package db provides the embedded schema of the preferences store.
package db

import _ "embed"

// Schema contains the DDL statements for the preferences table.
//
//go:embed migrations/001_schema.sql
var Schema string
