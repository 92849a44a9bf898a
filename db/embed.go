// Package db embeds the database schema.
package db

import _ "embed"

// Schema contains the DDL for the storefront tables (products, accounts,
// orders, order_details, api_keys).
//
//go:embed migrations/001_schema.sql
var Schema string
