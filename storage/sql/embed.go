package sql

import "embed"

// SchemaFS contains all SQL migration files under storage/sql/schema/
//
//go:embed schema/*.sql
var SchemaFS embed.FS

// SchemaDir is the directory of the migrations within SchemaFS
const SchemaDir = "schema"
