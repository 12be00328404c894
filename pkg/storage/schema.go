package storage

import (
	"encoding/json"
	"fmt"
)

// ConfigJSONSchema documents the storage section of the blog configuration.
// The driver enum mirrors the identifiers normalizeDriver accepts; an empty
// driver selects sqlite3.
const ConfigJSONSchema = `
{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "StorageConfig",
  "type": "object",
  "required": ["dsn"],
  "properties": {
    "driver": {
      "type": "string",
      "description": "Driver identifier understood by Open; empty selects sqlite3",
      "enum": ["", "sqlite3", "sqlite", "pgx", "postgres", "postgresql"]
    },
    "dsn": {
      "type": "string",
      "minLength": 1,
      "description": "Connection string or URI for the database"
    }
  },
  "additionalProperties": false
}
`

// ConfigSchema parses ConfigJSONSchema into the generic map form consumed by
// the validation layer.
func ConfigSchema() (map[string]any, error) {
	var schema map[string]any
	if err := json.Unmarshal([]byte(ConfigJSONSchema), &schema); err != nil {
		return nil, fmt.Errorf("storage: parse config schema: %w", err)
	}
	return schema, nil
}
