// Package schemas holds the JSON Schema documents shipped with the service.
package schemas

import (
	_ "embed"
)

// JobConfig is the JSON Schema of a job's application form configuration
//
//go:embed job_config.schema.json
var JobConfig string
