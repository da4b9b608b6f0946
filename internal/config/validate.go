// CUE schema validation code
package config

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"
)

// schemaDefinition is the CUE definition every profile must satisfy.
const schemaDefinition = "#Dashboard"

// ValidateWithCue validates YAML configuration bytes using a CUE schema.
func ValidateWithCue(configYAML, cueSchema []byte) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileBytes(cueSchema)
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", err)
	}
	def := schemaVal.LookupPath(cue.ParsePath(schemaDefinition))
	if !def.Exists() {
		return fmt.Errorf("CUE schema has no %s definition", schemaDefinition)
	}

	file, err := yaml.Extract("config.yaml", configYAML)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(file)
	if err := configVal.Err(); err != nil {
		return fmt.Errorf("cannot build YAML config: %w", err)
	}

	final := def.Unify(configVal)
	if err := final.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
