package resourcepack

import (
	"embed"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

type schemaKind string

const (
	schemaBlockState schemaKind = "blockstate"
	schemaModel      schemaKind = "model"
	schemaMeta       schemaKind = "mcmeta"
)

const schemaBaseURL = "https://github.com/rmmh/blockfaces/schemas/"

var (
	schemasOnce sync.Once
	schemas     map[schemaKind]*jsonschema.Schema
	schemasErr  error
)

func compileSchemas() {
	compiler := jsonschema.NewCompiler()
	schemas = map[schemaKind]*jsonschema.Schema{}
	for _, kind := range []schemaKind{schemaBlockState, schemaModel, schemaMeta} {
		name := string(kind) + ".schema.json"
		f, err := schemaFS.Open("schemas/" + name)
		if err != nil {
			schemasErr = err
			return
		}
		err = compiler.AddResource(schemaBaseURL+name, f)
		f.Close()
		if err != nil {
			schemasErr = errors.Wrapf(err, "adding schema %s", name)
			return
		}
		s, err := compiler.Compile(schemaBaseURL + name)
		if err != nil {
			schemasErr = errors.Wrapf(err, "compiling schema %s", name)
			return
		}
		schemas[kind] = s
	}
}

// validateDefinition checks raw definition JSON against the embedded schema
// for its kind.
func validateDefinition(kind schemaKind, name string, data []byte) error {
	schemasOnce.Do(compileSchemas)
	if schemasErr != nil {
		return schemasErr
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrapf(ErrMalformed, "%s: %v", name, err)
	}
	if err := schemas[kind].Validate(doc); err != nil {
		return errors.Wrapf(ErrMalformed, "%s: %v", name, err)
	}
	return nil
}
