package jsonschema

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Validate checks input against the JSON schema stored in fileName.
func Validate(fileName string, input string) error {
	absPath, err := filepath.Abs(fileName)
	if err != nil {
		return err
	}

	schemaLoader := gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(absPath))
	documentLoader := gojsonschema.NewStringLoader(input)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("error loading JSON schema %s: %w", fileName, err)
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("the output does not match schema %s:\n%s", fileName, strings.Join(details, "\n"))
}
