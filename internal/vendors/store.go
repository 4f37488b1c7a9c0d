package vendors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"smartfill/pkg/models"
)

const directorySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "name": {"type": "string", "minLength": 1},
      "normalizedName": {"type": "string"},
      "nameHistory": {"type": "array", "items": {"type": "string"}},
      "searchTokens": {"type": "array", "items": {"type": "string"}},
      "invoiceNumbers": {"type": "array", "items": {"type": "string"}},
      "lastInvoiceNumber": {"type": "string"},
      "country": {"type": "string", "pattern": "^([A-Za-z]{2})?$"},
      "countries": {"type": "array", "items": {"type": "string", "pattern": "^[A-Za-z]{2}$"}},
      "preferredCurrency": {"type": "string", "pattern": "^([A-Za-z]{3})?$"},
      "currencies": {"type": "array", "items": {"type": "string", "pattern": "^[A-Za-z]{3}$"}},
      "primaryAddress": {"type": "string"},
      "addresses": {"type": "array", "items": {"type": "string"}},
      "primaryVatNumber": {"type": "string"},
      "primaryChamberOfCommerceNumber": {"type": "string"},
      "defaultPaymentMethod": {"type": "string"},
      "usageCount": {"type": "integer", "minimum": 0},
      "createdAt": {"type": "string"},
      "updatedAt": {"type": "string"}
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("vendors.json", strings.NewReader(directorySchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("vendors.json")
	})
	return schema, schemaErr
}

// Validate checks raw directory JSON against the profile schema.
func Validate(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDirectory, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDirectory, err)
	}
	return nil
}

// Load reads the vendor directory at path. A missing file is an empty directory.
func Load(path string) ([]models.VendorProfile, error) {
	const op = "Load"

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &DirectoryError{Op: op, Path: path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if err := Validate(data); err != nil {
		return nil, &DirectoryError{Op: op, Path: path, Err: err}
	}

	var profiles []models.VendorProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, &DirectoryError{Op: op, Path: path, Err: fmt.Errorf("%w: %v", ErrInvalidDirectory, err)}
	}
	return profiles, nil
}

// Save writes profiles to path, replacing the file atomically.
func Save(path string, profiles []models.VendorProfile) error {
	const op = "Save"

	if profiles == nil {
		profiles = []models.VendorProfile{}
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return &DirectoryError{Op: op, Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".vendors-*.json")
	if err != nil {
		return &DirectoryError{Op: op, Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return &DirectoryError{Op: op, Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &DirectoryError{Op: op, Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &DirectoryError{Op: op, Path: path, Err: err}
	}
	return nil
}

// LoadDirectory loads path and indexes it.
func LoadDirectory(path string) (*Directory, error) {
	profiles, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewDirectory(profiles), nil
}
