package jobs

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a list of records from a YAML or JSON file. Both formats
// share the record's json field names.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}

	// JSON is a subset of YAML, so one parser covers both.
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse jobs file %s: %w", path, err)
	}

	var records []Record
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &records,
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode jobs file %s: %w", path, err)
	}

	for i, r := range records {
		if err := r.Normalize().Validate(); err != nil {
			return nil, fmt.Errorf("record %d in %s: %w", i+1, path, err)
		}
	}

	return records, nil
}
