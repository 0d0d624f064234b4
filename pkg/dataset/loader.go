package dataset

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a dataset JSON file into the boundary mapping. The file must
// contain a JSON object keyed by transcript id; payload shapes are not checked
// here, that is the Validator's job.
func LoadFile(path string) (RawDataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset file: %w", err)
	}
	return Decode(data)
}

// Decode parses raw JSON bytes into the boundary mapping.
func Decode(data []byte) (RawDataset, error) {
	var raw RawDataset
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}
	return raw, nil
}
