package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
)

// loadProfile reads a single profile. JSON is accepted as it is a subset
// of YAML.
func loadProfile(path string) (*compat.Profile, error) {
	var p compat.Profile
	if err := decodeFile(path, &p); err != nil {
		return nil, err
	}
	if err := compat.ValidateProfile(&p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

// loadProfiles reads a list of profiles. Entries are validated later by the
// ranker, which skips malformed candidates.
func loadProfiles(path string) ([]compat.Profile, error) {
	var ps []compat.Profile
	if err := decodeFile(path, &ps); err != nil {
		return nil, err
	}
	for i, p := range ps {
		if p.ID == "" {
			return nil, fmt.Errorf("%s: profile %d has no id", path, i)
		}
	}
	return ps, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: file is empty", path)
		}
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
