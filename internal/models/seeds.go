package models

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed seeds.yaml
var seedsYAML []byte

// Seeds holds baseline lookup data shipped with the binary.
type Seeds struct {
	DefaultCategories []string `yaml:"default_categories"`
	RentalStatuses    []struct {
		Name  string `yaml:"name"`
		Color string `yaml:"color"`
	} `yaml:"rental_statuses"`
}

var (
	seedsOnce sync.Once
	seeds     Seeds
	seedsErr  error
)

// LoadSeeds parses the embedded seed data. The result is cached.
func LoadSeeds() (Seeds, error) {
	seedsOnce.Do(func() {
		if err := yaml.Unmarshal(seedsYAML, &seeds); err != nil {
			seedsErr = fmt.Errorf("parse seeds: %w", err)
		}
	})
	return seeds, seedsErr
}

// DefaultCategories returns the built-in category names. The list is part of
// the shipped configuration, so a parse failure here is a programmer error.
func DefaultCategories() []string {
	s, err := LoadSeeds()
	if err != nil {
		panic(err)
	}
	out := make([]string, len(s.DefaultCategories))
	copy(out, s.DefaultCategories)
	return out
}
