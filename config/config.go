package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/metrico/quackgrid/model"
)

// LoadProfile reads a viewer profile from a YAML file
func LoadProfile(filename string) (*model.Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var profile model.Profile
	err = yaml.Unmarshal(data, &profile)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}
