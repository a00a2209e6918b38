package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bdickey/b6/internal/calendar"
)

// LoadCarpoolFile reads the default weekly carpool matrix from YAML:
//
//	monday:
//	  am: Alice
//	  pm: Bob
//	tue: {am: Carol}
func LoadCarpoolFile(path string) (calendar.CarpoolMatrix, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading carpool file: %w", err)
	}
	return ParseCarpool(content)
}

func ParseCarpool(content []byte) (calendar.CarpoolMatrix, error) {
	var named map[string]calendar.Assignment
	if err := yaml.Unmarshal(content, &named); err != nil {
		return nil, fmt.Errorf("parsing carpool yaml: %w", err)
	}
	matrix, err := calendar.CarpoolMatrixFromNames(named)
	if err != nil {
		return nil, fmt.Errorf("building carpool matrix: %w", err)
	}
	return matrix, nil
}
