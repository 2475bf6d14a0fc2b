package team

import (
	"fmt"
	"regexp"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Team is a real football club taking part in the match. It is immutable after creation.
type Team struct {
	ID    string
	Name  string
	Short string
	Color string
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if len(t.Short) > 4 {
		return fmt.Errorf("team short code must be at most 4 characters")
	}
	if t.Color != "" && !colorPattern.MatchString(t.Color) {
		return fmt.Errorf("team color must be a #RRGGBB hex value")
	}

	return nil
}
