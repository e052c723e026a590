package models

import (
	"fmt"
	"strings"
)

// Sport identifies which upstream dataset, credential and quota a call uses
type Sport string

const (
	SportNFL    Sport = "nfl"
	SportNCAAFB Sport = "ncaafb"
	SportNCAAMB Sport = "ncaamb"
)

// Sports lists every supported sport in display order
var Sports = []Sport{SportNFL, SportNCAAFB, SportNCAAMB}

// Valid reports whether s is a supported sport
func (s Sport) Valid() bool {
	switch s {
	case SportNFL, SportNCAAFB, SportNCAAMB:
		return true
	}
	return false
}

// KeyEnvVar returns the environment variable holding the sport's API key
func (s Sport) KeyEnvVar() string {
	return "SPORTSRADAR_" + strings.ToUpper(string(s)) + "_KEY"
}

func (s Sport) String() string {
	return string(s)
}

// ParseSport converts a user supplied tag into a Sport
func ParseSport(raw string) (Sport, error) {
	s := Sport(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown sport %q", raw)
	}
	return s, nil
}
