package models

import (
	"time"
	// embedded zone database so Eastern time resolves on minimal images
	_ "time/tzdata"
)

// Primetime tags
const (
	PrimetimeMNF      = "MNF"
	PrimetimeTNF      = "TNF"
	PrimetimeSNF      = "SNF"
	PrimetimeSaturday = "Saturday Primetime"
)

// Eastern is the zone NFL kickoffs and closing-line dates are listed in
var Eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// Primetime tags an NFL kickoff by its Eastern weekday and hour.
// Monday (from 1970) and Thursday (from 2006) games are tagged at any hour,
// Sunday (from 1987) and Saturday games only from 7pm.
func Primetime(kickoff time.Time, season int) string {
	if kickoff.IsZero() {
		return ""
	}

	local := kickoff.In(Eastern)
	evening := local.Hour() >= 19

	switch local.Weekday() {
	case time.Monday:
		if season >= 1970 {
			return PrimetimeMNF
		}
	case time.Thursday:
		if season >= 2006 {
			return PrimetimeTNF
		}
	case time.Sunday:
		if evening && season >= 1987 {
			return PrimetimeSNF
		}
	case time.Saturday:
		if evening {
			return PrimetimeSaturday
		}
	}
	return ""
}
