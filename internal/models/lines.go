package models

import "database/sql"

// ClosingLine is one game's closing spread (home line) and total as a lines file lists it
type ClosingLine struct {
	Date      string // YYYY-MM-DD, Eastern
	HomeTeam  string // full name, e.g. "Kansas City Chiefs"
	Spread    sql.NullFloat64
	OverUnder sql.NullFloat64
}

// HasLine reports whether either number is present
func (l ClosingLine) HasLine() bool {
	return l.Spread.Valid || l.OverUnder.Valid
}
