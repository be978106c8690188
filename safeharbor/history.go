/*
history.go - Append-only compliance change log

PURPOSE:
  The compliance record on a project only holds current values. Every
  update through Portfolio.UpdateCompliance is also recorded as a
  ComplianceChange, so an auditor can see when a flag was set and what it
  was before.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: Changes are never edited or deleted. Reset() is the one
     exception and exists for demo scenarios.
  2. SAME WRITE: The store records the change in the same call that
     replaces the compliance record. Either both land or neither does.
  3. ORDERED: Seq is issued by the store and increases across all projects.

EXAMPLE:
  1. prevailing_wage false -> true          Seq 1
  2. domestic_content_percentage 0 -> 45    Seq 2
  3. prevailing_wage true -> false          Seq 3

  History(id) returns all three, oldest first. The current record says
  prevailing_wage=false; the history explains why ITC dropped back to 6%.

SEE ALSO:
  - store.go: ReplaceCompliance, History
  - portfolio.go: UpdateCompliance builds the change
*/
package safeharbor

import (
	"strconv"
	"time"
)

// ComplianceChange is one recorded compliance update.
type ComplianceChange struct {
	Seq       int64
	ProjectID ProjectID
	Field     ComplianceField
	Previous  string
	Value     string
	ChangedAt time.Time
}

// FieldString renders the current value of field, "true"/"false" for flags
// and the decimal text for the percentage. ok is false for unknown fields.
func (c ITCCompliance) FieldString(field ComplianceField) (string, bool) {
	if field == FieldDomesticContentPercentage {
		return c.DomesticContentPercentage.String(), true
	}
	flag, ok := c.flag(field)
	if !ok {
		return "", false
	}
	return strconv.FormatBool(*flag), true
}

func newComplianceChange(id ProjectID, field ComplianceField, before, after ITCCompliance, at time.Time) ComplianceChange {
	previous, _ := before.FieldString(field)
	value, _ := after.FieldString(field)
	return ComplianceChange{
		ProjectID: id,
		Field:     field,
		Previous:  previous,
		Value:     value,
		ChangedAt: at,
	}
}
