package safeharbor

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/safe-harbor-engine/generic"
)

var maxDomesticContent = decimal.NewFromInt(100)

// With returns a copy of c with field set to value. Flags take a bool;
// domestic_content_percentage takes a number in [0, 100]. The receiver is
// never modified, so callers replace the whole record.
func (c ITCCompliance) With(field ComplianceField, value any) (ITCCompliance, error) {
	if field == FieldDomesticContentPercentage {
		pct, err := toDecimal(value)
		if err != nil || pct.IsNegative() || pct.GreaterThan(maxDomesticContent) {
			return c, &generic.FieldError{Field: string(field), Value: value, Err: generic.ErrInvalidComplianceValue}
		}
		c.DomesticContentPercentage = pct
		return c, nil
	}

	target, known := c.flag(field)
	if !known {
		return c, &generic.FieldError{Field: string(field), Value: value, Err: generic.ErrUnknownComplianceField}
	}
	flag, ok := value.(bool)
	if !ok {
		return c, &generic.FieldError{Field: string(field), Value: value, Err: generic.ErrInvalidComplianceValue}
	}
	*target = flag
	return c, nil
}

// flag returns a pointer to the boolean behind field, on the receiver copy.
func (c *ITCCompliance) flag(field ComplianceField) (*bool, bool) {
	switch field {
	case FieldBOCQualified:
		return &c.BOCQualified, true
	case FieldPrevailingWage:
		return &c.PrevailingWage, true
	case FieldApprenticeship:
		return &c.Apprenticeship, true
	case FieldDomesticContent:
		return &c.DomesticContent, true
	case FieldEnergyCommunity:
		return &c.EnergyCommunity, true
	case FieldLaborStandardsRegistered:
		return &c.LaborStandardsRegistered, true
	case FieldContinuousConstruction:
		return &c.ContinuousConstruction, true
	}
	return nil, false
}

func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	case decimal.Decimal:
		return v, nil
	}
	return decimal.Zero, fmt.Errorf("unsupported type %T", value)
}
