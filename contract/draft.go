/*
Package contract drafts binding written equipment purchase contracts used
to document a 5% safe harbor payment.

PURPOSE:
  Renders a fixed-structure contract from the deal fields. There is no
  decision logic here beyond two computations:
  - Liquidated damages: exactly 5% of the total price
  - Date formatting: "January 2, 2006"

REQUIRED ELEMENTS (IRS Notice 2013-29):
  - Enforceable under state law
  - Liquidated damages of at least 5% of the contract price
  - A specific delivery timeline supporting the 105-day expectation
  - Title transfer and risk of loss provisions (left as placeholders)

USAGE:
  text, err := contract.Draft(contract.Data{
      VendorName: "ABC Solar Supply",
      TotalPrice: generic.NewMoney(2_500_000),
      ...
  })

SEE ALSO:
  - currency.go: USD formatting
  - export.go: Handing finished text to a sink
*/
package contract

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/warp/safe-harbor-engine/generic"
	"github.com/warp/safe-harbor-engine/safeharbor"
)

// LiquidatedDamagesRate is the share of the contract price owed on
// non-delivery.
var LiquidatedDamagesRate = generic.NewPercent(5)

// Data holds the fields of a contract.
type Data struct {
	VendorName      string
	BuyerName       string
	Equipment       string
	Quantity        string
	TotalPrice      generic.Money
	DeliveryDate    generic.TimePoint
	ProjectName     string
	ProjectLocation string
	PaymentTerms    string

	ContractDate   generic.TimePoint
	ContractNumber string
}

//go:embed contract.tmpl
var contractTemplate string

var tmpl = template.Must(template.New("contract").Parse(contractTemplate))

// view is what the template sees: every value already formatted.
type view struct {
	VendorName         string
	BuyerName          string
	Equipment          string
	Quantity           string
	TotalPrice         string
	LiquidatedDamages  string
	DeliveryDate       string
	DeliveryWindowDays int
	ProjectName        string
	ProjectLocation    string
	PaymentTerms       string
	ContractDate       string
	ContractNumber     string
}

// LiquidatedDamages is 5% of total, rounded to the cent.
func LiquidatedDamages(total generic.Money) generic.Money {
	return total.Percent(LiquidatedDamagesRate)
}

// Draft renders the contract text.
func Draft(d Data) (string, error) {
	v := view{
		VendorName:         d.VendorName,
		BuyerName:          d.BuyerName,
		Equipment:          d.Equipment,
		Quantity:           d.Quantity,
		TotalPrice:         FormatUSD(d.TotalPrice),
		LiquidatedDamages:  FormatUSD(LiquidatedDamages(d.TotalPrice)),
		DeliveryDate:       d.DeliveryDate.Long(),
		DeliveryWindowDays: safeharbor.EconomicPerformanceDays,
		ProjectName:        d.ProjectName,
		ProjectLocation:    d.ProjectLocation,
		PaymentTerms:       d.PaymentTerms,
		ContractDate:       d.ContractDate.Long(),
		ContractNumber:     d.ContractNumber,
	}

	return render(tmpl, v)
}

func render(t *template.Template, v view) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, v); err != nil {
		return "", fmt.Errorf("failed to render contract: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}

// NewContractNumber issues a contract number of the form SH-XXXXXXXX.
func NewContractNumber() string {
	id := uuid.New()
	return "SH-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// Stamp fills ContractDate and ContractNumber when the caller left them empty.
func Stamp(d Data, now time.Time) Data {
	if d.ContractDate.IsZero() {
		d.ContractDate = generic.FromTime(now)
	}
	if d.ContractNumber == "" {
		d.ContractNumber = NewContractNumber()
	}
	return d
}
