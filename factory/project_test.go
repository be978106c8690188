package factory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/safe-harbor-engine/factory"
	"github.com/warp/safe-harbor-engine/generic"
	"github.com/warp/safe-harbor-engine/safeharbor"
)

const sunriseJSON = `{
	"name": "Project Sunrise",
	"capacity": 5.0,
	"total_cost": 8000000,
	"allocated_cost": "520000",
	"payment_date": "2025-12-15",
	"location": "Texas",
	"interconnection_status": "Conditional Approval",
	"site_control": true,
	"permits": "Building Permit Submitted",
	"estimated_pis": "2028-06-30",
	"itc_compliance": {"prevailing_wage": true, "domestic_content_percentage": 45}
}`

func TestParseProject_Valid(t *testing.T) {
	// GIVEN: The calculator form for Project Sunrise
	// WHEN: Parsing it
	// THEN: All fields convert, numeric strings included

	in, err := factory.NewProjectFactory().ParseProject([]byte(sunriseJSON))
	require.NoError(t, err)

	assert.Equal(t, "Project Sunrise", in.Name)
	assert.Equal(t, "5", in.Capacity.String())
	assert.Equal(t, "8000000.00", in.TotalCost.String())
	assert.Equal(t, "520000.00", in.AllocatedCost.String())
	assert.Equal(t, "2025-12-15", in.PaymentDate.String())
	assert.Equal(t, "2028-06-30", in.EstimatedPIS.String())
	assert.True(t, in.SiteControl)
	assert.True(t, in.Compliance.PrevailingWage)
	assert.Equal(t, "45", in.Compliance.DomesticContentPercentage.String())

	p := safeharbor.Classify(in)
	assert.Equal(t, safeharbor.Group3, p.Group)
}

func TestParseProject_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		want  error
	}{
		{"missing name", `{"capacity": 1, "total_cost": 1, "allocated_cost": 0, "payment_date": "2025-01-01"}`, "name", generic.ErrMissingField},
		{"zero capacity", `{"name": "x", "capacity": 0, "total_cost": 1, "allocated_cost": 0, "payment_date": "2025-01-01"}`, "capacity", generic.ErrInvalidCapacity},
		{"negative capacity", `{"name": "x", "capacity": -2, "total_cost": 1, "allocated_cost": 0, "payment_date": "2025-01-01"}`, "capacity", generic.ErrInvalidCapacity},
		{"missing capacity", `{"name": "x", "total_cost": 1, "allocated_cost": 0, "payment_date": "2025-01-01"}`, "capacity", generic.ErrInvalidCapacity},
		{"negative cost", `{"name": "x", "capacity": 1, "total_cost": -1, "allocated_cost": 0, "payment_date": "2025-01-01"}`, "total_cost", generic.ErrInvalidCost},
		{"negative allocation", `{"name": "x", "capacity": 1, "total_cost": 1, "allocated_cost": -5, "payment_date": "2025-01-01"}`, "allocated_cost", generic.ErrInvalidCost},
		{"missing date", `{"name": "x", "capacity": 1, "total_cost": 1, "allocated_cost": 0}`, "payment_date", generic.ErrInvalidDate},
		{"bad date", `{"name": "x", "capacity": 1, "total_cost": 1, "allocated_cost": 0, "payment_date": "12/15/2025"}`, "payment_date", generic.ErrInvalidDate},
		{"impossible date", `{"name": "x", "capacity": 1, "total_cost": 1, "allocated_cost": 0, "payment_date": "2025-02-30"}`, "payment_date", generic.ErrInvalidDate},
		{"bad pis", `{"name": "x", "capacity": 1, "total_cost": 1, "allocated_cost": 0, "payment_date": "2025-01-01", "estimated_pis": "soon"}`, "estimated_pis", generic.ErrInvalidDate},
		{"percentage out of range", `{"name": "x", "capacity": 1, "total_cost": 1, "allocated_cost": 0, "payment_date": "2025-01-01", "itc_compliance": {"domestic_content_percentage": 150}}`, "domestic_content_percentage", generic.ErrInvalidComplianceValue},
	}

	f := factory.NewProjectFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseProject([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, generic.IsClientError(err))

			var fe *generic.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestParseProject_AllocationAboveTotalAccepted(t *testing.T) {
	body := `{"name": "x", "capacity": 1, "total_cost": 100, "allocated_cost": 150, "payment_date": "2025-01-01"}`
	in, err := factory.NewProjectFactory().ParseProject([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "150.00", safeharbor.SafeHarborPercentage(in.AllocatedCost, in.TotalCost).Value.String())
}

func TestParseProject_MalformedJSON(t *testing.T) {
	for _, body := range []string{`{"name": `, `{"name": "X", "capacity": true}`, `[]`, ``} {
		_, err := factory.NewProjectFactory().ParseProject([]byte(body))
		assert.True(t, errors.Is(err, generic.ErrMalformedInput), "body %q: %v", body, err)
		assert.True(t, generic.IsClientError(err))
	}
}

func TestParseContract_MalformedJSON(t *testing.T) {
	for _, body := range []string{`{"vendor_name": `, `{"vendor_name": 7}`, `[]`} {
		_, err := factory.NewProjectFactory().ParseContract([]byte(body))
		assert.True(t, errors.Is(err, generic.ErrMalformedInput), "body %q: %v", body, err)
		assert.True(t, generic.IsClientError(err))
	}
}

func TestProjectToJSON_RoundTrip(t *testing.T) {
	f := factory.NewProjectFactory()
	in, err := f.ParseProject([]byte(sunriseJSON))
	require.NoError(t, err)

	pj := f.ToJSON(safeharbor.Classify(in))
	again, err := f.FromJSON(pj)
	require.NoError(t, err)

	assert.Equal(t, in.Name, again.Name)
	assert.True(t, in.TotalCost.Value.Equal(again.TotalCost.Value))
	assert.Equal(t, in.PaymentDate, again.PaymentDate)
	assert.True(t, pj.Compliance.BOCQualified)
}

// =============================================================================
// CONTRACTS
// =============================================================================

func TestParseContract(t *testing.T) {
	body := `{
		"vendor_name": "ABC Solar Supply",
		"buyer_name": "Sunrise Energy LLC",
		"equipment": "550W modules",
		"quantity": "9,100",
		"total_price": 2500000,
		"delivery_date": "2026-03-15",
		"project_name": "Project Sunrise",
		"project_location": "Texas",
		"payment_terms": "100% at signing"
	}`

	d, err := factory.NewProjectFactory().ParseContract([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "ABC Solar Supply", d.VendorName)
	assert.Equal(t, "2500000.00", d.TotalPrice.String())
	assert.Equal(t, "2026-03-15", d.DeliveryDate.String())
	assert.True(t, d.ContractDate.IsZero())
	assert.Empty(t, d.ContractNumber)
}

func TestParseContract_Rejects(t *testing.T) {
	f := factory.NewProjectFactory()

	_, err := f.ParseContract([]byte(`{"buyer_name": "b", "total_price": 1, "delivery_date": "2026-01-01"}`))
	assert.True(t, errors.Is(err, generic.ErrMissingField))

	_, err = f.ParseContract([]byte(`{"vendor_name": "v", "buyer_name": "b", "total_price": -1, "delivery_date": "2026-01-01"}`))
	assert.True(t, errors.Is(err, generic.ErrInvalidCost))

	_, err = f.ParseContract([]byte(`{"vendor_name": "v", "buyer_name": "b", "total_price": 1}`))
	assert.True(t, errors.Is(err, generic.ErrInvalidDate))
}

func TestContractFromProject(t *testing.T) {
	in, err := factory.NewProjectFactory().ParseProject([]byte(sunriseJSON))
	require.NoError(t, err)

	cj := factory.ContractFromProject(safeharbor.Classify(in))
	assert.Equal(t, "520000.00", cj.TotalPrice.String())
	assert.Equal(t, "2026-03-30", cj.DeliveryDate)
	assert.Equal(t, "Project Sunrise", cj.ProjectName)
	assert.Equal(t, "Texas", cj.ProjectLocation)
}
