package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/diamantrouge/maison/pkg/validate"
)

type appointmentInput struct {
	Date     string `json:"appointmentDate" validate:"required,date"`
	Time     string `json:"appointmentTime" validate:"required,clock"`
	Location string `json:"location"        validate:"required"`
	Type     string `json:"appointmentType" validate:"required,in=discovery,bespoke,bridal,investment"`
	Guests   int    `json:"guestCount"      validate:"nullable,between=1,10"`
	Email    string `json:"email"           validate:"nullable,email"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(appointmentInput{
		Date:     "2026-11-02",
		Time:     "14:30",
		Location: "casablanca",
		Type:     "bridal",
		Guests:   2,
	})
	assert.False(t, validate.HasErrors(errs), "unexpected errors: %v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(appointmentInput{})
	assert.Contains(t, errs, "appointmentDate")
	assert.Contains(t, errs, "appointmentTime")
	assert.Contains(t, errs, "location")
	assert.Contains(t, errs, "appointmentType")
	assert.NotContains(t, errs, "guestCount", "nullable fields are skipped when empty")
}

func TestFormatRules(t *testing.T) {
	errs := validate.Struct(appointmentInput{
		Date:     "yesterday",
		Time:     "25:99",
		Location: "rabat",
		Type:     "brunch",
		Guests:   40,
		Email:    "not-an-email",
	})
	assert.Len(t, errs, 5)
	assert.Equal(t, "The selected appointmentType is invalid.", errs["appointmentType"])
	assert.Equal(t, "The guestCount must be between 1 and 10.", errs["guestCount"])
}

func TestInRuleFollowedByOtherRule(t *testing.T) {
	type in struct {
		Status string `json:"memberStatus" validate:"required,in=regular,gold,platinum,vip,max=8"`
	}
	assert.Empty(t, validate.Struct(in{Status: "platinum"}))
	assert.Contains(t, validate.Struct(in{Status: "diamond"}), "memberStatus")
}

func TestDecimalFields(t *testing.T) {
	type in struct {
		Price decimal.Decimal `json:"basePrice" validate:"required,gt=0"`
	}
	assert.Contains(t, validate.Struct(in{}), "basePrice")
	assert.Contains(t, validate.Struct(in{Price: decimal.NewFromInt(-5)}), "basePrice")
	assert.Empty(t, validate.Struct(in{Price: decimal.RequireFromString("4999.99")}))
}

func TestPointerFields(t *testing.T) {
	type in struct {
		ProductID   uint  `json:"productId"   validate:"required"`
		VariationID *uint `json:"variationId" validate:"nullable,gte=1"`
	}
	zero := uint(0)
	one := uint(1)
	assert.Empty(t, validate.Struct(in{ProductID: 3}))
	assert.Empty(t, validate.Struct(in{ProductID: 3, VariationID: &one}))
	assert.Contains(t, validate.Struct(in{ProductID: 3, VariationID: &zero}), "variationId")
}

func TestDiveIntoSlices(t *testing.T) {
	type translation struct {
		Language string `json:"language" validate:"required,in=en,fr,ar"`
		Name     string `json:"name"     validate:"required"`
	}
	type in struct {
		SKU          string        `json:"sku"          validate:"required,alpha_dash"`
		Translations []translation `json:"translations" validate:"min=1,dive"`
	}

	errs := validate.Struct(in{
		SKU: "ROUGE-PASSION-001",
		Translations: []translation{
			{Language: "fr", Name: "Bague Diamant Rouge Passion"},
			{Language: "de", Name: ""},
		},
	})
	assert.Len(t, errs, 2)
	assert.Contains(t, errs, "translations.1.language")
	assert.Contains(t, errs, "translations.1.name")

	errs = validate.Struct(in{SKU: "ROUGE PASSION"})
	assert.Contains(t, errs, "sku")
	assert.Contains(t, errs, "translations")
}

func TestSlugRule(t *testing.T) {
	type in struct {
		Slug string `json:"slug" validate:"required,slug"`
	}
	assert.Empty(t, validate.Struct(in{Slug: "haute-joaillerie"}))
	assert.Contains(t, validate.Struct(in{Slug: "Haute Joaillerie"}), "slug")
	assert.Contains(t, validate.Struct(in{Slug: "rings--"}), "slug")
}
