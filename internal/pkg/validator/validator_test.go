package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	City  string `json:"city" validate:"required,max=5"`
	Alias string `json:"alias" validate:"max=3"`
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	errs := Validate(&sample{City: "", Alias: "toolong"})

	assert.Equal(t, map[string]string{"city": "required", "alias": "max"}, errs)
}

func TestValidate_Valid(t *testing.T) {
	assert.Nil(t, Validate(&sample{City: "Seoul"}))
}
