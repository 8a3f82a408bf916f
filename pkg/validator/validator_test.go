package validator

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	Query string `binding:"required,notblank,max=20"`
	Start string `binding:"isodate"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&request{Query: "weight", Start: "2026-01-01"}))
	assert.NoError(t, v.Validate(&request{Query: "weight"}))

	err := v.Validate(&request{Query: "   "})
	require.Error(t, err)
	assert.Equal(t, "query is required", err.Error())

	err = v.Validate(&request{Query: "ok", Start: "01/02/2026"})
	require.Error(t, err)
	assert.Equal(t, "start must be a date in YYYY-MM-DD format", err.Error())

	err = v.Validate(&request{Query: "this query is far too long"})
	require.Error(t, err)
	assert.Equal(t, "query must not exceed 20", err.Error())
}

func TestHumanizePassesOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, Humanize(plain))
}

func TestRegisterGin(t *testing.T) {
	RegisterGin()
	RegisterGin()

	err := binding.Validator.ValidateStruct(&request{Query: " "})
	require.Error(t, err)
	assert.EqualError(t, Humanize(err), "query is required")
}
