package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiling_Validate(t *testing.T) {
	t.Parallel()

	ok := Filing{
		FormType:        FormQuarterly,
		FilingDate:      "2022-06-03",
		ReportDate:      "2022-04-30",
		AccessionNumber: "0000912615-22-000071",
		PrimaryDocument: "urbn-20220430.htm",
	}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.ReportDate = ""
	bad.PrimaryDocument = " "
	err := bad.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidFiling))
	assert.Contains(t, err.Error(), "report_date, primary_document")
}

func TestFiling_FilingYear(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2022, Filing{FilingDate: "2022-06-03"}.FilingYear())
	assert.Equal(t, 0, Filing{FilingDate: "06/03/2022"}.FilingYear())
}

func TestFiling_IsAmendment(t *testing.T) {
	t.Parallel()

	assert.True(t, Filing{FormType: "10-Q/A"}.IsAmendment())
	assert.False(t, Filing{FormType: "10-Q"}.IsAmendment())
}
