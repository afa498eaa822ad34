package handler

import (
	"context"
	"testing"

	"github.com/hometag/housing-api/internal/lib/census"
	"github.com/hometag/housing-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHousingDataRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     HousingDataRequest
		wantErr bool
	}{
		{"single code", HousingDataRequest{ZipCodes: []string{"94103"}}, false},
		{"with minimum", HousingDataRequest{ZipCodes: []string{"94103"}, MinOwnerOccupied: "49.5"}, false},
		{"negative minimum", HousingDataRequest{ZipCodes: []string{"94103"}, MinOwnerOccupied: "-1"}, false},
		{"padded minimum", HousingDataRequest{ZipCodes: []string{"94103"}, MinOwnerOccupied: " 50 "}, false},
		{"no codes", HousingDataRequest{}, true},
		{"empty list", HousingDataRequest{ZipCodes: []string{}}, true},
		{"word minimum", HousingDataRequest{ZipCodes: []string{"94103"}, MinOwnerOccupied: "fifty"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHousingDataRequest_TrimsZipCodes(t *testing.T) {
	req := HousingDataRequest{ZipCodes: []string{" 94103", "10001 "}}
	require.NoError(t, req.Validate())
	assert.Equal(t, []string{"94103", "10001"}, req.ZipCodes)
}

func TestHousingDataRequest_MinOwnerOccupied(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		req := HousingDataRequest{ZipCodes: []string{"94103"}}
		require.NoError(t, req.Validate())
		assert.Nil(t, req.minOwnerOccupied)
	})

	accepted := []struct {
		raw  string
		want float64
	}{
		{"49.99", 49.99},
		{".5", 0.5},
		{"5.", 5},
		{"5e1", 50},
		{"-0", 0},
	}
	for _, tt := range accepted {
		t.Run(tt.raw, func(t *testing.T) {
			req := HousingDataRequest{ZipCodes: []string{"94103"}, MinOwnerOccupied: tt.raw}
			require.NoError(t, req.Validate())
			require.NotNil(t, req.minOwnerOccupied)
			assert.Equal(t, tt.want, *req.minOwnerOccupied)
		})
	}

	rejected := []string{"half", "NaN", "inf", "-Inf", "1e400"}
	for _, raw := range rejected {
		t.Run(raw, func(t *testing.T) {
			req := HousingDataRequest{ZipCodes: []string{"94103"}, MinOwnerOccupied: raw}
			err := req.Validate()

			var custom validation.CustomValidationErrors
			require.ErrorAs(t, err, &custom)
			assert.Equal(t, "min_owner_occupied", custom[0].Field)
			assert.Nil(t, req.minOwnerOccupied)
		})
	}
}

func TestAPIKeyTestFailure(t *testing.T) {
	assert.Equal(t, "API returned status 403: nope",
		apiKeyTestFailure(&census.RejectedError{Dataset: census.DatasetACS5, StatusCode: 403, Body: "nope"}))

	msg := apiKeyTestFailure(&census.UnavailableError{Dataset: census.DatasetACS5, Err: context.DeadlineExceeded})
	assert.Contains(t, msg, "API test failed: ")
}
