package list_salon_reservations

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
)

func TestToServiceRequest(t *testing.T) {
	query := url.Values{
		"staffId":         {"7"},
		"date":            {"2025-03-11"},
		"from":            {"2025-01-01"},
		"includeInactive": {"true"},
	}

	req, err := ToServiceRequest(1, 100, query)
	require.NoError(t, err)

	require.NotNil(t, req.StaffID)
	assert.Equal(t, int64(7), *req.StaffID)
	require.NotNil(t, req.StartDate)
	require.NotNil(t, req.EndDate)
	assert.Equal(t, "2025-03-11", req.StartDate.Format(domain.DateFormat))
	assert.Equal(t, "2025-03-11", req.EndDate.Format(domain.DateFormat))
	assert.True(t, req.IncludeInactive)
	assert.False(t, req.IncludeTrashed)
}

func TestToServiceRequest_Period(t *testing.T) {
	req, err := ToServiceRequest(1, 100, url.Values{"from": {"2025-03-01"}, "to": {"2025-03-31"}})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-01", req.StartDate.Format(domain.DateFormat))
	assert.Equal(t, "2025-03-31", req.EndDate.Format(domain.DateFormat))
}

func TestToServiceRequest_Invalid(t *testing.T) {
	tests := []url.Values{
		{"staffId": {"x"}},
		{"staffId": {"-1"}},
		{"date": {"03/11/2025"}},
		{"from": {"yesterday"}},
		{"includeTrashed": {"maybe"}},
	}

	for _, query := range tests {
		t.Run(query.Encode(), func(t *testing.T) {
			_, err := ToServiceRequest(1, 100, query)
			assert.Error(t, err)
		})
	}
}
