package portal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRefMatches(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"embedded object", `{"id": 12, "status": "APPROVED"}`, true},
		{"embedded object wrong id", `{"id": 13}`, false},
		{"iri", `"/api/applications/12"`, true},
		{"iri with query", `"/api/applications/12?embed=1"`, true},
		{"iri wrong id", `"/api/applications/121"`, false},
		{"iri wrong resource", `"/api/payments/12"`, false},
		{"null", `null`, false},
		{"number", `12`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ref Ref
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ref))
			require.Equal(t, tt.want, ref.Matches("applications", 12))
		})
	}

	var empty Ref
	require.False(t, empty.Matches("applications", 12))
}

func TestValidStatuses(t *testing.T) {
	for _, s := range ApplicationStatuses {
		require.True(t, ValidApplicationStatus(s), s)
	}
	require.False(t, ValidApplicationStatus("approved"), "application statuses are uppercase")
	require.False(t, ValidApplicationStatus(""))

	for _, s := range PaymentStatuses {
		require.True(t, ValidPaymentStatus(s), s)
	}
	require.False(t, ValidPaymentStatus("COMPLETED"), "payment statuses are lowercase")
}

func TestRefRoundTrip(t *testing.T) {
	type holder struct {
		Application Ref `json:"application,omitempty"`
	}

	for _, raw := range []string{`{"application":{"id":4}}`, `{"application":"/api/applications/4"}`} {
		var h holder
		require.NoError(t, json.Unmarshal([]byte(raw), &h))
		out, err := json.Marshal(h)
		require.NoError(t, err)
		require.JSONEq(t, raw, string(out))
	}
}
