package attest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportData(t *testing.T) {
	got := ReportData("client-abc", "user-123")

	// The binding format is fixed; external verifiers recompute this hash.
	want := sha256.Sum256([]byte("PAYPAL_CLIENT_ID=client-abc|PAYPAL_USER_ID=user-123"))
	assert.Equal(t, hex.EncodeToString(want[:]), got)
	assert.Len(t, got, 64)

	assert.NotEqual(t, got, ReportData("client-abc", "user-456"))
}

func TestFixtureProvider(t *testing.T) {
	provider := &FixtureProvider{}
	assert.Equal(t, "fixture", provider.Name())

	reportData := ReportData("client-abc", "user-123")
	report, err := provider.Report(context.Background(), reportData)
	require.NoError(t, err)

	var fields map[string]string
	require.NoError(t, json.Unmarshal([]byte(report), &fields))

	assert.Equal(t, "mock_attestation", fields["type"])
	assert.Equal(t, reportData, fields["report_data"])
	assert.Equal(t, strings.Repeat("0", 64), fields["measurement"])
	// The placeholder must never be mistakable for a hardware report.
	assert.Contains(t, fields["warning"], "mock")
}
