package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websectester/websectester/internal/report"
)

func TestMixedContentFindingsCapsListedResources(t *testing.T) {
	var resources []insecureResource
	for i := 0; i < 8; i++ {
		resources = append(resources, insecureResource{Type: "image", URL: "http://cdn.example/img"})
	}

	findings := mixedContentFindings(resources)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, report.SeverityMedium, f.Severity)
	assert.Equal(t, 8, f.Details["count"])
	assert.Len(t, f.Details["resources"], mixedContentCap)
}

func TestMixedContentFindingsEmpty(t *testing.T) {
	assert.Empty(t, mixedContentFindings(nil))
}

func TestFormFindingsInsecureAction(t *testing.T) {
	findings := formFindings([]pageForm{{Action: "http://login.example/submit"}}, nil, true)
	require.Len(t, findings, 1)
	assert.Equal(t, report.SeverityHigh, findings[0].Severity)
	assert.Equal(t, "Insecure Form Submission", findings[0].Title)
}

func TestFormFindingsEmptyActionOnInsecurePage(t *testing.T) {
	findings := formFindings([]pageForm{{Action: ""}}, nil, false)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Details["forms"], "Current page (insecure)")
}

func TestFormFindingsEmptyActionOnSecurePageNotFlagged(t *testing.T) {
	assert.Empty(t, formFindings([]pageForm{{Action: ""}}, nil, true))
}

func TestFormFindingsPasswordAutocomplete(t *testing.T) {
	findings := formFindings(nil, []passwordInput{
		{Autocomplete: ""},
		{Autocomplete: "on"},
		{Autocomplete: "new-password"},
	}, true)

	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, report.SeverityLow, f.Severity)
		assert.Equal(t, "Password Field Autocomplete", f.Title)
	}
	assert.Equal(t, "not set", findings[0].Details["autocomplete"])
	assert.Equal(t, "on", findings[1].Details["autocomplete"])
}

func TestStorageFindingsFlagsSensitiveKeys(t *testing.T) {
	local := map[string]string{
		"auth_token": "eyJhbGciOi...",
		"theme":      "dark",
	}
	session := map[string]string{
		"SessionID": "abc123",
	}

	findings := storageFindings(local, session)

	var sensitive, summaries []report.Finding
	for _, f := range findings {
		switch f.Category {
		case "client_storage":
			sensitive = append(sensitive, f)
		case "info":
			summaries = append(summaries, f)
		}
	}

	require.Len(t, sensitive, 2)
	for _, f := range sensitive {
		assert.Equal(t, report.SeverityMedium, f.Severity)
	}
	assert.Equal(t, "localStorage", sensitive[0].Details["storage_type"])
	assert.Equal(t, "auth_token", sensitive[0].Details["key"])
	assert.Equal(t, "sessionStorage", sensitive[1].Details["storage_type"])

	require.Len(t, summaries, 1)
	assert.Equal(t, "Client Storage Detected", summaries[0].Title)
}

func TestStorageFindingsTruncatesLongValues(t *testing.T) {
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	findings := storageFindings(map[string]string{"password": string(long)}, nil)

	require.NotEmpty(t, findings)
	preview, ok := findings[0].Details["value_preview"].(string)
	require.True(t, ok)
	assert.Len(t, preview, 53)
	assert.True(t, len(preview) < 80)
}

func TestStorageFindingsEmptyStorage(t *testing.T) {
	assert.Empty(t, storageFindings(nil, nil))
}

func TestDialogWatcherArmResetsState(t *testing.T) {
	w := &dialogWatcher{}
	w.record("xss fired")

	message, fired := w.observed()
	require.True(t, fired)
	assert.Equal(t, "xss fired", message)

	w.arm()
	_, fired = w.observed()
	assert.False(t, fired)
}
