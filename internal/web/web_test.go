package web

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_RenderDomain(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, page := range []string{AudiencePage, PresenterPage} {
		t.Run(page, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tmpl.ExecuteTemplate(&buf, page, PageData{DomainName: "talk.example.com", ClientIP: "10.0.0.7"}))
			assert.Contains(t, buf.String(), `data-domain="talk.example.com"`)
		})
	}
}

func TestTemplates_AudienceCarriesClientIP(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, AudiencePage, PageData{ClientIP: "2001:db8::7"}))
	assert.Contains(t, buf.String(), `data-client-ip="2001:db8::7"`)
}

func TestStatic_ServesLiveScript(t *testing.T) {
	f, err := Static().Open("live.js")
	require.NoError(t, err)
	defer f.Close()

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(content), "WebSocket")
}
