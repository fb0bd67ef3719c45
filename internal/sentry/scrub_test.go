package sentry

import (
	"testing"

	"github.com/getsentry/sentry-go"
)

func TestScrubEvent_RedactsSensitiveHeaders(t *testing.T) {
	event := &sentry.Event{
		Request: &sentry.Request{
			Headers: map[string]string{
				"Authorization": "Bearer secret-token",
				"Cookie":        "moodify_session=abc123",
				"Set-Cookie":    "moodify_session=abc123; HttpOnly",
				"Content-Type":  "application/json",
			},
		},
	}

	result := ScrubEvent(event, nil)

	if result.Request.Headers["Authorization"] != "[Filtered]" {
		t.Errorf("expected Authorization to be [Filtered], got %s", result.Request.Headers["Authorization"])
	}
	if result.Request.Headers["Cookie"] != "[Filtered]" {
		t.Errorf("expected Cookie to be [Filtered], got %s", result.Request.Headers["Cookie"])
	}
	if result.Request.Headers["Set-Cookie"] != "[Filtered]" {
		t.Errorf("expected Set-Cookie to be [Filtered], got %s", result.Request.Headers["Set-Cookie"])
	}
	if result.Request.Headers["Content-Type"] != "application/json" {
		t.Errorf("expected Content-Type to be preserved, got %s", result.Request.Headers["Content-Type"])
	}
}

func TestScrubEvent_StripsQueryStringAndBody(t *testing.T) {
	event := &sentry.Event{
		Request: &sentry.Request{
			QueryString: "code=AQB-auth-code&state=f81d4fae",
			Data:        `{"refresh_token":"AQC-refresh"}`,
		},
	}

	result := ScrubEvent(event, nil)

	if result.Request.QueryString != "" {
		t.Errorf("expected query string to be stripped, got %s", result.Request.QueryString)
	}
	if result.Request.Data != "" {
		t.Errorf("expected request body to be stripped, got %s", result.Request.Data)
	}
}

func TestScrubEvent_ScrubsSensitiveTags(t *testing.T) {
	event := &sentry.Event{
		Tags: map[string]string{
			"environment":  "production",
			"access_token": "BQA-access",
			"state":        "f81d4fae",
		},
	}

	result := ScrubEvent(event, nil)

	if result.Tags["environment"] != "production" {
		t.Errorf("expected environment tag to be preserved, got %s", result.Tags["environment"])
	}
	if result.Tags["access_token"] != "[Filtered]" {
		t.Errorf("expected access_token tag to be [Filtered], got %s", result.Tags["access_token"])
	}
	if result.Tags["state"] != "[Filtered]" {
		t.Errorf("expected state tag to be [Filtered], got %s", result.Tags["state"])
	}
}

func TestScrubEvent_ScrubsBreadcrumbData(t *testing.T) {
	event := &sentry.Event{
		Breadcrumbs: []*sentry.Breadcrumb{
			{
				Message: "token exchange",
				Data: map[string]interface{}{
					"code":     "AQB-auth-code",
					"endpoint": "/api/token",
				},
			},
		},
	}

	result := ScrubEvent(event, nil)

	if result.Breadcrumbs[0].Data["code"] != "[Filtered]" {
		t.Errorf("expected code breadcrumb data to be [Filtered], got %v", result.Breadcrumbs[0].Data["code"])
	}
	if result.Breadcrumbs[0].Data["endpoint"] != "/api/token" {
		t.Errorf("expected endpoint breadcrumb data to be preserved, got %v", result.Breadcrumbs[0].Data["endpoint"])
	}
}

func TestScrubEvent_NilRequest(t *testing.T) {
	event := &sentry.Event{Message: "no request attached"}

	result := ScrubEvent(event, nil)

	if result.Message != "no request attached" {
		t.Errorf("expected event to pass through unchanged, got %s", result.Message)
	}
}

func TestScrubTransaction_AppliesSameScrubbing(t *testing.T) {
	event := &sentry.Event{
		Request: &sentry.Request{
			Headers: map[string]string{"Authorization": "Bearer secret"},
		},
	}

	result := ScrubTransaction(event, nil)

	if result.Request.Headers["Authorization"] != "[Filtered]" {
		t.Errorf("expected Authorization to be [Filtered], got %s", result.Request.Headers["Authorization"])
	}
}
