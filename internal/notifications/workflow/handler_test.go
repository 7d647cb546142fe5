package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumiso/internal/types"
)

// ============================================================================
// Test doubles
// ============================================================================

type stubTemplates struct {
	template *types.MessageTemplate
	view     *types.TemplateChannelView
	err      error
	askedFor string
}

func (s *stubTemplates) GetWithEmailView(_ context.Context, templateID string) (*types.MessageTemplate, *types.TemplateChannelView, error) {
	s.askedFor = templateID
	return s.template, s.view, s.err
}

type stubIdentities struct {
	user *types.UserIdentity
	err  error
}

func (s *stubIdentities) GetUserByID(_ context.Context, _ string) (*types.UserIdentity, error) {
	return s.user, s.err
}

type captureProvider struct {
	input types.SendInput
	calls int
	err   error
}

func (p *captureProvider) Send(_ context.Context, input types.SendInput) (string, error) {
	p.calls++
	p.input = input
	if p.err != nil {
		return "", p.err
	}
	return "re_msg_1", nil
}

type stubLogger struct{}

func (l *stubLogger) Info(msg string, args ...any)  {}
func (l *stubLogger) Error(msg string, args ...any) {}
func (l *stubLogger) Warn(msg string, args ...any)  {}
func (l *stubLogger) With(args ...any) types.Logger { return l }

func workflowRecord(meta types.Metadata) *types.NotificationRecord {
	return &types.NotificationRecord{
		ID:               "notif_1",
		NotificationType: types.TypeWorkflowMessage,
		DeliveryMethod:   types.DeliveryImmediate,
		OrganizationID:   "org_1",
		UserID:           "user_1",
		Metadata:         meta,
	}
}

func sessionTemplate() (*types.MessageTemplate, *types.TemplateChannelView) {
	return &types.MessageTemplate{
			ID:            "tmpl_1",
			Name:          "Session Reminder",
			MasterSubject: "Reminder: {session_name}",
			MasterContent: "<p>master</p>",
		}, &types.TemplateChannelView{
			TemplateID: "tmpl_1",
			Channel:    "email",
			Subject:    "Session tomorrow: {session_name|Photography Session}",
			Content:    "<p>Hi {lead_name}, see you at {session_location}. Call us: {customer_phone}</p>",
		}
}

// ============================================================================
// Handle
// ============================================================================

func TestHandler_RendersAndSends(t *testing.T) {
	tmpl, view := sessionTemplate()
	templates := &stubTemplates{template: tmpl, view: view}
	identities := &stubIdentities{user: &types.UserIdentity{ID: "user_1", Email: "ayse@example.com"}}
	provider := &captureProvider{}
	h := New(templates, identities, provider, Config{}, &stubLogger{})

	result, err := h.Handle(context.Background(), workflowRecord(types.Metadata{
		"template_id": "tmpl_1",
		"entity_data": map[string]any{
			"session_name":     "Kaya Wedding",
			"lead_name":        "Mehmet",
			"session_location": "Riverside Park",
			"customer_phone":   "+90 555 000 00 00",
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, "re_msg_1", result.EmailID)
	assert.Equal(t, "tmpl_1", templates.askedFor)

	assert.Equal(t, []string{"ayse@example.com"}, provider.input.To)
	assert.Equal(t, "Session tomorrow: Kaya Wedding", provider.input.Subject)
	assert.Contains(t, provider.input.HTML, "Hi Mehmet")
	assert.Contains(t, provider.input.HTML, "Riverside Park")
	assert.Contains(t, provider.input.HTML, "+90 555 000 00 00")
}

func TestHandler_MissingTemplateIDIsFatal(t *testing.T) {
	templates := &stubTemplates{}
	h := New(templates, &stubIdentities{}, &captureProvider{}, Config{}, &stubLogger{})

	_, err := h.Handle(context.Background(), workflowRecord(types.Metadata{}))
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeNotifMissingMetadata, appErr.Code)
	assert.Empty(t, templates.askedFor)
}

func TestHandler_TemplateNotFound(t *testing.T) {
	templates := &stubTemplates{
		err: types.NewAppError(types.ErrCodeNotFoundTemplate, "Template not found: tmpl_9", nil),
	}
	provider := &captureProvider{}
	h := New(templates, &stubIdentities{}, provider, Config{}, &stubLogger{})

	_, err := h.Handle(context.Background(), workflowRecord(types.Metadata{"template_id": "tmpl_9"}))
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeNotFoundTemplate, appErr.Code)
	assert.Equal(t, "Template not found: tmpl_9", appErr.Message)
	assert.Zero(t, provider.calls)
}

func TestHandler_MissingRecipientEmailIsFatal(t *testing.T) {
	tmpl, view := sessionTemplate()
	templates := &stubTemplates{template: tmpl, view: view}
	identities := &stubIdentities{user: &types.UserIdentity{ID: "user_1"}}
	provider := &captureProvider{}
	h := New(templates, identities, provider, Config{}, &stubLogger{})

	_, err := h.Handle(context.Background(), workflowRecord(types.Metadata{"template_id": "tmpl_1"}))
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeEmailMissingAddr, appErr.Code)
	assert.Zero(t, provider.calls)
}

func TestHandler_FallsBackToMasterCopy(t *testing.T) {
	templates := &stubTemplates{
		template: &types.MessageTemplate{
			ID:            "tmpl_1",
			MasterSubject: "Hello {lead_name}",
			MasterContent: "<p>{lead_name}, your gallery is ready.</p>",
		},
		view: &types.TemplateChannelView{TemplateID: "tmpl_1", Channel: "email"},
	}
	identities := &stubIdentities{user: &types.UserIdentity{ID: "user_1", Email: "ayse@example.com"}}
	provider := &captureProvider{}
	h := New(templates, identities, provider, Config{}, &stubLogger{})

	_, err := h.Handle(context.Background(), workflowRecord(types.Metadata{
		"template_id": "tmpl_1",
		"entity_data": map[string]any{"lead_name": "Mehmet"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Hello Mehmet", provider.input.Subject)
	assert.Contains(t, provider.input.HTML, "Mehmet, your gallery is ready.")
}

// ============================================================================
// Placeholder substitution
// ============================================================================

func TestReplacePlaceholders(t *testing.T) {
	tests := []struct {
		name string
		text string
		data map[string]string
		want string
	}{
		{
			name: "simple substitution",
			text: "Hi {lead_name}",
			data: map[string]string{"lead_name": "Ayşe"},
			want: "Hi Ayşe",
		},
		{
			name: "fallback used when value empty",
			text: "{session_name|Photography Session}",
			data: map[string]string{},
			want: "Photography Session",
		},
		{
			name: "value wins over fallback",
			text: "{session_name|Photography Session}",
			data: map[string]string{"session_name": "Kaya Wedding"},
			want: "Kaya Wedding",
		},
		{
			name: "unknown key keeps literal token",
			text: "before {unknown_key} after",
			data: map[string]string{},
			want: "before {unknown_key} after",
		},
		{
			name: "empty session_location becomes dash",
			text: "Location: {session_location}",
			data: map[string]string{"session_location": ""},
			want: "Location: -",
		},
		{
			name: "stock Studio location becomes dash",
			text: "Location: {session_location}",
			data: map[string]string{"session_location": "Studio"},
			want: "Location: -",
		},
		{
			name: "stock TBD location becomes dash",
			text: "Location: {session_location}",
			data: map[string]string{"session_location": "TBD"},
			want: "Location: -",
		},
		{
			name: "real location passes through",
			text: "Location: {session_location}",
			data: map[string]string{"session_location": "Riverside Park"},
			want: "Location: Riverside Park",
		},
		{
			name: "empty phone becomes dash",
			text: "Call: {customer_phone}",
			data: map[string]string{"customer_phone": "  "},
			want: "Call: -",
		},
		{
			name: "empty phone ignores fallback",
			text: "Call: {customer_phone|unknown}",
			data: map[string]string{},
			want: "Call: -",
		},
		{
			name: "phone with value passes through",
			text: "Call: {lead_phone}",
			data: map[string]string{"lead_phone": "+90 555 123 45 67"},
			want: "Call: +90 555 123 45 67",
		},
		{
			name: "multiple tokens",
			text: "{a} and {b|two} and {c}",
			data: map[string]string{"a": "one"},
			want: "one and two and {c}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReplacePlaceholders(tt.text, tt.data))
		})
	}
}

func TestFlattenEntityData(t *testing.T) {
	data := flattenEntityData(map[string]any{
		"name":    "Kaya Wedding",
		"count":   float64(3),
		"price":   12.5,
		"active":  true,
		"nothing": nil,
	})
	assert.Equal(t, "Kaya Wedding", data["name"])
	assert.Equal(t, "3", data["count"])
	assert.Equal(t, "12.5", data["price"])
	assert.Equal(t, "true", data["active"])
	assert.NotContains(t, data, "nothing")
}
