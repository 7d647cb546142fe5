package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lumiso/internal/types"
)

// TemplateRepository reads workflow message templates and their channel
// rendering views.
type TemplateRepository struct {
	db DBTX
}

// NewTemplateRepository creates a TemplateRepository backed by the given
// database connection.
func NewTemplateRepository(db DBTX) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// GetWithEmailView loads a message template together with its email channel
// view. A template without an email view is treated as not found, matching
// the dispatch contract for workflow messages.
func (r *TemplateRepository) GetWithEmailView(ctx context.Context, templateID string) (*types.MessageTemplate, *types.TemplateChannelView, error) {
	var (
		t             types.MessageTemplate
		v             types.TemplateChannelView
		masterSubject *string
		masterContent *string
		viewSubject   *string
		viewContent   *string
	)
	row := r.db.QueryRow(ctx,
		`SELECT t.id, t.name, t.master_subject, t.master_content,
		        v.channel, v.subject, v.content_html
		 FROM message_templates t
		 JOIN template_channel_views v ON v.template_id = t.id AND v.channel = 'email'
		 WHERE t.id = $1`,
		templateID,
	)
	err := row.Scan(&t.ID, &t.Name, &masterSubject, &masterContent,
		&v.Channel, &viewSubject, &viewContent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, types.NewAppError(types.ErrCodeNotFoundTemplate,
				"Template not found: "+templateID, err)
		}
		return nil, nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load message template", err)
	}

	if masterSubject != nil {
		t.MasterSubject = *masterSubject
	}
	if masterContent != nil {
		t.MasterContent = *masterContent
	}
	v.TemplateID = t.ID
	if viewSubject != nil {
		v.Subject = *viewSubject
	}
	if viewContent != nil {
		v.Content = *viewContent
	}
	return &t, &v, nil
}
