package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/audit"
	"github.com/jonathan/faculty-recruitment/internal/config"
	"github.com/jonathan/faculty-recruitment/internal/recruitment"
	"github.com/jonathan/faculty-recruitment/internal/recruitment/recruitmenttest"
	"github.com/jonathan/faculty-recruitment/internal/server"
	"github.com/jonathan/faculty-recruitment/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrincipal(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		userID  string
		role    string
		wantErr bool
	}{
		{name: "explicit user", userID: id.String(), role: "admin"},
		{name: "generated user", role: "applicant"},
		{name: "unknown role", role: "root", wantErr: true},
		{name: "bad user id", userID: "42", role: "reviewer", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := parsePrincipal(tt.userID, tt.role)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, types.Role(tt.role), p.Role)
			assert.NotEqual(t, uuid.Nil, p.ID)
			if tt.userID != "" {
				assert.Equal(t, id, p.ID)
			}
		})
	}
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret-of-sufficient-length")
	id := uuid.New()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--user", id.String(), "--role", "reviewer"})
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())

	jwtConfig := jwtConfigFromEnv(t)
	claims, err := server.NewJWTService(jwtConfig).ValidateToken(string(bytes.TrimSpace(out.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, types.Principal{ID: id, Role: types.RoleReviewer}, claims.GetPrincipal())
}

const validJobConfig = `{
	"title": "Assistant Professor, Physics",
	"advertisement_code": "ADV-2026-01",
	"department_name": "Physics",
	"application_start_date": "2026-05-01T00:00:00Z",
	"application_end_date": "2026-07-01T00:00:00Z",
	"required_sections": [
		{"section_type": "personal", "is_mandatory": true},
		{"section_type": "education", "is_mandatory": true, "requires_file": true, "file_label": "Degree certificates", "max_file_size_mb": 2}
	]
}`

func TestValidateJobCommand(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		content    string
		wantErr    bool
		wantOutput string
	}{
		{name: "valid", content: validJobConfig, wantOutput: "education * [Degree certificates]"},
		{
			name:       "end before start",
			content:    `{"title": "x", "advertisement_code": "A", "application_start_date": "2026-07-01T00:00:00Z", "application_end_date": "2026-05-01T00:00:00Z", "required_sections": [{"section_type": "personal"}]}`,
			wantErr:    true,
			wantOutput: "application_end_date",
		},
		{name: "not json", content: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, uuid.NewString()+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetErr(&bytes.Buffer{})
			rootCmd.SetArgs([]string{"validate-job", "--in", path})
			t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetErr(nil); rootCmd.SetArgs(nil) })

			err := rootCmd.Execute()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantOutput != "" {
				assert.Contains(t, out.String(), tt.wantOutput)
			}
		})
	}
}

func TestPrintChecklist(t *testing.T) {
	store := recruitmenttest.NewMemStore()
	job := &types.Job{
		ID:                   uuid.New(),
		Title:                "Professor, Mathematics",
		Status:               types.JobStatusPublished,
		ApplicationStartDate: time.Now().Add(-24 * time.Hour),
		ApplicationEndDate:   time.Now().Add(24 * time.Hour),
		RequiredSections: []types.SectionRequirement{
			{SectionType: types.SectionPersonal, IsMandatory: true},
			{SectionType: types.SectionReferees},
		},
	}
	store.Jobs[job.ID] = job
	app := &types.Application{
		ID:     uuid.New(),
		UserID: uuid.New(),
		JobID:  job.ID,
		JobSnapshot: types.JobSnapshot{
			Title:            job.Title,
			RequiredSections: job.RequiredSections,
		},
		Status:        types.StatusDraft,
		PaymentStatus: types.PaymentPending,
		Sections:      map[types.SectionType]types.SectionState{},
	}
	store.Apps[app.ID] = app

	svc := recruitment.NewService(store, nil)
	var out bytes.Buffer
	require.NoError(t, printChecklist(context.Background(), &out, svc, app.ID))

	output := out.String()
	assert.Contains(t, output, "Professor, Mathematics")
	assert.Contains(t, output, "✗ personal *")
	assert.Contains(t, output, "○ referees")
	assert.Contains(t, output, "personal.data: required but not completed")

	err := printChecklist(context.Background(), &out, svc, uuid.New())
	assert.Error(t, err)
}

func TestPrintAuditEvents(t *testing.T) {
	var out bytes.Buffer
	printAuditEvents(&out, nil)
	assert.Contains(t, out.String(), "no audit events recorded")

	out.Reset()
	actor := uuid.New()
	printAuditEvents(&out, []audit.Event{
		{Action: audit.ActionApplicationSubmitted, ActorID: actor, ActorRole: "applicant", OccurredAt: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)},
	})
	assert.Contains(t, out.String(), "Audit events (1)")
	assert.Contains(t, out.String(), "2026-06-01T10:00:00Z")
	assert.Contains(t, out.String(), "application.submitted")
	assert.Contains(t, out.String(), "applicant "+actor.String())
}

func jwtConfigFromEnv(t *testing.T) *config.JWTConfig {
	t.Helper()
	cfg, err := config.NewJWTConfig()
	require.NoError(t, err)
	return cfg
}
