package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"todoink/internal/services"
	"todoink/internal/todoist"
)

// PersistedState holds the resolved focus identifiers and the names they were
// resolved from. Empty ids mean the focus has never been resolved.
type PersistedState struct {
	ProjectID   todoist.ID
	SectionID   todoist.ID
	ProjectName string
	SectionName string
	ResolvedAt  time.Time
}

// Resolved reports whether both identifiers are set.
func (p PersistedState) Resolved() bool {
	return !p.ProjectID.IsZero() && !p.SectionID.IsZero()
}

// NeedsResolution reports whether the ids must be looked up again before the
// next render: either they were never resolved, or the configured names no
// longer match the names they were resolved from.
func (p PersistedState) NeedsResolution(project, section string) bool {
	return !p.Resolved() || p.ProjectName != project || p.SectionName != section
}

// Load returns the persisted state, or the zero value when nothing has been
// saved yet.
func (s *Store) Load(ctx context.Context) (PersistedState, error) {
	var (
		projectID   sql.NullString
		sectionID   sql.NullString
		projectName sql.NullString
		sectionName sql.NullString
		resolvedRaw sql.NullString
	)
	err := s.retry(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT project_id, section_id, project_name, section_name, resolved_at
             FROM device_state WHERE id = 1`,
		).Scan(&projectID, &sectionID, &projectName, &sectionName, &resolvedRaw)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return PersistedState{}, nil
	}
	if err != nil {
		return PersistedState{}, services.Wrap(services.ErrStorage, stageName, "load", "", err)
	}

	st := PersistedState{
		ProjectID:   todoist.ID(projectID.String),
		SectionID:   todoist.ID(sectionID.String),
		ProjectName: projectName.String,
		SectionName: sectionName.String,
	}
	st.ResolvedAt = parseTime(resolvedRaw.String)
	return st, nil
}

// Save replaces the persisted state.
func (s *Store) Save(ctx context.Context, st PersistedState) error {
	err := s.exec(ctx,
		`INSERT INTO device_state (id, project_id, section_id, project_name, section_name, resolved_at, updated_at)
         VALUES (1, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             project_id = excluded.project_id,
             section_id = excluded.section_id,
             project_name = excluded.project_name,
             section_name = excluded.section_name,
             resolved_at = excluded.resolved_at,
             updated_at = excluded.updated_at`,
		nullableString(st.ProjectID.String()),
		nullableString(st.SectionID.String()),
		nullableString(st.ProjectName),
		nullableString(st.SectionName),
		nullableTime(st.ResolvedAt),
		formatTime(time.Now()),
	)
	if err != nil {
		return services.Wrap(services.ErrStorage, stageName, "save", "", err)
	}
	return nil
}

// Clear forgets the resolved ids so the next wake resolves again.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.exec(ctx, `DELETE FROM device_state`); err != nil {
		return services.Wrap(services.ErrStorage, stageName, "clear", "", err)
	}
	return nil
}
