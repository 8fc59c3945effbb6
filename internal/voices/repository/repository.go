// Package repository implements the voice pool store on PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"campaign_audio_backend/platform/apperr"
)

const (
	groupNotFoundMessage = "voice group not found"
	voiceNotFoundMessage = "voice not found"

	uniqueViolationCode = "23505"
)

// VoiceGroup is a named pool of interchangeable voices.
type VoiceGroup struct {
	ID          uuid.UUID
	Name        string
	Description *string
	CreatedAt   time.Time
	Voices      []Voice
}

// Voice is one uploaded voice asset inside a group.
type Voice struct {
	ID        uuid.UUID
	GroupID   uuid.UUID
	Name      string
	Filename  string
	Filepath  string
	IsActive  bool
	CreatedAt time.Time
}

// Repo implements the voice pool repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new voice repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// CreateGroup inserts a voice group; duplicate names surface as a conflict.
func (r *Repo) CreateGroup(ctx context.Context, name string, description *string) (VoiceGroup, error) {
	group := VoiceGroup{ID: uuid.New(), Name: name, Description: description}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO voice_groups (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		group.ID, group.Name, group.Description,
	).Scan(&group.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return VoiceGroup{}, apperr.Conflict(fmt.Sprintf("voice group %q already exists", name))
		}
		return VoiceGroup{}, fmt.Errorf("create voice group: %w", err)
	}
	group.Voices = []Voice{}
	return group, nil
}

// GetGroup retrieves a voice group without its voices.
func (r *Repo) GetGroup(ctx context.Context, id uuid.UUID) (VoiceGroup, error) {
	var group VoiceGroup
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at FROM voice_groups WHERE id = $1`, id,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VoiceGroup{}, apperr.NotFound(groupNotFoundMessage)
		}
		return VoiceGroup{}, fmt.Errorf("get voice group: %w", err)
	}
	return group, nil
}

// ListGroupsWithVoices returns every group ordered by name, voices included.
func (r *Repo) ListGroupsWithVoices(ctx context.Context) ([]VoiceGroup, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, created_at FROM voice_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list voice groups: %w", err)
	}
	defer rows.Close()

	groups := make([]VoiceGroup, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var group VoiceGroup
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan voice group: %w", err)
		}
		group.Voices = []Voice{}
		index[group.ID] = len(groups)
		groups = append(groups, group)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate voice groups: %w", rows.Err())
	}

	voiceRows, err := r.pool.Query(ctx, `
		SELECT id, group_id, name, filename, filepath, is_active, created_at
		FROM voices ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	defer voiceRows.Close()

	for voiceRows.Next() {
		voice, err := scanVoice(voiceRows)
		if err != nil {
			return nil, fmt.Errorf("scan voice: %w", err)
		}
		if i, ok := index[voice.GroupID]; ok {
			groups[i].Voices = append(groups[i].Voices, voice)
		}
	}
	if voiceRows.Err() != nil {
		return nil, fmt.Errorf("iterate voices: %w", voiceRows.Err())
	}
	return groups, nil
}

// DeleteGroup removes a group; its voices go with it via the cascade.
// Returns the filepaths of the removed voices for best-effort file cleanup.
func (r *Repo) DeleteGroup(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT filepath FROM voices WHERE group_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("select group voices: %w", err)
	}
	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan voice path: %w", err)
		}
		paths = append(paths, path)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate voice paths: %w", rows.Err())
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM voice_groups WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("delete voice group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound(groupNotFoundMessage)
	}
	return paths, nil
}

// CreateVoice inserts a voice row for an uploaded asset.
func (r *Repo) CreateVoice(ctx context.Context, groupID uuid.UUID, name, filename, filepath string) (Voice, error) {
	voice := Voice{ID: uuid.New(), GroupID: groupID, Name: name, Filename: filename, Filepath: filepath, IsActive: true}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO voices (id, group_id, name, filename, filepath)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		voice.ID, voice.GroupID, voice.Name, voice.Filename, voice.Filepath,
	).Scan(&voice.CreatedAt)
	if err != nil {
		return Voice{}, fmt.Errorf("create voice: %w", err)
	}
	return voice, nil
}

// DeleteVoice removes a voice row and returns its stored filepath.
func (r *Repo) DeleteVoice(ctx context.Context, id uuid.UUID) (string, error) {
	var path string
	err := r.pool.QueryRow(ctx, `DELETE FROM voices WHERE id = $1 RETURNING filepath`, id).Scan(&path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound(voiceNotFoundMessage)
		}
		return "", fmt.Errorf("delete voice: %w", err)
	}
	return path, nil
}

// ToggleActive flips a voice's active flag and returns the updated row.
// Toggling twice restores the original state.
func (r *Repo) ToggleActive(ctx context.Context, id uuid.UUID) (Voice, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE voices SET is_active = NOT is_active
		WHERE id = $1
		RETURNING id, group_id, name, filename, filepath, is_active, created_at`, id)
	voice, err := scanVoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voice{}, apperr.NotFound(voiceNotFoundMessage)
		}
		return Voice{}, fmt.Errorf("toggle voice: %w", err)
	}
	return voice, nil
}

// GroupExists reports whether the group id is known.
func (r *Repo) GroupExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM voice_groups WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check voice group: %w", err)
	}
	return exists, nil
}

// HasActiveVoice reports whether the group holds at least one active voice.
// Dispatch preconditions read this immediately before fan-out.
func (r *Repo) HasActiveVoice(ctx context.Context, groupID uuid.UUID) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM voices WHERE group_id = $1 AND is_active)`, groupID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active voices: %w", err)
	}
	return exists, nil
}

// ListActiveVoices returns the active voices of a group for worker selection.
func (r *Repo) ListActiveVoices(ctx context.Context, groupID uuid.UUID) ([]Voice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, group_id, name, filename, filepath, is_active, created_at
		FROM voices WHERE group_id = $1 AND is_active`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list active voices: %w", err)
	}
	defer rows.Close()

	voices := make([]Voice, 0)
	for rows.Next() {
		voice, err := scanVoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan voice: %w", err)
		}
		voices = append(voices, voice)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate active voices: %w", rows.Err())
	}
	return voices, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVoice(row rowScanner) (Voice, error) {
	var voice Voice
	err := row.Scan(&voice.ID, &voice.GroupID, &voice.Name, &voice.Filename,
		&voice.Filepath, &voice.IsActive, &voice.CreatedAt)
	return voice, err
}
