package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

const profileColumns = `id, name, gender, interested_in, birth_date, age, city, latitude, longitude, interests, bio, photo_count, verified`

const birthDateLayout = "2006-01-02"

// ProfileStore is the SQLite profile store.
// The engine only reads it; UpsertProfile and Block exist for imports and tests.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore creates a new profile store
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// UpsertProfile creates or replaces a profile
func (s *ProfileStore) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	interestedIn, err := json.Marshal(nonNil(p.InterestedIn))
	if err != nil {
		return fmt.Errorf("failed to encode interested_in: %w", err)
	}
	interests, err := json.Marshal(nonNil(p.Interests))
	if err != nil {
		return fmt.Errorf("failed to encode interests: %w", err)
	}

	var birthDate sql.NullString
	if p.BirthDate != nil {
		birthDate = sql.NullString{String: p.BirthDate.Format(birthDateLayout), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, gender, interested_in, birth_date, age, city, latitude, longitude, interests, bio, photo_count, verified, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			gender = excluded.gender,
			interested_in = excluded.interested_in,
			birth_date = excluded.birth_date,
			age = excluded.age,
			city = excluded.city,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			interests = excluded.interests,
			bio = excluded.bio,
			photo_count = excluded.photo_count,
			verified = excluded.verified,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, p.Gender, string(interestedIn), birthDate, p.Age, p.City,
		nullFloat(p.Latitude), nullFloat(p.Longitude), string(interests), p.Bio, p.PhotoCount,
		boolToInt(p.Verified), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// Block records that blockerID blocked blockedID
func (s *ProfileStore) Block(ctx context.Context, blockerID, blockedID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO blocks (blocker_id, blocked_id, created_at) VALUES (?, ?, ?)
	`, blockerID, blockedID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to block: %w", err)
	}
	return nil
}

func (s *ProfileStore) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (s *ProfileStore) GetProfiles(ctx context.Context, ids []string) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

func (s *ProfileStore) ListCandidates(ctx context.Context, userID string, offset, limit int) ([]domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id != ?
			AND id NOT IN (SELECT target_id FROM swipes WHERE actor_id = ?)
			AND id NOT IN (SELECT blocked_id FROM blocks WHERE blocker_id = ?)
			AND id NOT IN (SELECT blocker_id FROM blocks WHERE blocked_id = ?)
		ORDER BY updated_at DESC, id ASC
		LIMIT ? OFFSET ?
	`, userID, userID, userID, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

func (s *ProfileStore) BlockedIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT blocked_id FROM blocks WHERE blocker_id = ?
		UNION
		SELECT blocker_id FROM blocks WHERE blocked_id = ?
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

func scanProfile(s rowScanner) (*domain.Profile, error) {
	var (
		p                       domain.Profile
		interestedIn, interests string
		birthDate               sql.NullString
		lat, lon                sql.NullFloat64
		verified                int
	)
	err := s.Scan(&p.ID, &p.Name, &p.Gender, &interestedIn, &birthDate, &p.Age, &p.City,
		&lat, &lon, &interests, &p.Bio, &p.PhotoCount, &verified)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(interestedIn), &p.InterestedIn); err != nil {
		return nil, fmt.Errorf("failed to decode interested_in: %w", err)
	}
	if err := json.Unmarshal([]byte(interests), &p.Interests); err != nil {
		return nil, fmt.Errorf("failed to decode interests: %w", err)
	}
	if birthDate.Valid {
		if t, err := time.Parse(birthDateLayout, birthDate.String); err == nil {
			p.BirthDate = &t
		}
	}
	if lat.Valid {
		p.Latitude = &lat.Float64
	}
	if lon.Valid {
		p.Longitude = &lon.Float64
	}
	p.Verified = verified != 0
	return &p, nil
}

func collectProfiles(rows *sql.Rows) ([]domain.Profile, error) {
	var result []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func collectIDs(rows *sql.Rows) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
