// internal/interview/roles/repository.go
package roles

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"screener/internal/common/logger"
	"screener/internal/models"
)

const (
	cachePrefix = "screener:role:"
	cacheTTL    = 15 * time.Minute
)

// Repository resolves role requirement profiles by role name, checking
// the Redis cache before Postgres. A missing profile is (nil, nil):
// most positions have no curated requirement list and the interview
// proceeds without role checks.
type Repository struct {
	db     *sql.DB
	cache  *redis.Client
	logger logger.Logger
}

func NewRepository(db *sql.DB, cache *redis.Client, log logger.Logger) *Repository {
	return &Repository{
		db:     db,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "roles"}),
	}
}

// EnsureSchema creates the role_profiles table when it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS role_profiles (
			role TEXT PRIMARY KEY,
			requirements TEXT[] NOT NULL
		)`)
	return err
}

// Lookup returns the profile for a role name, case-insensitively.
func (r *Repository) Lookup(ctx context.Context, role string) (*models.RoleProfile, error) {
	normalized := strings.ToLower(strings.TrimSpace(role))
	if normalized == "" {
		return nil, nil
	}

	if profile := r.fromCache(ctx, normalized); profile != nil {
		return profile, nil
	}

	profile, err := r.fromDB(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	r.toCache(ctx, normalized, profile)
	return profile, nil
}

// Upsert stores or replaces a role profile and invalidates its cache entry.
func (r *Repository) Upsert(ctx context.Context, profile *models.RoleProfile) error {
	normalized := strings.ToLower(strings.TrimSpace(profile.Role))
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO role_profiles (role, requirements)
		 VALUES ($1, $2)
		 ON CONFLICT (role) DO UPDATE SET requirements = EXCLUDED.requirements`,
		normalized, pq.Array(profile.Requirements))
	if err != nil {
		return err
	}
	if r.cache != nil {
		r.cache.Del(ctx, cachePrefix+normalized)
	}
	return nil
}

func (r *Repository) fromCache(ctx context.Context, role string) *models.RoleProfile {
	if r.cache == nil {
		return nil
	}
	raw, err := r.cache.Get(ctx, cachePrefix+role).Result()
	if err != nil {
		return nil
	}
	var profile models.RoleProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		r.logger.Warn("discarding corrupt role cache entry", map[string]interface{}{"role": role})
		return nil
	}
	return &profile
}

func (r *Repository) toCache(ctx context.Context, role string, profile *models.RoleProfile) {
	if r.cache == nil {
		return
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, cachePrefix+role, payload, cacheTTL).Err(); err != nil {
		r.logger.Warn("role cache write failed", map[string]interface{}{
			"role":  role,
			"error": err.Error(),
		})
	}
}

func (r *Repository) fromDB(ctx context.Context, role string) (*models.RoleProfile, error) {
	profile := &models.RoleProfile{}
	var requirements pq.StringArray

	err := r.db.QueryRowContext(ctx,
		`SELECT role, requirements FROM role_profiles WHERE role = $1`, role).
		Scan(&profile.Role, &requirements)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	profile.Requirements = requirements
	return profile, nil
}
