package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const profileColumns = `
	p.id, p.identity, p.username, p.display_name, p.age, p.gender,
	p.search_gender, p.search_age_min, p.search_age_max, p.search_radius_km,
	p.city, p.latitude, p.longitude, p.bio, p.photos, p.interests, p.goal,
	p.is_active, p.is_banned, p.is_premium,
	p.likes_given_today, p.last_reset_date, p.likes_received_total,
	p.created_at, p.updated_at, p.last_seen_at`

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (
			identity, username, display_name, age, gender,
			search_gender, search_age_min, search_age_max, search_radius_km,
			city, latitude, longitude, bio, photos, interests, goal,
			is_active, is_banned, is_premium
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, likes_given_today, last_reset_date, likes_received_total, created_at, updated_at, last_seen_at
	`
	err := conn(ctx, r.db).QueryRowxContext(
		ctx, query,
		profile.Identity, profile.Username, profile.DisplayName, profile.Age, profile.Gender,
		profile.SearchGender, profile.SearchAgeMin, profile.SearchAgeMax, profile.SearchRadiusKm,
		profile.City, profile.Latitude, profile.Longitude, profile.Bio,
		profile.Photos, profile.Interests, profile.Goal,
		profile.IsActive, profile.IsBanned, profile.IsPremium,
	).Scan(
		&profile.ID, &profile.LikesGivenToday, &profile.LastResetDate, &profile.LikesReceivedTotal,
		&profile.CreatedAt, &profile.UpdatedAt, &profile.LastSeenAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProfileAlreadyExists
		}
		return err
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	return r.getOne(ctx, `SELECT`+profileColumns+` FROM profiles p WHERE p.id = $1`, id)
}

func (r *profileRepository) GetByIdentity(ctx context.Context, identity int64) (*domain.Profile, error) {
	return r.getOne(ctx, `SELECT`+profileColumns+` FROM profiles p WHERE p.identity = $1`, identity)
}

func (r *profileRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.Profile, error) {
	var profile domain.Profile
	err := conn(ctx, r.db).GetContext(ctx, &profile, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) LockPair(ctx context.Context, id1, id2 int64) (*domain.Profile, *domain.Profile, error) {
	var profiles []*domain.Profile
	query := `SELECT` + profileColumns + ` FROM profiles p WHERE p.id = ANY($1) ORDER BY p.id FOR UPDATE`
	if err := conn(ctx, r.db).SelectContext(ctx, &profiles, query, pq.Array([]int64{id1, id2})); err != nil {
		return nil, nil, err
	}

	var first, second *domain.Profile
	for _, p := range profiles {
		switch p.ID {
		case id1:
			first = p
		case id2:
			second = p
		}
	}
	if first == nil || second == nil {
		return nil, nil, domain.ErrProfileNotFound
	}
	return first, second, nil
}

func (r *profileRepository) Update(ctx context.Context, identity int64, update *domain.ProfileUpdate) (bool, error) {
	if update.IsEmpty() {
		return false, nil
	}

	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.DisplayName != nil {
		add("display_name", *update.DisplayName)
	}
	if update.Username != nil {
		add("username", *update.Username)
	}
	if update.Age != nil {
		add("age", *update.Age)
	}
	if update.Gender != nil {
		add("gender", *update.Gender)
	}
	if update.SearchGender != nil {
		add("search_gender", *update.SearchGender)
	}
	if update.SearchAgeMin != nil {
		add("search_age_min", *update.SearchAgeMin)
	}
	if update.SearchAgeMax != nil {
		add("search_age_max", *update.SearchAgeMax)
	}
	if update.SearchRadiusKm != nil {
		add("search_radius_km", *update.SearchRadiusKm)
	}
	if update.City != nil {
		add("city", *update.City)
	}
	if update.Latitude != nil {
		add("latitude", *update.Latitude)
	}
	if update.Longitude != nil {
		add("longitude", *update.Longitude)
	}
	if update.Bio != nil {
		add("bio", *update.Bio)
	}
	if update.Photos != nil {
		add("photos", *update.Photos)
	}
	if update.Interests != nil {
		add("interests", *update.Interests)
	}
	if update.Goal != nil {
		add("goal", *update.Goal)
	}
	if update.IsPremium != nil {
		add("is_premium", *update.IsPremium)
	}

	args = append(args, identity)
	query := fmt.Sprintf(
		`UPDATE profiles SET %s, updated_at = NOW() WHERE identity = $%d`,
		strings.Join(sets, ", "), len(args),
	)

	result, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(result)
	return n > 0, err
}

func (r *profileRepository) SetBanned(ctx context.Context, identity int64, banned bool) (bool, error) {
	query := `
		UPDATE profiles
		SET is_banned = $1, is_active = NOT $1, updated_at = NOW()
		WHERE identity = $2
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, banned, identity)
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(result)
	return n > 0, err
}

func (r *profileRepository) ToggleBanned(ctx context.Context, identity int64) (bool, error) {
	// Right-hand sides see the old row, so is_active takes the previous ban flag.
	query := `
		UPDATE profiles
		SET is_banned = NOT is_banned, is_active = is_banned, updated_at = NOW()
		WHERE identity = $1
		RETURNING is_banned
	`
	var banned bool
	err := conn(ctx, r.db).GetContext(ctx, &banned, query, identity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrProfileNotFound
		}
		return false, err
	}
	return banned, nil
}

func (r *profileRepository) Delete(ctx context.Context, identity int64) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM profiles WHERE identity = $1`, identity)
	if err != nil {
		return err
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *profileRepository) TouchLastSeen(ctx context.Context, identity int64, at time.Time) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE profiles SET last_seen_at = $1 WHERE identity = $2`, at, identity)
	return err
}

func (r *profileRepository) Search(ctx context.Context, term string, limit int) ([]*domain.Profile, error) {
	var exact *int64
	if id, err := strconv.ParseInt(term, 10, 64); err == nil {
		exact = &id
	}

	query := `SELECT` + profileColumns + `
		FROM profiles p
		WHERE p.identity = $1
		   OR p.display_name ILIKE $2 ESCAPE '\'
		   OR p.username ILIKE $2 ESCAPE '\'
		ORDER BY p.created_at DESC
		LIMIT $3
	`
	profiles := []*domain.Profile{}
	err := conn(ctx, r.db).SelectContext(ctx, &profiles, query, exact, "%"+escapeLike(term)+"%", limit)
	return profiles, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *profileRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Profile, error) {
	profiles := []*domain.Profile{}
	query := `SELECT` + profileColumns + ` FROM profiles p ORDER BY p.created_at DESC LIMIT $1`
	err := conn(ctx, r.db).SelectContext(ctx, &profiles, query, limit)
	return profiles, err
}

func (r *profileRepository) ListReachableIdentities(ctx context.Context) ([]int64, error) {
	identities := []int64{}
	query := `SELECT identity FROM profiles WHERE is_active AND NOT is_banned ORDER BY id`
	err := conn(ctx, r.db).SelectContext(ctx, &identities, query)
	return identities, err
}

func (r *profileRepository) Counts(ctx context.Context, since time.Time) (*domain.ProfileCounts, error) {
	var counts domain.ProfileCounts
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_active AND NOT is_banned) AS active,
			COUNT(*) FILTER (WHERE is_banned) AS banned,
			COUNT(*) FILTER (WHERE is_premium) AS premium,
			COUNT(*) FILTER (WHERE created_at >= $1) AS registered_today
		FROM profiles
	`
	if err := conn(ctx, r.db).GetContext(ctx, &counts, query, since); err != nil {
		return nil, err
	}
	return &counts, nil
}

// candidateWhere renders the eligible-set predicate shared by count and fetch.
func candidateWhere(f repository.CandidateFilter) (string, []interface{}) {
	args := []interface{}{f.ViewerID, f.Now}
	conds := []string{
		"p.id <> $1",
		"p.is_active",
		"NOT p.is_banned",
		"NOT EXISTS (SELECT 1 FROM likes l WHERE l.from_user_id = $1 AND l.to_user_id = p.id)",
		`NOT EXISTS (
			SELECT 1 FROM matches m
			WHERE m.is_active AND m.expires_at > $2
			  AND m.user1_id = LEAST($1::bigint, p.id) AND m.user2_id = GREATEST($1::bigint, p.id)
		)`,
	}
	add := func(format string, values ...interface{}) {
		idx := make([]interface{}, len(values))
		for i, v := range values {
			args = append(args, v)
			idx[i] = len(args)
		}
		conds = append(conds, fmt.Sprintf(format, idx...))
	}

	if f.AgeMin > 0 {
		add("p.age >= $%d", f.AgeMin)
	}
	if f.AgeMax > 0 {
		add("p.age <= $%d", f.AgeMax)
	}
	if f.Gender != "" && f.Gender != domain.GenderAny {
		add("p.gender = $%d", f.Gender)
	}
	if f.Radius != nil {
		add(`(p.latitude IS NULL OR p.longitude IS NULL OR
			6371 * 2 * ASIN(LEAST(1, SQRT(
				POWER(SIN(RADIANS(p.latitude - $%[1]d) / 2), 2) +
				COS(RADIANS($%[1]d)) * COS(RADIANS(p.latitude)) *
				POWER(SIN(RADIANS(p.longitude - $%[2]d) / 2), 2)
			))) <= $%[3]d)`,
			f.Radius.Latitude, f.Radius.Longitude, f.Radius.Km)
	}

	return strings.Join(conds, " AND "), args
}

func (r *profileRepository) CountCandidates(ctx context.Context, filter repository.CandidateFilter) (int, error) {
	where, args := candidateWhere(filter)
	var n int
	err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM profiles p WHERE `+where, args...)
	return n, err
}

func (r *profileRepository) CandidateAt(ctx context.Context, filter repository.CandidateFilter, offset int) (*domain.Profile, error) {
	where, args := candidateWhere(filter)
	args = append(args, offset)
	query := fmt.Sprintf(`SELECT%s FROM profiles p WHERE %s ORDER BY p.id LIMIT 1 OFFSET $%d`, profileColumns, where, len(args))

	profile, err := r.getOne(ctx, query, args...)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil, domain.ErrNoCandidate
	}
	return profile, err
}

func (r *profileRepository) ResetLikesIfStale(ctx context.Context, id int64, today time.Time) error {
	query := `
		UPDATE profiles
		SET likes_given_today = 0, last_reset_date = $2::date
		WHERE id = $1 AND last_reset_date IS DISTINCT FROM $2::date
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, id, today.Format(time.DateOnly))
	return err
}

func (r *profileRepository) TryConsumeLike(ctx context.Context, id int64, limit int) (bool, error) {
	var (
		result sql.Result
		err    error
	)
	if limit <= 0 {
		result, err = conn(ctx, r.db).ExecContext(ctx,
			`UPDATE profiles SET likes_given_today = likes_given_today + 1 WHERE id = $1`, id)
	} else {
		result, err = conn(ctx, r.db).ExecContext(ctx,
			`UPDATE profiles SET likes_given_today = likes_given_today + 1 WHERE id = $1 AND likes_given_today < $2`,
			id, limit)
	}
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(result)
	return n == 1, err
}

func (r *profileRepository) IncrementLikesReceived(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE profiles SET likes_received_total = likes_received_total + 1 WHERE id = $1`, id)
	return err
}
