package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wildhaven/menagerie/internal/game/avatar"
)

// ErrAvatarNameTaken is returned when creating an avatar with a name
// already in use.
var ErrAvatarNameTaken = errors.New("avatar name already taken")

// AvatarRepository provides avatar persistence backed by PostgreSQL.
// It implements avatar.Repository.
type AvatarRepository struct {
	db *pgxpool.Pool
}

// NewAvatarRepository creates an AvatarRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewAvatarRepository(db *pgxpool.Pool) *AvatarRepository {
	return &AvatarRepository{db: db}
}

const avatarColumns = `
	id, name, room_id, created_at,
	strength, dexterity, constitution, intelligence, wisdom, charisma, max_hp,
	status, lives, is_defending, is_hidden, advantage_next_attack,
	knocked_out_until, combat_cooldown_until, died_at, updated_at`

// Create inserts a new avatar and returns it with timestamps set.
//
// Precondition: a.Name must be non-empty.
// Postcondition: Returns the created avatar with ID set, or
// ErrAvatarNameTaken on a duplicate name.
func (r *AvatarRepository) Create(ctx context.Context, a *avatar.Avatar) (*avatar.Avatar, error) {
	id := a.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := a.Status
	if status == "" {
		status = avatar.StatusAlive
	}
	lives := a.Lives
	if lives == 0 {
		lives = avatar.StartingLives
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO avatars
			(id, name, room_id, created_at,
			 strength, dexterity, constitution, intelligence, wisdom, charisma, max_hp,
			 status, lives, is_defending, is_hidden, advantage_next_attack,
			 knocked_out_until, combat_cooldown_until, died_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING`+avatarColumns,
		id, a.Name, a.RoomID, createdAt,
		a.Base.Strength, a.Base.Dexterity, a.Base.Constitution,
		a.Base.Intelligence, a.Base.Wisdom, a.Base.Charisma, a.Base.MaxHP,
		status, lives, a.IsDefending, a.IsHidden, a.AdvantageNextAttack,
		nullTime(a.KnockedOutUntil), nullTime(a.CombatCooldownUntil), nullTime(a.DiedAt),
	)
	out, err := scanAvatar(row)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrAvatarNameTaken
		}
		return nil, fmt.Errorf("inserting avatar: %w", err)
	}
	return out, nil
}

// Get retrieves an avatar by ID.
//
// Postcondition: Returns the avatar or avatar.ErrNotFound.
func (r *AvatarRepository) Get(ctx context.Context, id string) (*avatar.Avatar, error) {
	row := r.db.QueryRow(ctx, `SELECT`+avatarColumns+` FROM avatars WHERE id = $1`, id)
	out, err := scanAvatar(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, avatar.ErrNotFound
		}
		return nil, fmt.Errorf("querying avatar: %w", err)
	}
	return out, nil
}

// GetByName retrieves an avatar by its display name.
//
// Postcondition: Returns the avatar or avatar.ErrNotFound.
func (r *AvatarRepository) GetByName(ctx context.Context, name string) (*avatar.Avatar, error) {
	row := r.db.QueryRow(ctx, `SELECT`+avatarColumns+` FROM avatars WHERE name = $1`, name)
	out, err := scanAvatar(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, avatar.ErrNotFound
		}
		return nil, fmt.Errorf("querying avatar by name: %w", err)
	}
	return out, nil
}

// ListActive returns every avatar that is not dead, for rebuilding
// in-memory room occupancy at startup.
func (r *AvatarRepository) ListActive(ctx context.Context) ([]*avatar.Avatar, error) {
	rows, err := r.db.Query(ctx, `SELECT`+avatarColumns+` FROM avatars WHERE status <> 'dead' ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing avatars: %w", err)
	}
	defer rows.Close()

	avatars := make([]*avatar.Avatar, 0)
	for rows.Next() {
		a, err := scanAvatar(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning avatar row: %w", err)
		}
		avatars = append(avatars, a)
	}
	return avatars, rows.Err()
}

// Update persists the full mutable state of a and returns the stored copy.
//
// Precondition: a.ID must reference an existing row.
// Postcondition: Returns the stored avatar or avatar.ErrNotFound.
func (r *AvatarRepository) Update(ctx context.Context, a *avatar.Avatar) (*avatar.Avatar, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE avatars SET
			name = $2, room_id = $3,
			strength = $4, dexterity = $5, constitution = $6,
			intelligence = $7, wisdom = $8, charisma = $9, max_hp = $10,
			status = $11, lives = $12,
			is_defending = $13, is_hidden = $14, advantage_next_attack = $15,
			knocked_out_until = $16, combat_cooldown_until = $17, died_at = $18,
			updated_at = NOW()
		WHERE id = $1
		RETURNING`+avatarColumns,
		a.ID, a.Name, a.RoomID,
		a.Base.Strength, a.Base.Dexterity, a.Base.Constitution,
		a.Base.Intelligence, a.Base.Wisdom, a.Base.Charisma, a.Base.MaxHP,
		a.Status, a.Lives,
		a.IsDefending, a.IsHidden, a.AdvantageNextAttack,
		nullTime(a.KnockedOutUntil), nullTime(a.CombatCooldownUntil), nullTime(a.DiedAt),
	)
	out, err := scanAvatar(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, avatar.ErrNotFound
		}
		return nil, fmt.Errorf("updating avatar: %w", err)
	}
	return out, nil
}

func scanAvatar(row pgx.Row) (*avatar.Avatar, error) {
	var (
		a        avatar.Avatar
		status   string
		koUntil  *time.Time
		cdUntil  *time.Time
		diedAt   *time.Time
	)
	err := row.Scan(
		&a.ID, &a.Name, &a.RoomID, &a.CreatedAt,
		&a.Base.Strength, &a.Base.Dexterity, &a.Base.Constitution,
		&a.Base.Intelligence, &a.Base.Wisdom, &a.Base.Charisma, &a.Base.MaxHP,
		&status, &a.Lives, &a.IsDefending, &a.IsHidden, &a.AdvantageNextAttack,
		&koUntil, &cdUntil, &diedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = avatar.Status(status)
	a.KnockedOutUntil = deref(koUntil)
	a.CombatCooldownUntil = deref(cdUntil)
	a.DiedAt = deref(diedAt)
	return &a, nil
}

// nullTime maps the zero time to NULL so unset timestamps stay NULL in
// the database.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
