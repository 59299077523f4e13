package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voyagen/tvgate/internal/models"
)

const pgUniqueViolation = "23505"

// Postgres implements Store using PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres creates a Postgres store from a DSN. Caller must call Close when done.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

const userColumns = `id, username, email, password_hash, playlist_token, is_admin, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.PlaylistToken, &u.IsAdmin, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user.
func (p *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.PlaylistToken, u.IsAdmin, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("CreateUser: %w", ErrDuplicate)
		}
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// FindUserByUsernameOrEmail returns the first user matching either field.
func (p *Postgres) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $2 LIMIT 1`,
		username, email,
	))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("FindUserByUsernameOrEmail: %w", err)
	}
	return u, err
}

// GetUserByUsername returns the user with this exact username.
func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username,
	))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("GetUserByUsername: %w", err)
	}
	return u, err
}

// GetUserByToken returns the user holding token.
func (p *Postgres) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE playlist_token = $1`, token,
	))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("GetUserByToken: %w", err)
	}
	return u, err
}

// ListUsers returns users ordered by created_at descending. The password
// hash is not selected.
func (p *Postgres) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	if skip < 0 {
		skip = 0
	}
	rows, err := p.pool.Query(ctx,
		`SELECT id, username, email, playlist_token, is_admin, created_at
		 FROM users ORDER BY created_at DESC, id
		 LIMIT $1 OFFSET $2`,
		limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PlaylistToken, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListUsers scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUsers rows: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of users.
func (p *Postgres) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountUsers: %w", err)
	}
	return n, nil
}

// SetAdmin sets is_admin for username.
func (p *Postgres) SetAdmin(ctx context.Context, username string, admin bool) error {
	tag, err := p.pool.Exec(ctx, `UPDATE users SET is_admin = $2 WHERE username = $1`, username, admin)
	if err != nil {
		return fmt.Errorf("SetAdmin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListChannels returns the catalog sorted by category then name, compared
// bytewise (COLLATE "C") whatever the database default. A missing category
// sorts before any named one.
func (p *Postgres) ListChannels(ctx context.Context) ([]models.Channel, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, category, type, url, drm_clearkey_key_id, drm_clearkey_key
		 FROM channels
		 ORDER BY COALESCE(category, '') COLLATE "C" ASC, name COLLATE "C" ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListChannels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Category, &ch.Type, &ch.URL, &ch.DRMKeyID, &ch.DRMKey); err != nil {
			return nil, fmt.Errorf("ListChannels scan: %w", err)
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListChannels rows: %w", err)
	}
	return channels, nil
}

// InsertChannels inserts channels in a single transaction.
func (p *Postgres) InsertChannels(ctx context.Context, channels []models.Channel) (int, error) {
	if len(channels) == 0 {
		return 0, nil
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("InsertChannels begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for i := range channels {
		ch := &channels[i]
		batch.Queue(
			`INSERT INTO channels (name, category, type, url, drm_clearkey_key_id, drm_clearkey_key)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			ch.Name, ch.Category, ch.Type, ch.URL, ch.DRMKeyID, ch.DRMKey,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("InsertChannels batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("InsertChannels commit: %w", err)
	}
	return len(channels), nil
}

// DeleteAllChannels empties the catalog.
func (p *Postgres) DeleteAllChannels(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM channels`)
	if err != nil {
		return 0, fmt.Errorf("DeleteAllChannels: %w", err)
	}
	return tag.RowsAffected(), nil
}
