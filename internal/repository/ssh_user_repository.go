package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

// SSHUser is a terminal UI account keyed by its public key fingerprint.
// PortfolioID remembers the last portfolio the user opened.
type SSHUser struct {
	ID          int64
	Username    string
	DisplayName string
	Fingerprint string
	PortfolioID string
	LastLoginAt *time.Time
	CreatedAt   time.Time
}

type SSHUserRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSSHUserRepository(pool PgxPool, tracer trace.Tracer) *SSHUserRepository {
	return &SSHUserRepository{pool: pool, tracer: tracer}
}

const sshUserColumns = `id, username, display_name, fingerprint,
		        COALESCE(portfolio_id::text, ''), last_login_at, created_at`

func (r *SSHUserRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*SSHUser, error) {
	_, span := r.tracer.Start(ctx, "ssh-user-repo.find-by-fingerprint")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT `+sshUserColumns+`
		 FROM ssh_users
		 WHERE fingerprint = $1 AND is_active = TRUE`,
		fingerprint,
	)

	var u SSHUser
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Fingerprint, &u.PortfolioID, &u.LastLoginAt, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *SSHUserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	_, span := r.tracer.Start(ctx, "ssh-user-repo.update-last-login")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE ssh_users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`,
		userID,
	)
	return err
}

// SetPortfolio records the portfolio a user opened. An empty id clears it.
func (r *SSHUserRepository) SetPortfolio(ctx context.Context, userID int64, portfolioID string) error {
	_, span := r.tracer.Start(ctx, "ssh-user-repo.set-portfolio")
	defer span.End()

	var arg any
	if portfolioID != "" {
		arg = portfolioID
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE ssh_users SET portfolio_id = $2, updated_at = NOW() WHERE id = $1`,
		userID, arg,
	)
	return err
}

func (r *SSHUserRepository) CountActive(ctx context.Context) (int, error) {
	_, span := r.tracer.Start(ctx, "ssh-user-repo.count-active")
	defer span.End()

	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ssh_users WHERE is_active = TRUE`).Scan(&n)
	return n, err
}
