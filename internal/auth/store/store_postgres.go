package store

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"sort"
	"time"

	"fusebot/internal/auth/models"
	"fusebot/migrations"
	domainerrors "fusebot/pkg/domain-errors"
)

// MigratePostgres applies the embedded schema migrations in filename order.
// Every statement is written IF NOT EXISTS, so running it on each startup is
// safe.
func MigratePostgres(ctx context.Context, db *sql.DB) error {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeStorage, "list migrations")
	}
	sort.Strings(names)
	for _, name := range names {
		raw, err := migrations.FS.ReadFile(name)
		if err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeStorage, "read migration "+name)
		}
		if _, err := db.ExecContext(ctx, string(raw)); err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeStorage, "apply migration "+name)
		}
	}
	return nil
}

// PostgresStore persists sessions in PostgreSQL. One row per room; writes are
// UPSERTs so the store never needs to distinguish create from update.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed session store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, roomID string) (*models.Session, error) {
	query := `
		SELECT status, cooperative, original_coop_name,
		       email, employee_number, otp, token,
		       otp_generated_at, verified_at, updated_at,
		       post_auth_action, last_error
		FROM auth_sessions
		WHERE room_id = $1
	`
	session := models.Session{RoomID: roomID}
	var (
		status         string
		email          sql.NullString
		employeeNumber sql.NullString
		otpGeneratedAt sql.NullTime
		verifiedAt     sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, roomID).Scan(
		&status,
		&session.Cooperative,
		&session.OriginalCoopName,
		&email,
		&employeeNumber,
		&session.OTP,
		&session.Token,
		&otpGeneratedAt,
		&verifiedAt,
		&session.UpdatedAt,
		&session.PostAuthAction,
		&session.LastError,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewSession(roomID), nil
	}
	if err != nil {
		return models.NewSession(roomID), domainerrors.Wrap(err, domainerrors.CodeStorage, "get session")
	}

	session.Status = models.Status(status)
	if email.Valid || employeeNumber.Valid {
		session.Credentials = &models.Credentials{
			Email:          email.String,
			EmployeeNumber: employeeNumber.String,
		}
	}
	if otpGeneratedAt.Valid {
		session.OtpGeneratedAt = &otpGeneratedAt.Time
	}
	if verifiedAt.Valid {
		session.VerifiedAt = &verifiedAt.Time
	}
	return &session, nil
}

func (s *PostgresStore) Put(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO auth_sessions (
			room_id, status, cooperative, original_coop_name,
			email, employee_number, otp, token,
			otp_generated_at, verified_at, updated_at,
			post_auth_action, last_error
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (room_id) DO UPDATE SET
			status = EXCLUDED.status,
			cooperative = EXCLUDED.cooperative,
			original_coop_name = EXCLUDED.original_coop_name,
			email = EXCLUDED.email,
			employee_number = EXCLUDED.employee_number,
			otp = EXCLUDED.otp,
			token = EXCLUDED.token,
			otp_generated_at = EXCLUDED.otp_generated_at,
			verified_at = EXCLUDED.verified_at,
			updated_at = EXCLUDED.updated_at,
			post_auth_action = EXCLUDED.post_auth_action,
			last_error = EXCLUDED.last_error
	`
	var (
		email          sql.NullString
		employeeNumber sql.NullString
	)
	if session.Credentials != nil {
		email = sql.NullString{String: session.Credentials.Email, Valid: true}
		employeeNumber = sql.NullString{String: session.Credentials.EmployeeNumber, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		session.RoomID,
		string(session.Status),
		session.Cooperative,
		session.OriginalCoopName,
		email,
		employeeNumber,
		session.OTP,
		session.Token,
		nullTime(session.OtpGeneratedAt),
		nullTime(session.VerifiedAt),
		session.UpdatedAt,
		session.PostAuthAction,
		session.LastError,
	)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeStorage, "put session")
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, roomID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE room_id = $1`, roomID); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeStorage, "delete session")
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
