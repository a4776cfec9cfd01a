package memberrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"societypay/model"
	"societypay/util/database"
)

type Repo interface {
	// ByEmail returns nil, nil when no member has that email.
	ByEmail(ctx context.Context, email string) (*model.Member, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) ByEmail(ctx context.Context, email string) (*model.Member, error) {
	m := &model.Member{}
	err := r.db.Conn(ctx).QueryRow(ctx, `
        SELECT id, name, email, COALESCE(flat, ''), COALESCE(password_hash, '')
        FROM members
        WHERE lower(email) = lower($1)`,
		email,
	).Scan(&m.ID, &m.Name, &m.Email, &m.Flat, &m.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
