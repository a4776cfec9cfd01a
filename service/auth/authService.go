package authsvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"societypay/model"
	memberrepo "societypay/repository/member"
	"societypay/util/apperr"
	"societypay/util/hash"
	jwtutil "societypay/util/jwt"
)

const DefaultTokenTTL = 24 * time.Hour

// Service signs members in. Members are provisioned by the society office,
// so there is no self-registration.
type Service interface {
	Login(ctx context.Context, req model.LoginReq) (*model.Member, string, error)
}

type service struct {
	members memberrepo.Repo
	secret  string
	ttl     time.Duration
}

func New(members memberrepo.Repo, secret string, ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &service{members: members, secret: secret, ttl: ttl}
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.Member, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, "", apperr.New(apperr.ErrValidation, "email and password are required")
	}

	m, err := s.members.ByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("load member: %w", err)
	}
	if m == nil || m.PasswordHash == "" || !hash.Check(m.PasswordHash, req.Password) {
		return nil, "", apperr.New(apperr.ErrInvalidCredentials, "invalid credentials")
	}

	token, err := jwtutil.Issue(s.secret, m.ID, m.Email, s.ttl)
	if err != nil {
		return nil, "", err
	}
	return m, token, nil
}
