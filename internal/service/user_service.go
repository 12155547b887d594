package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"places-api/internal/domain"
	"places-api/pkg/utils"
)

const (
	msgUserExists      = "User already exists"
	msgBadCredentials  = "Incorrect user credentials, please try again with valid credentials"
	msgSignupFailed    = "Failed to sign up, please try again later"
	msgLookupUserFail  = "Could not find the user, please try again"
	msgTokenSignFailed = "Could not sign you in, please try again later"
)

// TokenIssuer 签发访问令牌（auth.JWTer 实现）
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type UserService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
}

func NewUserService(users domain.UserRepository, tokens TokenIssuer, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{users: users, tokens: tokens, log: l}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Image    string
}

type AuthResult struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, domain.Internal("Could not fetch the users, please try again", err)
	}
	return users, nil
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := utils.NormalizeEmail(in.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal(msgLookupUserFail, err)
	}
	if existing != nil {
		return nil, domain.Conflict(msgUserExists)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, domain.Internal("Could not create the user, please try again", err)
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Image:        in.Image,
		Places:       []string{},
	}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册同一邮箱：唯一索引兜底
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.Conflict(msgUserExists)
		}
		return nil, domain.Internal(msgSignupFailed, err)
	}

	tok, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, domain.Internal("Could not sign you up. Please try again", err)
	}
	s.log.Info("user signed up", zap.String("user_id", u.ID))
	return &AuthResult{UserID: u.ID, Email: u.Email, Token: tok}, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = utils.NormalizeEmail(email)

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal(msgLookupUserFail, err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.Forbidden(msgBadCredentials)
	}

	tok, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, domain.Internal(msgTokenSignFailed, err)
	}
	return &AuthResult{UserID: u.ID, Email: u.Email, Token: tok}, nil
}
