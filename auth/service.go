package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials signals wrong email or password. Lookups that miss
// and password mismatches both collapse into it so callers cannot enumerate
// accounts.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// dummyHash keeps login timing constant when the email is unknown: the
// handler still runs one bcrypt comparison before failing.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service handles registration and login.
type Service struct {
	repo       Repository
	tokens     *TokenService
	bcryptCost int
}

// LoginResult bundles the token and domain user returned after a successful login.
type LoginResult struct {
	Token string
	User  User
}

// NewService creates an authentication service. bcryptCost falls back to the
// library default when out of range.
func NewService(repo Repository, tokens *TokenService, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new account with role 'user'. Input is expected to be
// validated already; the service only normalizes the email and hashes the
// password before persisting.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, CreateUserParams{
		GivenName:    req.GivenName,
		FamilyName:   req.FamilyName,
		Email:        NormalizeEmail(req.Email),
		PasswordHash: string(passwordHash),
		Phone:        req.Phone,
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Login authenticates credentials and issues a session token embedding the
// account's id, email and role.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn a comparison so unknown emails take as long as wrong passwords.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(req.Password))
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: issue token: %w", err)
	}

	return LoginResult{
		Token: token,
		User:  user,
	}, nil
}

// GetUserByID retrieves account information by ID.
func (s *Service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
