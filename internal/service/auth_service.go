package service

import (
	"errors"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo        domain.UserRepository
	condominiumRepo domain.CondominiumRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, condominiumRepo domain.CondominiumRepository) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		condominiumRepo: condominiumRepo,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User        *domain.User
	Condominium *domain.Condominium
	IsNewUser   bool
}

// AuthenticateUser handles the authentication flow after Auth0 callback.
// First login creates a condominium and a syndic user for it; later logins
// of other users joining an existing condominium are created as owners by
// the syndic out of band.
func (s *AuthService) AuthenticateUser(auth0ID, email string, name *string) (*AuthResult, error) {
	user, err := s.userRepo.GetByAuth0ID(auth0ID)
	if err == nil {
		condominium, err := s.condominiumRepo.GetByID(user.CondominiumID)
		if err != nil {
			log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to load condominium")
			return nil, err
		}
		log.Info().Str("user_id", user.ID.String()).Msg("Existing user authenticated")
		return &AuthResult{User: user, Condominium: condominium, IsNewUser: false}, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to look up user")
		return nil, err
	}

	condominium, err := s.condominiumRepo.Create(&domain.Condominium{
		Name: "Ma copropriété",
	})
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create condominium")
		return nil, err
	}

	user, err = s.userRepo.Create(&domain.User{
		Auth0ID:       auth0ID,
		Email:         email,
		Name:          name,
		Role:          domain.RoleSyndic,
		CondominiumID: condominium.ID,
	})
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create user")
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Int32("condominium_id", condominium.ID).Msg("Created new user with condominium")
	return &AuthResult{User: user, Condominium: condominium, IsNewUser: true}, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// GetUserByAuth0ID retrieves a user by their Auth0 ID
func (s *AuthService) GetUserByAuth0ID(auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(auth0ID)
}

// GetCondominiumByID retrieves a condominium by its ID
func (s *AuthService) GetCondominiumByID(id int32) (*domain.Condominium, error) {
	return s.condominiumRepo.GetByID(id)
}

// GetMembershipByAuth0ID returns the condominium and role of the user
// identified by the Auth0 subject; used by the auth middleware.
func (s *AuthService) GetMembershipByAuth0ID(auth0ID string) (int32, domain.UserRole, error) {
	user, err := s.userRepo.GetByAuth0ID(auth0ID)
	if err != nil {
		return 0, "", err
	}
	return user.CondominiumID, user.Role, nil
}

// GetCondominiumByAuth0ID returns the condominium id of the user identified
// by the Auth0 subject; used by the WebSocket token validator.
func (s *AuthService) GetCondominiumByAuth0ID(auth0ID string) (int32, error) {
	user, err := s.userRepo.GetByAuth0ID(auth0ID)
	if err != nil {
		return 0, err
	}
	return user.CondominiumID, nil
}
