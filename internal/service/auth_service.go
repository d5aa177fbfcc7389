package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/biznet/bn_server/config"
	"github.com/biznet/bn_server/internal/model"
	"github.com/biznet/bn_server/internal/model/dto"
	"github.com/biznet/bn_server/internal/pkg/ids"
	"github.com/biznet/bn_server/internal/pkg/jwt"
	"github.com/biznet/bn_server/internal/repository"
)

var (
	ErrEmailTaken          = errors.New("email is already registered")
	ErrUsernameTaken       = errors.New("username is already taken")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidReferralCode = errors.New("unknown referral code")
)

type AuthService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// Register creates an account with a bcrypt password hash and a unique
// referral code (retried on collision).
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	taken, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	taken, err = s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	var referredBy *int64
	if req.ReferralCode != "" {
		referrer, err := s.userRepo.GetByReferralCode(req.ReferralCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidReferralCode
			}
			return nil, err
		}
		referredBy = &referrer.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	code, err := s.newReferralCode()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    string(hash),
		ReferralCode:    code,
		ReferredBy:      referredBy,
		MembershipLevel: model.MembershipLevelNone,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.authResponse(user)
}

// Login verifies the password and issues a JWT.
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

func (s *AuthService) authResponse(user *model.User) (*dto.AuthResponse, error) {
	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: token,
		User: dto.UserInfo{
			ID:              user.ID,
			Username:        user.Username,
			Email:           user.Email,
			ReferralCode:    user.ReferralCode,
			MembershipLevel: user.MembershipLevel,
		},
	}, nil
}

func (s *AuthService) newReferralCode() (string, error) {
	for i := 0; i < 5; i++ {
		code := ids.ReferralCode()
		exists, err := s.userRepo.ExistsByReferralCode(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique referral code")
}
