package authservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/splitservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/userrepo"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/config"
)

const (
	issuer = "orizonpay"

	// scopeTwoFA marks the short-lived token issued between a successful
	// credential check and the TOTP step.
	scopeAccess = "access"
	scopeTwoFA  = "twofa"
)

type AuthService struct {
	config   *config.Config
	userRepo userrepo.IUserRepository
	splitSvc splitservice.ISplitService
	logger   zerolog.Logger
}

func New(cfg *config.Config, userRepo userrepo.IUserRepository, splitSvc splitservice.ISplitService, logger zerolog.Logger) IAuthService {
	return &AuthService{
		config:   cfg,
		userRepo: userRepo,
		splitSvc: splitSvc,
		logger:   logger,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     strings.ToLower(strings.TrimSpace(input.Username)),
		Name:         input.Name,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PhoneNumber:  input.PhoneNumber,
		Gender:       input.Gender,
		PasswordHash: string(hash),
		Permission:   domain.PermissionUser,
		RefCode:      strings.ReplaceAll(uuid.New().String(), "-", "")[:10],
		Status:       "active",
	}

	s.assignManager(ctx, user, input.RefCode)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	s.enqueueSplits(ctx, user)

	token, err := s.generateToken(user, scopeAccess, s.config.JWT.TTL)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("User registered")
	return user, token, nil
}

// assignManager resolves the account's manager and affiliate at creation
// time. A referral code naming a manager overrides the least-loaded pick; an
// affiliate referral keeps the least-loaded manager and records the affiliate
// separately.
func (s *AuthService) assignManager(ctx context.Context, user *domain.User, refCode string) {
	if refCode != "" {
		ref, err := s.userRepo.GetByRefCode(ctx, refCode)
		if err == nil {
			switch {
			case ref.IsManager():
				user.ManagerID = &ref.ID
				user.ManagerSplitPercent = s.config.Platform.DefaultManagerSplit
				return
			case ref.Permission == domain.PermissionAffiliate:
				user.AffiliateID = &ref.ID
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error().Err(err).Str("ref", refCode).Msg("Failed to resolve referral code")
		}
	}

	manager, err := s.userRepo.LeastLoadedManager(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error().Err(err).Msg("Failed to pick least-loaded manager")
		}
		return
	}
	user.ManagerID = &manager.ID
	user.ManagerSplitPercent = s.config.Platform.DefaultManagerSplit
}

func (s *AuthService) enqueueSplits(ctx context.Context, user *domain.User) {
	if user.ManagerID != nil {
		for _, feeType := range []domain.SplitFeeType{domain.SplitFeeCashIn, domain.SplitFeeCashOut} {
			err := s.splitSvc.EnqueueAssignment(ctx, &domain.SplitInterno{
				PayerID:       user.ID,
				BeneficiaryID: *user.ManagerID,
				Percent:       user.ManagerSplitPercent,
				FeeType:       feeType,
			})
			if err != nil {
				s.logger.Error().Err(err).
					Str("user_id", user.ID.String()).
					Str("fee_type", string(feeType)).
					Msg("Failed to enqueue manager split")
			}
		}
	}
	if user.AffiliateID != nil {
		err := s.splitSvc.EnqueueAssignment(ctx, &domain.SplitInterno{
			PayerID:       user.ID,
			BeneficiaryID: *user.AffiliateID,
			Percent:       s.config.Platform.DefaultAffiliateSplit,
			FeeType:       domain.SplitFeeCashIn,
		})
		if err != nil {
			s.logger.Error().Err(err).
				Str("user_id", user.ID.String()).
				Msg("Failed to enqueue affiliate split")
		}
	}
}

func (s *AuthService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByLogin(ctx, strings.ToLower(strings.TrimSpace(login)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if user.TwoFAEnabled {
		token, err := s.generateToken(user, scopeTwoFA, 5*time.Minute)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Token: token, TwoFARequired: true, User: user}, nil
	}

	token, err := s.generateToken(user, scopeAccess, s.config.JWT.TTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *AuthService) VerifyTwoFA(ctx context.Context, userID uuid.UUID, code string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.TwoFAEnabled || user.TwoFASecret == "" {
		return "", domain.ErrInvalidTwoFACode
	}
	if !totp.Validate(code, user.TwoFASecret) {
		return "", domain.ErrInvalidTwoFACode
	}
	return s.generateToken(user, scopeAccess, s.config.JWT.TTL)
}

func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*domain.Claim, error) {
	jwtSecret := s.config.JWT.Secret
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &domain.Claim{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %v", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*domain.Claim)
	if !ok {
		return nil, fmt.Errorf("invalid claims format")
	}
	if claims.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("token expired")
	}
	if claims.Issuer != issuer {
		return nil, fmt.Errorf("invalid issuer")
	}

	return claims, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) generateToken(user *domain.User, scope string, ttl time.Duration) (string, error) {
	jwtSecret := s.config.JWT.Secret
	if jwtSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claim := &domain.Claim{
		UserID:     user.ID,
		Username:   user.Username,
		Permission: user.Permission,
		Scope:      scope,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    issuer,
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	tokenString, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return tokenString, nil
}
