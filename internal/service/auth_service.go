package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gramseva/office-portal-api/internal/models"
	appErrors "github.com/gramseva/office-portal-api/pkg/errors"
)

type authUserRepository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	FindConflict(ctx context.Context, email, handle, contactNumber string) (string, error)
	Create(ctx context.Context, user *models.User) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	TokenSecret   string
	TokenExpiry   time.Duration
	Issuer        string
	AdminUsername string
	AdminPassword string
}

// AuthService provides signup and login use cases for citizens plus the
// administrator session.
type AuthService struct {
	repo      authUserRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, validator: newRequestValidator(), logger: logger, config: config}
}

// Signup registers a new citizen account. Validation collects every problem
// with the payload so the caller sees the full list at once. New accounts
// always start unverified.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid signup payload")
		}
		problems := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			problems = append(problems, signupProblem(fe))
		}
		return nil, appErrors.Clone(appErrors.ErrValidation, strings.Join(problems, "; "))
	}

	conflict, err := s.repo.FindConflict(ctx, req.Email, req.Handle, req.ContactNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing accounts")
	}
	if conflict != "" {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("user with this %s already exists", conflict))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	var middle *string
	if trimmed := strings.TrimSpace(req.MiddleName); trimmed != "" {
		middle = &trimmed
	}

	user := &models.User{
		FirstName:     strings.TrimSpace(req.FirstName),
		MiddleName:    middle,
		LastName:      strings.TrimSpace(req.LastName),
		Handle:        strings.TrimSpace(req.Handle),
		Email:         strings.TrimSpace(req.Email),
		ContactNumber: req.ContactNumber,
		Age:           req.Age,
		Gender:        req.Gender,
		PasswordHash:  string(hash),
		Verified:      false,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("handle", user.Handle))
	return user, nil
}

// Login authenticates a citizen by email or contact number. Unknown users
// get 404, unverified accounts 403 and bad passwords 401, matching the
// portal's existing client expectations.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email/contact number and password are required")
	}

	user, err := s.repo.FindByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if !user.Verified {
		return nil, appErrors.Clone(appErrors.ErrUnverifiedAccount, "account not verified, please contact support for verification")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
	}

	token, issuedAt, err := s.generateToken(user.ID, user.Email, models.RoleCitizen)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:  issuedAt,
		User: &models.UserInfo{
			ID:            user.ID,
			Email:         user.Email,
			ContactNumber: user.ContactNumber,
			FirstName:     user.FirstName,
			LastName:      user.LastName,
		},
	}, nil
}

// AdminLogin authenticates the administrator against the configured
// credentials and issues a token carrying the admin role.
func (s *AuthService) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "username and password are required")
	}
	if s.config.AdminUsername == "" || s.config.AdminPassword == "" {
		return nil, appErrors.Clone(appErrors.ErrInternal, "administrator credentials are not configured")
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.config.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.config.AdminPassword)) == 1
	if !userOK || !passOK {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid username or password")
	}

	token, issuedAt, err := s.generateToken("", "", models.RoleAdmin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("admin logged in", zap.String("username", req.Username))
	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:  issuedAt,
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateToken(userID, email string, role models.UserRole) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims := &models.JWTClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}

// signupProblem translates a failed signup field into the message the
// portal frontend displays.
func signupProblem(fe validator.FieldError) string {
	if fe.Field() == "contactNumber" && fe.Tag() == "contact_number" {
		return "Contact number must be a valid 10-digit number"
	}
	switch fe.Field() {
	case "firstName":
		return "First name is required"
	case "lastName":
		return "Last name is required"
	case "contactNumber":
		return "Contact number is required"
	case "email":
		return "Email is required"
	case "userId":
		return "User ID is required"
	case "age":
		return "Age is required"
	case "gender":
		return "Gender is required"
	case "password":
		return "Password is required"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
