package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"vwa-api/pkg/config"
	"vwa-api/pkg/models"
)

var (
	// ErrInvalidCredential means the bearer credential could not be mapped
	// to a user. Maps to 401.
	ErrInvalidCredential = errors.New("invalid authentication credentials")
	// ErrUserDisabled means the credential resolved to a deactivated user.
	// Maps to 403.
	ErrUserDisabled = errors.New("user account is disabled")
)

// Verifier maps a bearer credential to a user record. Exactly one strategy is
// active per process, selected by AUTH_MODE; the raw-wallet and signed-token
// schemes never coexist on a route.
type Verifier interface {
	Resolve(credential string) (*models.User, error)
}

// NewVerifier builds the verifier configured by cfg.Auth.Mode.
func NewVerifier(cfg *config.Config, db *gorm.DB) (Verifier, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeWallet:
		return NewWalletVerifier(db), nil
	case config.AuthModeJWT:
		return NewJWTVerifier(NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), db), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}

// WalletVerifier treats the credential as a raw wallet address. No signature
// is checked; this is the simplified scheme for demo deployments. A user is
// auto-provisioned on first sight of an unknown wallet address.
type WalletVerifier struct {
	db *gorm.DB
}

// NewWalletVerifier creates a wallet-address verifier.
func NewWalletVerifier(db *gorm.DB) *WalletVerifier {
	return &WalletVerifier{db: db}
}

func (v *WalletVerifier) Resolve(credential string) (*models.User, error) {
	if credential == "" {
		return nil, ErrInvalidCredential
	}

	var user models.User
	err := v.db.Where("wallet_address = ?", credential).First(&user).Error
	if err == nil {
		if !user.IsActive {
			return nil, ErrUserDisabled
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// First request from this wallet: provision a user. A persistence
	// failure here is an infrastructure error, not a credential problem.
	user = models.User{WalletAddress: credential, IsActive: true}
	if err := v.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	return &user, nil
}

// JWTVerifier validates a signed token and loads the subject user. Unknown
// subjects are rejected; the strict scheme never auto-provisions.
type JWTVerifier struct {
	jwtService *JWTService
	db         *gorm.DB
}

// NewJWTVerifier creates a signed-token verifier.
func NewJWTVerifier(jwtService *JWTService, db *gorm.DB) *JWTVerifier {
	return &JWTVerifier{jwtService: jwtService, db: db}
}

func (v *JWTVerifier) Resolve(credential string) (*models.User, error) {
	claims, err := v.jwtService.ValidateToken(credential)
	if err != nil {
		return nil, ErrInvalidCredential
	}

	var user models.User
	if err := v.db.Where("id = ?", claims.Subject).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	return &user, nil
}
