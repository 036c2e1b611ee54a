package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionTTL = 24 * time.Hour
	ResetTTL   = 15 * time.Minute

	purposeSession = "session"
	purposeReset   = "password_reset"
)

type Claims struct {
	UserID       string `json:"user_id"`
	MembershipID uint   `json:"membership_id"`
	Email        string `json:"email"`
	Role         string `json:"role,omitempty"`
	Purpose      string `json:"purpose"`
	jwt.RegisteredClaims
}

type Auth struct {
	Secret string
	now    func() time.Time
}

func SetupAuth(s string) Auth {
	return Auth{
		Secret: s,
		now:    time.Now,
	}
}

// WithClock returns a copy of a that reads time from now. Used by tests.
func (a Auth) WithClock(now func() time.Time) Auth {
	a.now = now
	return a
}

func (a Auth) clock() time.Time {
	if a.now == nil {
		return time.Now()
	}
	return a.now()
}

func (a Auth) GenerateToken(user *domain.User) (string, error) {
	if user == nil || user.ID == "" || user.MembershipID == nil {
		return "", errors.New("required inputs are missing to generate token")
	}
	return a.sign(Claims{
		UserID:       user.ID,
		MembershipID: *user.MembershipID,
		Email:        user.Email,
		Role:         string(user.UserRole),
		Purpose:      purposeSession,
	}, SessionTTL)
}

func (a Auth) GenerateResetToken(user *domain.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", errors.New("required inputs are missing to generate token")
	}
	var membershipID uint
	if user.MembershipID != nil {
		membershipID = *user.MembershipID
	}
	return a.sign(Claims{
		UserID:       user.ID,
		MembershipID: membershipID,
		Email:        user.Email,
		Purpose:      purposeReset,
	}, ResetTTL)
}

func (a Auth) sign(claims Claims, ttl time.Duration) (string, error) {
	now := a.clock()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(a.Secret))
	if err != nil {
		return "", errors.New("unable to sign the token")
	}
	return tokenStr, nil
}

// VerifyToken validates a session token. It accepts both "Bearer <token>" and "<token>".
func (a Auth) VerifyToken(tokenString string) (*Claims, error) {
	claims, err := a.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purposeSession || claims.UserID == "" || claims.MembershipID == 0 {
		return nil, xerrors.ErrUnauthorized
	}
	return claims, nil
}

func (a Auth) VerifyResetToken(tokenString string) (*Claims, error) {
	claims, err := a.parse(tokenString)
	if err != nil {
		return nil, xerrors.ErrInvalidToken
	}
	if claims.Purpose != purposeReset || claims.UserID == "" {
		return nil, xerrors.ErrInvalidToken
	}
	return claims, nil
}

func (a Auth) parse(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if len(tokenString) > 7 && strings.EqualFold(tokenString[:7], "bearer ") {
		tokenString = strings.TrimSpace(tokenString[7:])
	}
	if tokenString == "" {
		return nil, xerrors.ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(a.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.clock),
	)
	if err != nil || !token.Valid {
		return nil, xerrors.ErrUnauthorized
	}
	return claims, nil
}

func (a Auth) HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.New("failed to hash password")
	}
	return string(hashed), nil
}

func (a Auth) VerifyPassword(plain, hashed string) error {
	if hashed == "" {
		return xerrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(
		[]byte(hashed),
		[]byte(plain),
	); err != nil {
		return xerrors.ErrInvalidCredentials
	}
	return nil
}
