package magiclink

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL — срок жизни magic-ссылки.
const TokenTTL = 7 * 24 * time.Hour

// Причины отказа проверки разведены по разным ошибкам: UI по ним выбирает
// точное действие («запросите новую ссылку» против «ссылка битая»).
var (
	ErrTokenExpired = errors.New("magiclink: token expired")
	ErrBadSignature = errors.New("magiclink: invalid signature")
	ErrMalformed    = errors.New("magiclink: malformed token")
)

// Claims — полезная нагрузка magic-токена: адрес vault плюс стандартные iat/exp.
type Claims struct {
	Vault string `json:"vault"`
	jwt.RegisteredClaims
}

// Issuer выпускает и проверяет подписанные magic-токены для удалённого
// чек-ина без кошелька. Подпись симметричная (HS256), секрет серверный.
type Issuer struct {
	secret []byte
	now    func() time.Time // подменяется в тестах
}

// NewIssuer создаёт Issuer с заданным секретом.
// Пустой секрет недопустим: контроль за этим на старте процесса.
func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("magiclink: empty signing secret")
	}
	return &Issuer{secret: []byte(secret), now: time.Now}, nil
}

// Issue выпускает токен на vaultAddress со сроком TokenTTL.
func (i *Issuer) Issue(vaultAddress string) (string, error) {
	now := i.now()
	claims := Claims{
		Vault: vaultAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign magic link token: %w", err)
	}
	return signed, nil
}

// Verify проверяет токен и возвращает адрес vault.
// Три причины отказа различимы: истёк, битая подпись, не разбирается.
func (i *Issuer) Verify(token string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithValidMethods([]string{"HS256"}))
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", ErrBadSignature
	default:
		return "", ErrMalformed
	}
	if claims.Vault == "" {
		return "", ErrMalformed
	}
	return claims.Vault, nil
}

// URL собирает полную magic-ссылку для письма владельцу.
func (i *Issuer) URL(baseURL, vaultAddress string) (string, error) {
	token, err := i.Issue(vaultAddress)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/magic-ping?vault=%s&token=%s",
		strings.TrimRight(baseURL, "/"), url.QueryEscape(vaultAddress), url.QueryEscape(token)), nil
}
