package backend

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ContextSubjectKey holds the authenticated token subject in gin contexts.
const ContextSubjectKey = "auth.subject"

// authenticator validates hs256 bearer tokens signed with a shared secret.
type authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func newAuthenticator(secret string, leeway time.Duration) *authenticator {
	if secret == "" {
		return nil
	}

	return &authenticator{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithLeeway(leeway),
			jwt.WithExpirationRequired(),
		),
	}
}

func (a *authenticator) authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.New("expected bearer token")
	}

	claims := jwt.MapClaims{}
	if _, err := a.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}); err != nil {
		return "", err
	}

	subject, _ := claims.GetSubject()
	return subject, nil
}

func (a *authenticator) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := a.authenticate(c.Request)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"result": "unauthorized: " + err.Error(),
			})
			return
		}

		c.Set(ContextSubjectKey, subject)
		c.Next()
	}
}
