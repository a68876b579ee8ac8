package projectsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/Abraxas-365/deckgen/presentation/project"
	"github.com/golang-jwt/jwt/v5"
)

const shareTokenIssuer = "deckgen"

// CreateShareLink issues a signed read-only token for a project.
func (s *Service) CreateShareLink(ctx context.Context, id kernel.ProjectID) (*project.ShareLinkResponse, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, project.ErrProjectNotFound().WithDetail("project_id", id)
	}

	now := time.Now()
	expiresAt := now.Add(s.shareTTL)

	claims := jwt.RegisteredClaims{
		Issuer:    shareTokenIssuer,
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.shareSecret)
	if err != nil {
		return nil, project.ErrInvalidShareLink().
			WithDetail("project_id", id).
			WithDetails(map[string]any{"error": err.Error()})
	}

	logx.Infof("Issued share link for project %s, expires %v", id, expiresAt)

	return &project.ShareLinkResponse{
		ProjectID: id,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ResolveShareLink validates a share token and loads the project it
// points at.
func (s *Service) ResolveShareLink(ctx context.Context, tokenString string) (*project.Project, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, project.ErrInvalidShareLink().
				WithDetail("signing_method", t.Method.Alg())
		}
		return s.shareSecret, nil
	}, jwt.WithIssuer(shareTokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, project.ErrInvalidShareLink().
			WithDetails(map[string]any{"error": err.Error()})
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, project.ErrInvalidShareLink()
	}

	return s.repo.GetByID(ctx, kernel.ProjectID(claims.Subject))
}
