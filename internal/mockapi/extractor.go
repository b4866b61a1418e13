package mockapi

import (
	"strings"

	"google.golang.org/grpc/metadata"
)

// bearerToken parses "Bearer <token>" from an Authorization value
func bearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", newAuthError(ErrMissingToken, "authorization header not found", nil)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", newAuthError(ErrMalformed, "invalid authorization header format, expected 'Bearer <token>'", nil)
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", newAuthError(ErrMissingToken, "token is empty", nil)
	}

	return token, nil
}

func bearerFromMetadata(md metadata.MD) (string, error) {
	values := md.Get("authorization")
	if len(values) == 0 {
		return "", newAuthError(ErrMissingToken, "authorization metadata not found", nil)
	}
	return bearerToken(values[0])
}
