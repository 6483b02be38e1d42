package auth

import "context"

// StaticVerifier maps literal tokens to claims. Test and local-dev use only.
type StaticVerifier struct {
	tokens map[string]Claims
}

func NewStaticVerifier(tokens map[string]Claims) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (Claims, error) {
	if claims, ok := v.tokens[token]; ok {
		return claims, nil
	}
	return Claims{}, ErrInvalidToken
}
