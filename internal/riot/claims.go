package riot

import "github.com/golang-jwt/jwt/v5"

// subjectClaim extracts the "sub" claim from a vendor token without
// verifying the signature. The tokens arrive over the vendor's own login
// redirect, so verification adds nothing here; the claim is only used as
// a secondary source for the player id when the userinfo endpoint is
// down.
func subjectClaim(token string) (string, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", false
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}
