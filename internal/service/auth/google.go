package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleIdentity is the subset of Google's tokeninfo response the
// orchestrator consumes.
type GoogleIdentity struct {
	Sub           string     `json:"sub"`
	Email         string     `json:"email"`
	EmailVerified boolString `json:"email_verified"`
	Name          string     `json:"name"`
	Picture       string     `json:"picture"`
	Aud           string     `json:"aud"`
}

// IdentityFromProfile adapts a profile obtained through the OAuth code
// flow, where verification already happened during the code exchange.
func IdentityFromProfile(sub, email string, emailVerified bool, name, picture string) *GoogleIdentity {
	return &GoogleIdentity{
		Sub:           sub,
		Email:         email,
		EmailVerified: boolString(emailVerified),
		Name:          name,
		Picture:       picture,
	}
}

// boolString accepts both the JSON boolean and the string "true"/"false"
// Google's tokeninfo endpoint emits.
type boolString bool

func (b *boolString) UnmarshalJSON(data []byte) error {
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		*b = boolString(asBool)
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return err
	}
	*b = asString == "true"
	return nil
}

// GoogleVerifier validates Google-issued id tokens against the public
// tokeninfo endpoint. Liveness of the token is the endpoint's job; the
// verifier only enforces audience and claim presence.
type GoogleVerifier struct {
	clientID   string
	endpoint   string
	httpClient *http.Client
}

// NewGoogleVerifier builds a verifier for the configured OAuth client id.
// The HTTP client carries a bounded timeout so a slow provider cannot stall
// a login indefinitely.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID:   clientID,
		endpoint:   googleTokenInfoURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify forwards the id token to the tokeninfo endpoint. Network failure,
// a non-success response, a malformed payload, an audience mismatch and a
// missing sub or email all collapse into ErrGoogleVerification.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	reqURL := v.endpoint + "?id_token=" + url.QueryEscape(idToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, ErrGoogleVerification
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, ErrGoogleVerification
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrGoogleVerification
	}

	var identity GoogleIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, ErrGoogleVerification
	}

	if identity.Aud != v.clientID {
		return nil, ErrGoogleVerification
	}
	if identity.Sub == "" || identity.Email == "" {
		return nil, ErrGoogleVerification
	}

	return &identity, nil
}
