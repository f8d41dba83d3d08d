package okta

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"

	"github.com/oktatools/okta-creds/credentials"
	"github.com/oktatools/okta-creds/credentials/helpers"
	"github.com/oktatools/okta-creds/identity"
	"github.com/oktatools/okta-creds/shared"
)

const oktaIdentityProvider = "OktaIdentityProvider"

// Client drives the authentication state machine against an Okta organization: primary
// factor login, MFA challenge/response, and retrieval of the SAML assertion from the AWS
// application link.  When the injected cookie jar carries a still-valid Okta session, the
// assertion is fetched directly and the login steps are skipped entirely.
type Client struct {
	AuthenticationConfig
	orgUrl       *url.URL
	appUrl       *url.URL
	httpClient   *http.Client
	saml         *credentials.SamlAssertion
	sessionToken string
}

// NewClient returns a new SamlClient for the Okta organization at orgUrl, fetching SAML
// assertions from the application link at appUrl.
func NewClient(orgUrl, appUrl string) (*Client, error) {
	org, err := parseHttpUrl(orgUrl)
	if err != nil {
		return nil, err
	}

	app, err := parseHttpUrl(appUrl)
	if err != nil {
		return nil, err
	}

	c := &Client{orgUrl: org, appUrl: app}
	c.MfaTokenProvider = helpers.NewMfaTokenProvider(os.Stdin).ReadInput
	c.CredentialInputProvider = helpers.NewUserPasswordInputProvider(os.Stdin).ReadInput
	c.Logger = new(shared.DefaultLogger)
	c.setHttpClient()

	return c, nil
}

// SetCookieJar updates this client's HTTP cookie storage to use the provided http.CookieJar.
// Inject a file-backed jar to persist the Okta session across runs.
func (c *Client) SetCookieJar(jar http.CookieJar) {
	c.httpClient.Jar = jar
}

// Authenticate performs authentication against Okta.  This delegates to AuthenticateWithContext
// using context.Background().
func (c *Client) Authenticate() error {
	return c.AuthenticateWithContext(context.Background())
}

// AuthenticateWithContext performs authentication against Okta using the specified Context,
// which is passed along to the underlying HTTP requests.  If necessary, it will prompt for
// the authentication credentials.
func (c *Client) AuthenticateWithContext(ctx context.Context) error {
	if err := c.gatherCredentials(); err != nil {
		return err
	}

	res, err := c.auth(ctx)
	if err != nil {
		return err
	}

	c.sessionToken = res.SessionToken
	return nil
}

// Identity returns the identity information for the user.
func (c *Client) Identity() (*identity.Identity, error) {
	if len(c.Username) < 1 {
		_ = c.gatherCredentials()
	}

	id := &identity.Identity{
		IdentityType: "user",
		Provider:     oktaIdentityProvider,
		Username:     c.Username,
	}

	if c.saml != nil && len(*c.saml) > 0 {
		user, err := c.saml.RoleSessionName()
		if err != nil {
			return id, nil
		}
		id.Username = user
	}

	return id, nil
}

// Roles retrieves the role ARNs found in the SAML assertion.  The assertion is fetched
// (authenticating, if required) when not already held by the client.
func (c *Client) Roles(user ...string) (*identity.Roles, error) {
	if c.saml == nil || len(*c.saml) < 1 {
		if _, err := c.SamlAssertion(); err != nil {
			return nil, err
		}
	}

	rd, err := c.saml.RoleDetails()
	if err != nil {
		return nil, err
	}

	roles := identity.Roles(rd.Roles())
	return &roles, nil
}

// SamlAssertion calls SamlAssertionWithContext using a background context.
func (c *Client) SamlAssertion() (*credentials.SamlAssertion, error) {
	return c.SamlAssertionWithContext(context.Background())
}

// SamlAssertionWithContext retrieves the SAML Assertion from the Okta application link.
// A stored session (cookie jar) or a fresh session token is tried first; if the identity
// provider does not hand back an assertion, a full authentication is attempted once and
// the fetch is retried.  Failure after a fresh authentication is fatal.
func (c *Client) SamlAssertionWithContext(ctx context.Context) (*credentials.SamlAssertion, error) {
	if err := c.samlRequest(ctx); err != nil {
		return nil, err
	}

	if c.saml == nil || len(*c.saml) < 1 {
		c.Logger.Debugf("no assertion from stored session, performing primary authentication")
		if err := c.AuthenticateWithContext(ctx); err != nil {
			return nil, err
		}

		if err := c.samlRequest(ctx); err != nil {
			return nil, err
		}

		if c.saml == nil || len(*c.saml) < 1 {
			return nil, errors.New("no SAML assertion returned for authenticated session")
		}
	}

	return c.saml, nil
}

func (c *Client) samlRequest(ctx context.Context) error {
	if c.saml != nil && len(*c.saml) > 0 {
		t, err := c.saml.ExpiresAt()
		if err != nil {
			return err
		}

		if t.After(time.Now()) {
			c.Logger.Debugf("reusing unexpired assertion")
			return nil
		}
	}

	u := *c.appUrl
	if len(c.sessionToken) > 0 {
		qs := url.Values{}
		qs.Set("sessionToken", c.sessionToken) // okta specific requirement
		u.RawQuery = qs.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return err
	}
	c.setUserAgent(req)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("SAML request http status code: %d", res.StatusCode)
	}

	return c.handleSamlResponse(res.Body)
}

func (c *Client) handleSamlResponse(r io.Reader) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return err
	}

	doc.Find("input").Each(func(i int, s *goquery.Selection) {
		if a, ok := s.Attr("name"); ok && a == "SAMLResponse" {
			v, _ := s.Attr("value")
			saml := credentials.SamlAssertion(v)
			c.saml = &saml
		}
	})

	return nil
}

func (c *Client) auth(ctx context.Context) (*oktaAuthnResponse, error) {
	res, err := c.sendAuthnRequest(ctx)
	if err != nil {
		return nil, err
	}

	switch strings.ToUpper(res.Status) {
	case "SUCCESS":
		c.Logger.Debugf("primary authentication succeeded, no MFA required")
		return res, nil
	case "MFA_REQUIRED":
		c.Logger.Debugf("MFA challenge received")
		return c.doMfa(ctx, res.StateToken, res.EmbeddedData.MfaFactors)
	default:
		return nil, fmt.Errorf("authentication status %s", res.Status)
	}
}

func (c *Client) sendAuthnRequest(ctx context.Context) (*oktaAuthnResponse, error) {
	creds, err := json.Marshal(map[string]string{
		"username": c.Username,
		"password": c.Password,
	})
	if err != nil {
		return nil, err
	}

	authUrl := fmt.Sprintf("%s://%s/api/v1/authn", c.orgUrl.Scheme, c.orgUrl.Host)
	res, err := c.sendApiRequest(ctx, authUrl, bytes.NewReader(creds))
	if err != nil {
		return nil, err
	}

	return c.handleAuthResponse(res)
}

// selection order for the MFA factor: an inline OTP code binds to the (single) token-type
// factor, an explicit factor preference selects by type, a lone eligible factor is used
// as-is.  Multiple eligible factors with nothing to disambiguate is a hard error listing
// the choices ... never guess which factor to poke on the user's behalf.
func (c *Client) doMfa(ctx context.Context, stateToken string, factors []*oktaMfaFactor) (*oktaAuthnResponse, error) {
	eligible := make([]*oktaMfaFactor, 0, len(factors))
	for _, f := range factors {
		if f.FactorType == MfaFactorPush || strings.HasPrefix(f.FactorType, MfaFactorToken) {
			eligible = append(eligible, f)
		}
	}

	if len(eligible) < 1 {
		return nil, ErrMfaNotConfigured
	}

	if len(c.MfaTokenCode) > 0 {
		for _, f := range eligible {
			if strings.HasPrefix(f.FactorType, MfaFactorToken) {
				return c.handleTokenMfa(ctx, stateToken, f.Links["verify"].Href)
			}
		}
		return nil, errors.New("an MFA token code was supplied, but no token-type factor is enrolled")
	}

	if len(c.MfaFactor) > 0 {
		for _, f := range eligible {
			if strings.EqualFold(f.FactorType, c.MfaFactor) {
				return c.handleMfa(ctx, stateToken, f)
			}
		}
		return nil, fmt.Errorf("configured MFA factor %s is not enrolled for this account", c.MfaFactor)
	}

	if len(eligible) == 1 {
		return c.handleMfa(ctx, stateToken, eligible[0])
	}

	types := make([]string, len(eligible))
	for i, f := range eligible {
		types[i] = f.FactorType
	}
	return nil, &mfaAmbiguousError{factors: types}
}

func (c *Client) handleMfa(ctx context.Context, stateToken string, factor *oktaMfaFactor) (*oktaAuthnResponse, error) {
	c.Logger.Debugf("using MFA factor %s", factor.FactorType)
	verifyUrl := factor.Links["verify"].Href

	switch factor.FactorType {
	case MfaFactorPush:
		body, _ := json.Marshal(oktaMfaResponse{Token: stateToken})

		res, err := c.sendApiRequest(ctx, verifyUrl, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}

		r, err := c.handleAuthResponse(res)
		if err != nil {
			return nil, err
		}

		return c.handlePushMfa(ctx, r)
	case MfaFactorToken, MfaFactorHotp, MfaFactorTotp:
		return c.handleTokenMfa(ctx, stateToken, verifyUrl)
	default:
		return nil, fmt.Errorf("unsupported MFA Type: %s", factor.FactorType)
	}
}

func (c *Client) handlePushMfa(ctx context.Context, res *oktaAuthnResponse) (*oktaAuthnResponse, error) {
	var err error

	fmt.Fprint(os.Stderr, "Waiting for Push MFA ")

	for strings.EqualFold(res.Status, "MFA_CHALLENGE") && strings.EqualFold(res.FactorResult, "WAITING") {
		var nextUrl string
		if v, ok := res.Links["next"].(map[string]interface{}); ok {
			nextUrl, _ = v["href"].(string)
		}

		body, _ := json.Marshal(oktaMfaResponse{Token: res.StateToken})

		time.Sleep(1250 * time.Millisecond)
		fmt.Fprint(os.Stderr, ".")

		var r *http.Response
		r, err = c.sendApiRequest(ctx, nextUrl, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}

		res, err = c.handleAuthResponse(r)
		if err != nil {
			return nil, err
		}
	}
	fmt.Fprintln(os.Stderr)

	if !strings.EqualFold(res.Status, "SUCCESS") {
		return nil, fmt.Errorf("push MFA failed with result %s", res.FactorResult)
	}
	return res, err
}

// the MFA code is submitted exactly once, a rejection surfaces immediately instead of
// silently re-prompting (repeated blind retries are a good way to lock the account out)
func (c *Client) handleTokenMfa(ctx context.Context, stateToken, verifyUrl string) (*oktaAuthnResponse, error) {
	if len(c.MfaTokenCode) < 1 {
		if c.MfaTokenProvider == nil {
			return nil, ErrMfaNotConfigured
		}

		t, err := c.MfaTokenProvider()
		if err != nil {
			return nil, err
		}
		c.MfaTokenCode = t
	}

	mfa := oktaMfaResponse{Token: stateToken, Code: c.MfaTokenCode}
	data, _ := json.Marshal(mfa)

	res, err := c.sendApiRequest(ctx, verifyUrl, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return c.handleAuthResponse(res)
}

func (c *Client) sendApiRequest(ctx context.Context, u string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setUserAgent(req)

	return c.httpClient.Do(req)
}

func (c *Client) handleAuthResponse(res *http.Response) (*oktaAuthnResponse, error) {
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1024*1024))
	if err != nil {
		return nil, err
	}

	// any non-200 status code is bad (invalid creds, rejected MFA, locked out), reason
	// will be provided in response body
	if res.StatusCode != http.StatusOK {
		r := new(apiError)
		_ = json.Unmarshal(body, r)
		if len(r.Message) < 1 {
			r.Message = fmt.Sprintf("authentication request failed with http status %d", res.StatusCode)
		}
		return nil, r
	}

	or := new(oktaAuthnResponse)
	if err := json.Unmarshal(body, or); err != nil {
		return nil, err
	}
	return or, nil
}

func (c *Client) gatherCredentials() error {
	var err error

	u := c.Username
	p := c.Password
	if len(u) < 1 || len(p) < 1 {
		u, p, err = c.CredentialInputProvider(u, p)
		if err != nil {
			return err
		}
		c.Username = u
		c.Password = p
	}

	return nil
}

func (c *Client) setHttpClient() {
	if c.httpClient == nil {
		c.httpClient = new(http.Client)
	}

	if c.httpClient.Jar == nil {
		// this never returns an error, so don't bother checking
		c.httpClient.Jar, _ = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	}
}

func (c *Client) setUserAgent(req *http.Request) {
	if len(c.UserAgent) > 0 {
		req.Header.Set("User-Agent", c.UserAgent)
	}
}

func parseHttpUrl(u string) (*url.URL, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(parsed.Scheme, "http") {
		return nil, errors.New("invalid client URL")
	}
	return parsed, nil
}

type oktaAuthnResponse struct {
	Status       string                 `json:"status"`
	SessionToken string                 `json:"sessionToken,omitempty"`
	StateToken   string                 `json:"stateToken,omitempty"`
	FactorResult string                 `json:"factorResult"`
	Links        map[string]interface{} `json:"_links"`
	EmbeddedData struct {
		MfaFactors []*oktaMfaFactor `json:"factors"`
	} `json:"_embedded,omitempty"`
}

type oktaMfaFactor struct {
	Id         string `json:"id"`
	FactorType string `json:"factorType"`
	Provider   string `json:"provider"`
	Links      map[string]struct {
		Href string `json:"href"`
	} `json:"_links"`
}

type oktaMfaResponse struct {
	Token string `json:"stateToken"`
	Code  string `json:"passCode,omitempty"`
}
