package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/confidant-sh/confidant/acme"
	"github.com/confidant-sh/confidant/acme/keys"
	"github.com/confidant-sh/confidant/acme/resources"
)

// CreateAccount registers the Client's Account resource with the ACME server.
// The Account is updated with the ID returned in the server's response's
// Location header if the operation is successful, otherwise an error is
// returned.
//
// Important: this function always unconditionally agrees to the server's
// terms of service (it sends "termsOfServiceAgreed":true in all account
// creation requests).
//
// For more information on account creation see
// https://tools.ietf.org/html/rfc8555#section-7.3
func (c *Client) CreateAccount(ctx context.Context) (*resources.Account, error) {
	acct := c.Account
	if acct.ID != "" {
		return nil, fmt.Errorf("createAccount: account already exists under ID %q", acct.ID)
	}

	newAcctReq := struct {
		Contact   []string `json:"contact,omitempty"`
		ToSAgreed bool     `json:"termsOfServiceAgreed"`
	}{
		Contact:   acct.Contact,
		ToSAgreed: true,
	}

	reqBody, err := json.Marshal(&newAcctReq)
	if err != nil {
		return nil, err
	}

	newAcctURL, ok := c.GetEndpointURL(ctx, acme.NEW_ACCOUNT_ENDPOINT)
	if !ok {
		return nil, fmt.Errorf("createAccount: %w: ACME server missing %q endpoint in directory",
			acme.ErrProtocol, acme.NEW_ACCOUNT_ENDPOINT)
	}

	c.log.Info("registering ACME account", "contact", acct.Contact, "url", newAcctURL)
	resp, err := c.postJWS(ctx, newAcctURL, reqBody, &SigningOptions{EmbedKey: true})
	if err != nil {
		return nil, fmt.Errorf("createAccount: %w", err)
	}

	respOb := resp.Response
	if respOb.StatusCode != http.StatusCreated && respOb.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("createAccount: %w: server returned status code %d, expected %d",
			acme.ErrProtocol, respOb.StatusCode, http.StatusCreated)
	}

	locHeader := respOb.Header.Get("Location")
	if locHeader == "" {
		return nil, fmt.Errorf("createAccount: %w: server returned response with no Location header",
			acme.ErrProtocol)
	}

	// Store the Location header as the Account's ID
	acct.ID = locHeader
	c.log.Info("registered ACME account", "id", acct.ID)
	return acct, nil
}

// CreateOrder creates an Order resource for the single given DNS identifier
// with the ACME server. If the operation is successful the Order's ID field
// is populated with the value of the server's reply's Location header.
// Otherwise a non-nil error is returned.
//
// For more information on Order creation see "Applying for Certificate
// Issuance" in RFC 8555:
// https://tools.ietf.org/html/rfc8555#section-7.4
func (c *Client) CreateOrder(ctx context.Context, domain string) (*resources.Order, error) {
	if c.Account.ID == "" {
		return nil, fmt.Errorf("createOrder: account has not been registered")
	}

	order := &resources.Order{
		Identifiers: []resources.Identifier{{Type: "dns", Value: domain}},
	}

	req := struct {
		Identifiers []resources.Identifier `json:"identifiers"`
	}{
		Identifiers: order.Identifiers,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	newOrderURL, ok := c.GetEndpointURL(ctx, acme.NEW_ORDER_ENDPOINT)
	if !ok {
		return nil, fmt.Errorf("createOrder: %w: ACME server missing %q endpoint in directory",
			acme.ErrProtocol, acme.NEW_ORDER_ENDPOINT)
	}

	resp, err := c.postJWS(ctx, newOrderURL, reqBody, nil)
	if err != nil {
		return nil, fmt.Errorf("createOrder: %w", err)
	}

	respOb := resp.Response
	if respOb.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("createOrder: %w: server returned status code %d, expected %d",
			acme.ErrProtocol, respOb.StatusCode, http.StatusCreated)
	}

	locHeader := respOb.Header.Get("Location")
	if locHeader == "" {
		return nil, fmt.Errorf("createOrder: %w: server returned response with no Location header",
			acme.ErrProtocol)
	}

	if err := json.Unmarshal(resp.RespBody, order); err != nil {
		return nil, fmt.Errorf("createOrder: %w: server returned invalid JSON: %w",
			acme.ErrProtocol, err)
	}

	// Store the Location header as the Order's ID
	order.ID = locHeader
	c.log.Info("created ACME order", "id", order.ID, "domain", domain)
	return order, nil
}

// FetchAuthorizations fetches every Authorization resource the server
// specified for the given Order, in order. Each Authorization's ID field is
// populated with the URL it was fetched from.
//
// See https://tools.ietf.org/html/rfc8555#section-7.5
func (c *Client) FetchAuthorizations(ctx context.Context, order *resources.Order) ([]resources.Authorization, error) {
	if order == nil || order.ID == "" {
		return nil, fmt.Errorf("fetchAuthorizations: order must have an ID")
	}

	authzs := make([]resources.Authorization, 0, len(order.Authorizations))
	for _, authzURL := range order.Authorizations {
		resp, err := c.postAsGet(ctx, authzURL)
		if err != nil {
			return nil, fmt.Errorf("fetchAuthorizations: %w", err)
		}
		if resp.Response.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetchAuthorizations: %w: %q returned status code %d, expected %d",
				acme.ErrProtocol, authzURL, resp.Response.StatusCode, http.StatusOK)
		}

		var authz resources.Authorization
		if err := json.Unmarshal(resp.RespBody, &authz); err != nil {
			return nil, fmt.Errorf("fetchAuthorizations: %w: server returned invalid JSON: %w",
				acme.ErrProtocol, err)
		}
		authz.ID = authzURL
		authzs = append(authzs, authz)
	}

	return authzs, nil
}

// SignalChallengeReady tells the ACME server that the challenge at the given
// URL is ready to be validated, by POSTing the empty JSON object to it. Per
// RFC 8555 the server then begins validating against the challenge-serving
// surface. This must be issued at most once per challenge; the response body
// is not meaningful beyond its status code.
//
// See https://tools.ietf.org/html/rfc8555#section-7.5.1
func (c *Client) SignalChallengeReady(ctx context.Context, challengeURL string) error {
	if challengeURL == "" {
		return fmt.Errorf("signalChallengeReady: challenge URL must not be empty")
	}

	resp, err := c.postJWS(ctx, challengeURL, []byte("{}"), nil)
	if err != nil {
		return fmt.Errorf("signalChallengeReady: %w", err)
	}

	if resp.Response.StatusCode != http.StatusOK {
		return fmt.Errorf("signalChallengeReady: %w: %q returned status code %d, expected %d",
			acme.ErrProtocol, challengeURL, resp.Response.StatusCode, http.StatusOK)
	}

	c.log.Info("signaled challenge readiness", "url", challengeURL)
	return nil
}

// RefreshOrder re-reads the given Order from its ID URL, mutating it in
// place. Calling RefreshOrder is required to synchronize an Order's Status
// field with the server-side representation.
func (c *Client) RefreshOrder(ctx context.Context, order *resources.Order) error {
	if order == nil || order.ID == "" {
		return fmt.Errorf("refreshOrder: order must have an ID")
	}

	resp, err := c.postAsGet(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("refreshOrder: %w", err)
	}
	if resp.Response.StatusCode != http.StatusOK {
		return fmt.Errorf("refreshOrder: %w: %q returned status code %d, expected %d",
			acme.ErrProtocol, order.ID, resp.Response.StatusCode, http.StatusOK)
	}

	if err := json.Unmarshal(resp.RespBody, order); err != nil {
		return fmt.Errorf("refreshOrder: %w: server returned invalid JSON: %w",
			acme.ErrProtocol, err)
	}

	return nil
}

// FinalizeOrder submits the DER encoded CSR to the Order's finalize URL,
// asking the server to issue a certificate for it.
//
// See https://tools.ietf.org/html/rfc8555#section-7.4
func (c *Client) FinalizeOrder(ctx context.Context, order *resources.Order, csrDER []byte) error {
	if order == nil || order.Finalize == "" {
		return fmt.Errorf("finalizeOrder: order must have a finalize URL")
	}

	req := struct {
		CSR string `json:"csr"`
	}{
		CSR: base64.RawURLEncoding.EncodeToString(csrDER),
	}

	reqBody, err := json.Marshal(&req)
	if err != nil {
		return err
	}

	resp, err := c.postJWS(ctx, order.Finalize, reqBody, nil)
	if err != nil {
		return fmt.Errorf("finalizeOrder: %w", err)
	}

	if resp.Response.StatusCode != http.StatusOK {
		return fmt.Errorf("finalizeOrder: %w: %q returned status code %d, expected %d",
			acme.ErrProtocol, order.Finalize, resp.Response.StatusCode, http.StatusOK)
	}

	if err := json.Unmarshal(resp.RespBody, order); err != nil {
		return fmt.Errorf("finalizeOrder: %w: server returned invalid JSON: %w",
			acme.ErrProtocol, err)
	}

	c.log.Info("finalized ACME order", "id", order.ID)
	return nil
}

// DownloadCertificate fetches the PEM certificate chain for a valid Order.
// A missing certificate URL or an empty response body is an error, not
// a valid terminal state.
//
// See https://tools.ietf.org/html/rfc8555#section-7.4.2
func (c *Client) DownloadCertificate(ctx context.Context, order *resources.Order) ([]byte, error) {
	if order == nil || order.Certificate == "" {
		return nil, fmt.Errorf("downloadCertificate: %w: order has no certificate URL",
			acme.ErrProtocol)
	}

	resp, err := c.postAsGet(ctx, order.Certificate)
	if err != nil {
		return nil, fmt.Errorf("downloadCertificate: %w", err)
	}
	if resp.Response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloadCertificate: %w: %q returned status code %d, expected %d",
			acme.ErrProtocol, order.Certificate, resp.Response.StatusCode, http.StatusOK)
	}
	if len(resp.RespBody) == 0 {
		return nil, fmt.Errorf("downloadCertificate: %w: server returned an empty certificate body",
			acme.ErrProtocol)
	}

	c.log.Info("downloaded certificate chain", "bytes", len(resp.RespBody))
	return resp.RespBody, nil
}

// KeyAuthorization constructs the key authorization value for the given
// HTTP-01 challenge token using the registered account key's JWK thumbprint.
//
// See https://tools.ietf.org/html/rfc8555#section-8.1
func (c *Client) KeyAuthorization(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("keyAuthorization: token must not be empty")
	}
	return keys.KeyAuth(c.Account.Signer, token), nil
}
