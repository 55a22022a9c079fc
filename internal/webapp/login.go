package webapp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Login establishes an authenticated session. It fetches the login page to
// obtain the CSRF cookie, then posts the credentials together with the token
// and a Referer of the login page.
func (c *Client) Login(ctx context.Context, username, password string) error {
	loginURL := c.LoginURL()

	resp, err := c.do(ctx, http.MethodGet, loginURL, "get login page", nil, nil)
	if err != nil {
		return err
	}
	drain(resp)

	token := c.cookie(loginURL, c.csrfCookie)
	if token == "" {
		c.logger.WarnContext(ctx, "login page set no CSRF cookie", "cookie", c.csrfCookie)
	}

	form := url.Values{
		"username":            {username},
		"password":            {password},
		"csrfmiddlewaretoken": {token},
	}
	header := http.Header{
		"Content-Type": {"application/x-www-form-urlencoded"},
		"Referer":      {loginURL},
	}
	resp, err = c.do(ctx, http.MethodPost, loginURL, "post login", strings.NewReader(form.Encode()), header)
	if err != nil {
		return err
	}
	defer drain(resp)

	if !c.verifyLogin {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &LoginError{StatusCode: resp.StatusCode, Reason: resp.Status}
	}
	if c.cookie(c.baseURL+"/", c.sessionCookie) == "" {
		return &LoginError{StatusCode: resp.StatusCode, Reason: fmt.Sprintf("no %s cookie after login", c.sessionCookie)}
	}
	c.logger.InfoContext(ctx, "login verified", "username", username)
	return nil
}
