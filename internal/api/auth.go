package api

import (
	"net/http"

	"github.com/opswatch/console/internal/auth"
)

type loginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *auth.User     `json:"user"`
	Companies    []auth.Company `json:"companies"`
}

// Login authenticates and installs the result into the auth context. The
// first company in the response becomes the selected tenant.
func (c *Client) Login(email, password string) error {
	var out loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(http.MethodPost, "/auth/login", body, &out); err != nil {
		return err
	}
	c.auth.SetLogin(out.AccessToken, out.RefreshToken, out.User, out.Companies)
	return nil
}

type switchResponse struct {
	Role string `json:"role"`
}

// SwitchCompany changes the selected tenant and updates the held role.
func (c *Client) SwitchCompany(companyID int) error {
	var out switchResponse
	body := map[string]int{"company_id": companyID}
	if err := c.do(http.MethodPost, "/auth/switch", body, &out); err != nil {
		return err
	}
	c.auth.SetCompany(companyID, out.Role)
	return nil
}
