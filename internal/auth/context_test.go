package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func loggedInContext() *Context {
	c := &Context{}
	c.SetLogin("tok", "refresh", &User{ID: 1, Email: "ops@example.com"}, []Company{
		{ID: 3, Name: "Acme", Role: RoleOperator},
		{ID: 5, Name: "Globex", Role: RoleAdmin},
	})
	return c
}

func TestCredentialsRequireTokenAndCompany(t *testing.T) {
	c := &Context{}
	_, _, ok := c.Credentials()
	require.False(t, ok)

	// Token without a tenant is not enough.
	c.SetToken("tok")
	_, _, ok = c.Credentials()
	require.False(t, ok)

	c.SetCompany(3, RoleOperator)
	token, companyID, ok := c.Credentials()
	require.True(t, ok)
	require.Equal(t, "tok", token)
	require.Equal(t, 3, companyID)

	c.Logout()
	_, _, ok = c.Credentials()
	require.False(t, ok)
	require.False(t, c.LoggedIn())
}

func TestSetLoginSelectsFirstCompany(t *testing.T) {
	c := loggedInContext()
	require.True(t, c.LoggedIn())
	require.Equal(t, 3, c.CompanyID())
	require.True(t, c.IsOperator())
	require.False(t, c.IsAdmin())
}

func TestSetCompanyResolvesRoleFromList(t *testing.T) {
	c := loggedInContext()

	c.SetCompany(5, "")
	require.Equal(t, 5, c.CompanyID())
	require.True(t, c.IsAdmin())

	// Explicit role wins over the list.
	c.SetCompany(3, RoleViewer)
	require.False(t, c.IsOperator())
}

func TestSuperadminBypassesRoles(t *testing.T) {
	c := &Context{}
	c.SetLogin("tok", "", &User{ID: 1, Superadmin: true}, []Company{{ID: 3, Role: RoleViewer}})
	require.True(t, c.IsAdmin())
	require.True(t, c.IsOperator())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")

	c := loggedInContext()
	require.NoError(t, c.Save(path))

	restored := &Context{}
	require.NoError(t, restored.Load(path))
	require.Equal(t, "tok", restored.Token())
	require.Equal(t, "refresh", restored.RefreshToken())
	require.Equal(t, 3, restored.CompanyID())
	require.Len(t, restored.Companies(), 2)
	require.NotNil(t, restored.User())
	require.Equal(t, "ops@example.com", restored.User().Email)
}

func TestLoadMissingFileLeavesLoggedOut(t *testing.T) {
	c := &Context{}
	require.NoError(t, c.Load(filepath.Join(t.TempDir(), "absent.json")))
	require.False(t, c.LoggedIn())
}
