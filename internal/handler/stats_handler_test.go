package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scanAll runs a verification scan for every code value
func scanAll(t *testing.T, e *echo.Echo, values ...string) {
	t.Helper()
	for _, value := range values {
		c, rec := newContext(e, http.MethodPost, "/api/scans/verify", map[string]interface{}{"code": value})
		require.NoError(t, VerifyScan(c))
		requireStatus(t, rec, http.StatusOK)
	}
}

func TestGetOverviewScopes(t *testing.T) {
	e, testDB := setup(t)
	acme, product := seedCompanyWithCodes(t, testDB, "Acme", 2)

	scanAll(t, e, product.Codes[0].Value, product.Codes[0].Value, "BOGUS")

	// Admin without a company sees the global ledger
	c, rec := newContext(e, http.MethodGet, "/api/stats/overview", nil)
	setIdentity(c, adminIdentity())
	require.NoError(t, GetOverview(c))
	requireStatus(t, rec, http.StatusOK)

	body := decode(t, rec)
	assert.EqualValues(t, 3, body["totalScans"])
	assert.EqualValues(t, 1, body["genuineScans"])
	assert.EqualValues(t, 2, body["fakeScans"])
	assert.EqualValues(t, 1, body["registeredProducts"])

	// Company caller is pinned to its own scope: the unknown scan disappears
	c, rec = newContext(e, http.MethodGet, "/api/stats/overview", nil)
	setIdentity(c, companyIdentity(acme.ID))
	require.NoError(t, GetOverview(c))
	requireStatus(t, rec, http.StatusOK)

	body = decode(t, rec)
	assert.EqualValues(t, 2, body["totalScans"])
	assert.EqualValues(t, 1, body["genuineScans"])
	assert.EqualValues(t, 1, body["fakeScans"])

	// Admin may name a company explicitly
	c, rec = newContext(e, http.MethodGet, "/api/stats/overview?company_id="+itoa(acme.ID), nil)
	setIdentity(c, adminIdentity())
	require.NoError(t, GetOverview(c))
	requireStatus(t, rec, http.StatusOK)
	assert.EqualValues(t, 2, decode(t, rec)["totalScans"])
}

func TestGetOverviewBadCompanyID(t *testing.T) {
	e, _ := setup(t)

	c, rec := newContext(e, http.MethodGet, "/api/stats/overview?company_id=abc", nil)
	setIdentity(c, adminIdentity())
	require.NoError(t, GetOverview(c))
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestGetActivity(t *testing.T) {
	e, testDB := setup(t)
	_, product := seedCompanyWithCodes(t, testDB, "Acme", 1)

	scanAll(t, e, product.Codes[0].Value, "BOGUS-1", "BOGUS-2")

	c, rec := newContext(e, http.MethodGet, "/api/stats/activity?limit=2", nil)
	setIdentity(c, adminIdentity())
	require.NoError(t, GetActivity(c))
	requireStatus(t, rec, http.StatusOK)

	var scans []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scans))
	require.Len(t, scans, 2)
	assert.Equal(t, "BOGUS-2", scans[0]["code_value"])
}

func TestCompanyEndpoints(t *testing.T) {
	e, _ := setup(t)

	// Creation is admin-only
	c, rec := newContext(e, http.MethodPost, "/api/stats/companies", map[string]interface{}{"name": "Acme"})
	setIdentity(c, companyIdentity(1))
	require.NoError(t, CreateCompany(c))
	requireStatus(t, rec, http.StatusForbidden)

	c, rec = newContext(e, http.MethodPost, "/api/stats/companies", map[string]interface{}{"name": "Acme"})
	setIdentity(c, adminIdentity())
	require.NoError(t, CreateCompany(c))
	requireStatus(t, rec, http.StatusCreated)

	// Duplicate name is a validation failure
	c, rec = newContext(e, http.MethodPost, "/api/stats/companies", map[string]interface{}{"name": "Acme"})
	setIdentity(c, adminIdentity())
	require.NoError(t, CreateCompany(c))
	requireStatus(t, rec, http.StatusBadRequest)

	c, rec = newContext(e, http.MethodGet, "/api/stats/companies", nil)
	setIdentity(c, adminIdentity())
	require.NoError(t, ListCompanies(c))
	requireStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "Acme")

	c, rec = newContext(e, http.MethodGet, "/api/stats/companies", nil)
	setIdentity(c, companyIdentity(1))
	require.NoError(t, ListCompanies(c))
	requireStatus(t, rec, http.StatusForbidden)
}
