package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/catalog"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// buildUpload packs an xlsx workbook with the given rows into a multipart
// form under the "file" field.
func buildUpload(t *testing.T, rows [][]interface{}) (*bytes.Buffer, string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var workbook bytes.Buffer
	require.NoError(t, f.Write(&workbook))

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("file", "batch.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &form, writer.FormDataContentType()
}

func uploadContext(e *echo.Echo, form *bytes.Buffer, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/products/bulk", form)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sampleUploadRows() [][]interface{} {
	return [][]interface{}{
		{"name", "sku", "batch_number", "quantity"},
		{"Bolt", "BOLT-1", "B1", 5},
		{"Nut", "NUT-1", "B1", 10},
	}
}

func TestUploadBulkFilesPendingRequest(t *testing.T) {
	e, testDB := setup(t)
	store := catalog.NewStore(testDB, testConfig().Codes)
	company, err := store.CreateCompany("Acme")
	require.NoError(t, err)

	form, contentType := buildUpload(t, sampleUploadRows())
	c, rec := uploadContext(e, form, contentType)
	setIdentity(c, companyIdentity(company.ID))
	require.NoError(t, UploadBulk(c))
	requireStatus(t, rec, http.StatusCreated)

	body := decode(t, rec)
	assert.Equal(t, model.BulkStatusPending, body["status"])
	assert.Equal(t, "2 products submitted for approval.", body["message"])

	// Nothing is minted until approval
	var products int64
	require.NoError(t, testDB.Model(&model.Product{}).Count(&products).Error)
	assert.EqualValues(t, 0, products)
}

func TestUploadBulkRejectsBadFile(t *testing.T) {
	e, testDB := setup(t)
	store := catalog.NewStore(testDB, testConfig().Codes)
	company, err := store.CreateCompany("Acme")
	require.NoError(t, err)

	form, contentType := buildUpload(t, [][]interface{}{
		{"wrong", "header", "entirely", "here"},
		{"Bolt", "BOLT-1", "B1", 5},
	})
	c, rec := uploadContext(e, form, contentType)
	setIdentity(c, companyIdentity(company.ID))
	require.NoError(t, UploadBulk(c))
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestUploadBulkWithoutFile(t *testing.T) {
	e, testDB := setup(t)
	store := catalog.NewStore(testDB, testConfig().Codes)
	company, err := store.CreateCompany("Acme")
	require.NoError(t, err)

	c, rec := newContext(e, http.MethodPost, "/api/products/bulk", nil)
	setIdentity(c, companyIdentity(company.ID))
	require.NoError(t, UploadBulk(c))
	requireStatus(t, rec, http.StatusBadRequest)
}

func submitBulk(t *testing.T, e *echo.Echo, testDB *gorm.DB) (uint, uint) {
	t.Helper()
	store := catalog.NewStore(testDB, testConfig().Codes)
	company, err := store.CreateCompany("Acme")
	require.NoError(t, err)

	form, contentType := buildUpload(t, sampleUploadRows())
	c, rec := uploadContext(e, form, contentType)
	setIdentity(c, companyIdentity(company.ID))
	require.NoError(t, UploadBulk(c))
	requireStatus(t, rec, http.StatusCreated)

	id := uint(decode(t, rec)["id"].(float64))
	return id, company.ID
}

func TestHandleBulkRequestApprove(t *testing.T) {
	e, testDB := setup(t)
	requestID, companyID := submitBulk(t, e, testDB)

	c, rec := newContext(e, http.MethodPost, "/api/products/bulk/requests/:id/handle",
		map[string]interface{}{"action": "APPROVE"})
	c.SetParamNames("id")
	c.SetParamValues(itoa(requestID))
	setIdentity(c, adminIdentity())
	require.NoError(t, HandleBulkRequest(c))
	requireStatus(t, rec, http.StatusOK)

	body := decode(t, rec)
	assert.Equal(t, model.BulkStatusApproved, body["status"])

	var products int64
	require.NoError(t, testDB.Model(&model.Product{}).Where("company_id = ?", companyID).Count(&products).Error)
	assert.EqualValues(t, 2, products)
	var codes int64
	require.NoError(t, testDB.Model(&model.Code{}).Count(&codes).Error)
	assert.EqualValues(t, 15, codes)
}

func TestHandleBulkRequestReject(t *testing.T) {
	e, testDB := setup(t)
	requestID, _ := submitBulk(t, e, testDB)

	c, rec := newContext(e, http.MethodPost, "/api/products/bulk/requests/:id/handle",
		map[string]interface{}{"action": "REJECT"})
	c.SetParamNames("id")
	c.SetParamValues(itoa(requestID))
	setIdentity(c, adminIdentity())
	require.NoError(t, HandleBulkRequest(c))
	requireStatus(t, rec, http.StatusOK)

	var products int64
	require.NoError(t, testDB.Model(&model.Product{}).Count(&products).Error)
	assert.EqualValues(t, 0, products)
}

func TestHandleBulkRequestTwiceConflicts(t *testing.T) {
	e, testDB := setup(t)
	requestID, _ := submitBulk(t, e, testDB)

	decide := func() *httptest.ResponseRecorder {
		c, rec := newContext(e, http.MethodPost, "/api/products/bulk/requests/:id/handle",
			map[string]interface{}{"action": "APPROVE"})
		c.SetParamNames("id")
		c.SetParamValues(itoa(requestID))
		setIdentity(c, adminIdentity())
		require.NoError(t, HandleBulkRequest(c))
		return rec
	}

	requireStatus(t, decide(), http.StatusOK)
	requireStatus(t, decide(), http.StatusConflict)
}

func TestHandleBulkRequestValidation(t *testing.T) {
	e, testDB := setup(t)
	requestID, companyID := submitBulk(t, e, testDB)

	// Unknown action
	c, rec := newContext(e, http.MethodPost, "/api/products/bulk/requests/:id/handle",
		map[string]interface{}{"action": "MAYBE"})
	c.SetParamNames("id")
	c.SetParamValues(itoa(requestID))
	setIdentity(c, adminIdentity())
	require.NoError(t, HandleBulkRequest(c))
	requireStatus(t, rec, http.StatusBadRequest)

	// Non-admin caller
	c, rec = newContext(e, http.MethodPost, "/api/products/bulk/requests/:id/handle",
		map[string]interface{}{"action": "APPROVE"})
	c.SetParamNames("id")
	c.SetParamValues(itoa(requestID))
	setIdentity(c, companyIdentity(companyID))
	require.NoError(t, HandleBulkRequest(c))
	requireStatus(t, rec, http.StatusForbidden)

	// Bad id
	c, rec = newContext(e, http.MethodPost, "/api/products/bulk/requests/:id/handle",
		map[string]interface{}{"action": "APPROVE"})
	c.SetParamNames("id")
	c.SetParamValues("abc")
	setIdentity(c, adminIdentity())
	require.NoError(t, HandleBulkRequest(c))
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestGetBulkRequest(t *testing.T) {
	e, testDB := setup(t)
	requestID, companyID := submitBulk(t, e, testDB)

	c, rec := newContext(e, http.MethodGet, "/api/products/bulk/requests/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(requestID))
	setIdentity(c, companyIdentity(companyID))
	require.NoError(t, GetBulkRequest(c))
	requireStatus(t, rec, http.StatusOK)

	body := decode(t, rec)
	rows, ok := body["rows"].([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 2)

	// Another company may not see it
	c, rec = newContext(e, http.MethodGet, "/api/products/bulk/requests/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(requestID))
	setIdentity(c, companyIdentity(companyID+1))
	require.NoError(t, GetBulkRequest(c))
	requireStatus(t, rec, http.StatusForbidden)
}

func TestListBulkRequestsScoping(t *testing.T) {
	e, testDB := setup(t)
	_, companyID := submitBulk(t, e, testDB)

	c, rec := newContext(e, http.MethodGet, "/api/products/bulk/requests", nil)
	setIdentity(c, companyIdentity(companyID))
	require.NoError(t, ListBulkRequests(c))
	requireStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "batch.xlsx")

	c, rec = newContext(e, http.MethodGet, "/api/products/bulk/requests", nil)
	setIdentity(c, adminIdentity())
	require.NoError(t, ListBulkRequests(c))
	requireStatus(t, rec, http.StatusOK)
}
