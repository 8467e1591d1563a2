package controllers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/services"
)

func TestDishAdministration(t *testing.T) {
	h := newHarness(t)
	id := h.mustLatte()
	path := "/dishes/" + strconv.FormatInt(id, 10)

	code, resp := h.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, code)
	var dish models.Dish
	h.decode(resp, &dish)
	assert.Equal(t, "Latte", dish.Name)
	assert.Equal(t, models.NoSpecies, dish.Species)
	require.Len(t, dish.Variants, 2)
	assert.True(t, dish.Variants[0].Exclusive)

	code, resp = h.do(http.MethodPut, "/admin"+path, h.admin, map[string]interface{}{
		"name":  "Flat White",
		"sizes": []string{"regular"},
	})
	require.Equal(t, http.StatusOK, code, resp.Message)
	h.decode(resp, &dish)
	assert.Equal(t, "Flat White", dish.Name)
	assert.Empty(t, dish.Variants)

	code, resp = h.do(http.MethodPut, "/admin"+path, h.admin, map[string]interface{}{
		"name":    "Flat White",
		"sizes":   []string{"regular"},
		"species": 77,
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "DoesNotExist", resp.Message)

	code, _ = h.do(http.MethodPost, "/admin/dishes", h.admin, map[string]interface{}{
		"name":  "Broken",
		"sizes": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(http.MethodDelete, "/admin"+path, h.admin, nil)
	assert.Equal(t, http.StatusOK, code)
	code, resp = h.do(http.MethodDelete, "/admin"+path, h.admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "DoesNotExist", resp.Message)

	code, resp = h.do(http.MethodGet, "/dishes", "", nil)
	require.Equal(t, http.StatusOK, code)
	var dishes []models.Dish
	h.decode(resp, &dishes)
	assert.Empty(t, dishes)
}

func TestImportDishesUpload(t *testing.T) {
	h := newHarness(t)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"name", "sizes", "species", "variants"},
		{"Espresso", "single,double", "", "!arabica|robusta"},
		{"", "", "", ""},
		{"Nameless", "", "", ""},
		{"Tea", "pot", "", "green|black", "milk|lemon"},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &rows[i]))
	}
	book, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "menu.xlsx")
	require.NoError(t, err)
	_, err = part.Write(book.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/dishes/import", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+h.admin)
	code, resp := h.serve(req)
	require.Equal(t, http.StatusOK, code, resp.Message)

	var report services.ImportReport
	h.decode(resp, &report)
	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 4, report.Skipped[0].Row)

	code, resp = h.do(http.MethodGet, "/dishes", "", nil)
	require.Equal(t, http.StatusOK, code)
	var dishes []models.Dish
	h.decode(resp, &dishes)
	require.Len(t, dishes, 2)
	assert.Equal(t, "Tea", dishes[1].Name)
	assert.Len(t, dishes[1].Variants, 2)
}

func TestImportDishesNeedsAFile(t *testing.T) {
	h := newHarness(t)

	code, _ := h.do(http.MethodPost, "/admin/dishes/import", h.admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
