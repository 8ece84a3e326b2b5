package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-passion/cmd/api/dto"
	"car-passion/cmd/api/services"
	"car-passion/config"
	"car-passion/eventbus"
	"car-passion/models"
	"car-passion/repositories"
)

const carBody = `{"make":"Toyota","model":"Corolla","year":2018,"price":850000,"kilometers_driven":42000,
	"color":"White","fuelType":"Petrol","transmission":"Automatic","description":"One owner","features":["ABS"," ABS "]}`

func adminEngine(t *testing.T, routes map[string]http.HandlerFunc) (*dealer, *repositories.MemoryAuditLog, http.Handler) {
	d := newDealer(t, routes)
	audit := &repositories.MemoryAuditLog{}
	svc := services.NewAdminService(audit, eventbus.NopPublisher{}, 10)
	uploads := services.NewUploadService(config.UploadsConfig{MaxImageBytes: 1 << 20, MaxImagesPerCar: 10})

	r := newEngine(newVisitor(d.srv.URL))
	r.GET("/admin/dashboard", DashboardHandler(svc))
	r.GET("/admin/cars", AdminListCarsHandler(svc))
	r.POST("/admin/cars", CreateCarHandler(svc))
	r.GET("/admin/cars/:id", AdminGetCarHandler(svc))
	r.PUT("/admin/cars/:id", UpdateCarHandler(svc))
	r.PATCH("/admin/cars/:id/status", UpdateCarStatusHandler(svc))
	r.DELETE("/admin/cars/:id", DeleteCarHandler(svc))
	r.GET("/admin/cars/:id/history", CarHistoryHandler(svc))
	r.POST("/admin/uploads/images", UploadImagesHandler(uploads))
	r.DELETE("/admin/uploads/image", DeleteImageHandler(uploads))
	return d, audit, r
}

func TestDashboardHandler(t *testing.T) {
	_, _, r := adminEngine(t, map[string]http.HandlerFunc{
		"GET /cars": jsonReply(http.StatusOK, `{"cars":[
			{"_id":"a","status":"available"},{"_id":"b","status":"sold"},
			{"_id":"c","status":"reserved"},{"_id":"d","status":"available"}]}`),
	})

	w := do(r, http.MethodGet, "/admin/dashboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.DashboardStatsDTO{TotalCars: 4, AvailableCars: 2, ReservedCars: 1, SoldCars: 1},
		decode[dto.DashboardStatsDTO](t, w))
}

func TestAdminListCarsHandlerDoesNotRetry(t *testing.T) {
	d, _, r := adminEngine(t, map[string]http.HandlerFunc{
		"GET /cars": jsonReply(http.StatusServiceUnavailable, `{"message":"Maintenance"}`),
	})

	w := do(r, http.MethodGet, "/admin/cars?page=2", "", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Maintenance", decode[dto.ErrorResponseDTO](t, w).Error)
	assert.Equal(t, 1, d.count())
}

func TestAdminListCarsHandler(t *testing.T) {
	_, _, r := adminEngine(t, map[string]http.HandlerFunc{"GET /cars": jsonReply(http.StatusOK, twoCars)})

	w := do(r, http.MethodGet, "/admin/cars?page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[dto.PaginationAdminCarDTO](t, w)
	assert.Equal(t, 2, out.Page)
	assert.Equal(t, 10, out.PageSize)
	assert.Equal(t, 23, out.Total)
	assert.Equal(t, 3, out.TotalPages)
	require.Len(t, out.Data, 2)
	assert.Equal(t, "2019 BMW X5", out.Data[0].Title)
}

func TestCreateCarHandler(t *testing.T) {
	d, audit, r := adminEngine(t, map[string]http.HandlerFunc{
		"POST /cars": jsonReply(http.StatusCreated, `{"car":{"_id":"new1","make":"Toyota","model":"Corolla","year":2018}}`),
	})

	w := do(r, http.MethodPost, "/admin/cars", "application/json", []byte(carBody))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "new1", decode[dto.CarDetailDTO](t, w).ID)

	_, body := d.last()
	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &sent))
	assert.Equal(t, []any{"ABS"}, sent["features"])
	assert.Equal(t, "available", sent["status"])

	entries := audit.All()
	require.Len(t, entries, 1)
	assert.Equal(t, services.AuditActionCreate, entries[0].Action)
	assert.Equal(t, "new1", entries[0].CarID)
	assert.True(t, entries[0].Success)
}

func TestCreateCarHandlerErrors(t *testing.T) {
	testCases := []struct {
		name       string
		routes     map[string]http.HandlerFunc
		body       string
		wantStatus int
		wantError  string
		wantCalls  int
	}{
		{
			name:       "missing fields",
			body:       `{"make":"Toyota"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Please fill in all required fields",
		},
		{
			name:       "malformed json",
			body:       `{"make":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid field values",
		},
		{
			name: "api rejects",
			routes: map[string]http.HandlerFunc{
				"POST /cars": jsonReply(http.StatusBadRequest, `{"message":"Duplicate listing"}`),
			},
			body:       carBody,
			wantStatus: http.StatusBadRequest,
			wantError:  "Duplicate listing",
			wantCalls:  1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, _, r := adminEngine(t, tc.routes)
			w := do(r, http.MethodPost, "/admin/cars", "application/json", []byte(tc.body))
			require.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, decode[dto.ErrorResponseDTO](t, w).Error, tc.wantError)
			assert.Equal(t, tc.wantCalls, d.count())
		})
	}
}

func TestUpdateStatusAndDeleteHandlers(t *testing.T) {
	d, audit, r := adminEngine(t, map[string]http.HandlerFunc{
		"PATCH /cars/c1/status": jsonReply(http.StatusOK, `{"success":true}`),
		"DELETE /cars/c1":       jsonReply(http.StatusOK, `{"success":true}`),
	})

	w := do(r, http.MethodPatch, "/admin/cars/c1/status", "application/json", []byte(`{"status":"scrapped"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, d.count())

	w = do(r, http.MethodPatch, "/admin/cars/c1/status", "application/json", []byte(`{"status":"sold"}`))
	require.Equal(t, http.StatusOK, w.Code)
	_, body := d.last()
	assert.JSONEq(t, `{"status":"sold"}`, body)

	w = do(r, http.MethodDelete, "/admin/cars/c1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, "/admin/cars/gone", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/admin/cars/c1/history?limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]models.AdminAuditLog](t, w)
	require.Len(t, history, 2)
	assert.Equal(t, services.AuditActionDelete, history[0].Action)
	assert.Equal(t, services.AuditActionStatus, history[1].Action)
	assert.Len(t, audit.All(), 3)

	w = do(r, http.MethodGet, "/admin/cars/c1/history?limit=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartBody(t *testing.T, existing string, files map[string][]byte) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if existing != "" {
		require.NoError(t, mw.WriteField("existing", existing))
	}
	for name, data := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="images"; filename="`+name+`"`)
		h.Set("Content-Type", "application/octet-stream")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), buf.Bytes()
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadImagesHandler(t *testing.T) {
	d, _, r := adminEngine(t, map[string]http.HandlerFunc{
		"POST /upload/images": jsonReply(http.StatusOK, `{"images":[{"url":"https://cdn.test/a.png","public_id":"cars/a"}]}`),
	})

	ct, body := multipartBody(t, "2", map[string][]byte{
		"a.png":     pngHeader,
		"notes.txt": []byte("plain text, not an image"),
	})
	w := do(r, http.MethodPost, "/admin/uploads/images", ct, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decode[dto.UploadImagesResponseDTO](t, w)
	require.Len(t, out.Images, 1)
	assert.Equal(t, "cars/a", out.Images[0].PublicID)
	require.Len(t, out.Rejected, 1)
	assert.Equal(t, "notes.txt", out.Rejected[0].Filename)

	req, _ := d.last()
	assert.Contains(t, req.Header.Get("Content-Type"), "multipart/form-data")
}

func TestUploadImagesHandlerLimits(t *testing.T) {
	d, _, r := adminEngine(t, nil)

	ct, body := multipartBody(t, "10", map[string][]byte{"a.png": pngHeader})
	w := do(r, http.MethodPost, "/admin/uploads/images", ct, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ct, body = multipartBody(t, "", map[string][]byte{"notes.txt": []byte("text")})
	w = do(r, http.MethodPost, "/admin/uploads/images", ct, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var out struct {
		Rejected []dto.RejectedImageDTO `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out.Rejected, 1)

	w = do(r, http.MethodPost, "/admin/uploads/images", "application/json", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, d.count())
}

func TestDeleteImageHandler(t *testing.T) {
	d, _, r := adminEngine(t, map[string]http.HandlerFunc{
		"DELETE /upload/image": jsonReply(http.StatusOK, `{"success":true}`),
	})

	w := do(r, http.MethodDelete, "/admin/uploads/image", "application/json", []byte(`{"public_id":" "}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/admin/uploads/image", "application/json", []byte(`{"public_id":"cars/a"}`))
	require.Equal(t, http.StatusOK, w.Code)
	_, body := d.last()
	assert.JSONEq(t, `{"public_id":"cars/a"}`, body)
}
