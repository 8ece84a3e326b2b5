package carclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"car-passion/cmd/api/httpclient"
	"car-passion/logger"
	"car-passion/models"
)

// Client calls the car and upload endpoints of the dealership API.
type Client struct {
	base *httpclient.BaseClient
}

var ErrNotFound = errors.New("car not found")

func New(base *httpclient.BaseClient) *Client {
	return &Client{base: base}
}

// -------------------- Listings --------------------

// ListCarsResponse is the GET /cars payload. Cars is nil when the API sends
// null, a non-array value or a body that is not an object. Total is 0 when
// absent.
type ListCarsResponse struct {
	Cars  []models.Car
	Total int
}

func (r *ListCarsResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Cars  json.RawMessage `json:"cars"`
		Total json.RawMessage `json:"total"`
	}
	r.Cars = nil
	r.Total = 0
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.WarnWithFields("cars payload is not an object", logger.Fields{
			"body":  snippet(data),
			"error": err.Error(),
		})
		return nil
	}

	var items []json.RawMessage
	if len(raw.Cars) > 0 && json.Unmarshal(raw.Cars, &items) == nil {
		r.Cars = make([]models.Car, 0, len(items))
		for i, item := range items {
			var car models.Car
			if err := json.Unmarshal(item, &car); err != nil {
				logger.WarnWithFields("skipping malformed car entry", logger.Fields{
					"index": i,
					"entry": snippet(item),
					"error": err.Error(),
				})
				continue
			}
			r.Cars = append(r.Cars, car)
		}
	}

	var total float64
	if len(raw.Total) > 0 && json.Unmarshal(raw.Total, &total) == nil && total > 0 {
		r.Total = int(total)
	}
	return nil
}

// ListCars calls GET /cars with an already canonical query.
func (c *Client) ListCars(ctx context.Context, query url.Values) (ListCarsResponse, error) {
	resp, err := c.base.Request(ctx, http.MethodGet, "/cars", query, nil)
	if err != nil {
		return ListCarsResponse{}, wrap("ListCars", err)
	}
	var out ListCarsResponse
	if err := resp.Decode(&out); err != nil {
		// a 2xx that is not JSON is treated as an empty listing
		logger.WarnWithFields("cars payload is not JSON", logger.Fields{
			"body":  snippet(resp.Body),
			"error": err.Error(),
		})
		return ListCarsResponse{}, nil
	}
	return out, nil
}

const maxLoggedBody = 256

func snippet(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody])
	}
	return string(b)
}

// FeaturedCars returns the newest limit listings.
func (c *Client) FeaturedCars(ctx context.Context, limit int) ([]models.Car, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	out, err := c.ListCars(ctx, q)
	if err != nil {
		return nil, err
	}
	if out.Cars == nil {
		return []models.Car{}, nil
	}
	return out.Cars, nil
}

func (c *Client) GetCar(ctx context.Context, id string) (models.Car, error) {
	resp, err := c.base.Request(ctx, http.MethodGet, "/cars/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return models.Car{}, wrap("GetCar", err)
	}
	return decodeCar(resp)
}

// -------------------- Admin mutations --------------------

// CarPayload is the body of POST /cars and PUT /cars/:id.
type CarPayload struct {
	Make             string            `json:"make"`
	Model            string            `json:"model"`
	Year             int               `json:"year"`
	Price            float64           `json:"price"`
	KilometersDriven float64           `json:"kilometers_driven"`
	Color            string            `json:"color"`
	FuelType         string            `json:"fuelType"`
	Transmission     string            `json:"transmission"`
	Status           string            `json:"status"`
	Description      string            `json:"description"`
	Features         []string          `json:"features"`
	Images           []models.CarImage `json:"images"`
}

func (c *Client) CreateCar(ctx context.Context, in CarPayload) (models.Car, error) {
	resp, err := c.base.Request(ctx, http.MethodPost, "/cars", nil, in)
	if err != nil {
		return models.Car{}, wrap("CreateCar", err)
	}
	return decodeCar(resp)
}

func (c *Client) UpdateCar(ctx context.Context, id string, in CarPayload) (models.Car, error) {
	resp, err := c.base.Request(ctx, http.MethodPut, "/cars/"+url.PathEscape(id), nil, in)
	if err != nil {
		return models.Car{}, wrap("UpdateCar", err)
	}
	return decodeCar(resp)
}

func (c *Client) UpdateStatus(ctx context.Context, id, status string) error {
	body := struct {
		Status string `json:"status"`
	}{Status: status}
	_, err := c.base.Request(ctx, http.MethodPatch, "/cars/"+url.PathEscape(id)+"/status", nil, body)
	return wrap("UpdateStatus", err)
}

func (c *Client) DeleteCar(ctx context.Context, id string) error {
	_, err := c.base.Request(ctx, http.MethodDelete, "/cars/"+url.PathEscape(id), nil, nil)
	return wrap("DeleteCar", err)
}

// -------------------- Images --------------------

// ImageFile is one file of a multipart upload.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadImages posts files as multipart field "images" to /upload/images.
func (c *Client) UploadImages(ctx context.Context, files []ImageFile) ([]models.CarImage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, f.Filename))
		h.Set("Content-Type", f.ContentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := c.base.Request(ctx, http.MethodPost, "/upload/images", nil, buf.Bytes(),
		httpclient.WithHeader("Content-Type", mw.FormDataContentType()))
	if err != nil {
		return nil, wrap("UploadImages", err)
	}
	var out struct {
		Images []models.CarImage `json:"images"`
	}
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.Images == nil {
		out.Images = []models.CarImage{}
	}
	return out.Images, nil
}

// DeleteImage removes an uploaded asset. The API takes the id in a JSON body.
func (c *Client) DeleteImage(ctx context.Context, publicID string) error {
	body := struct {
		PublicID string `json:"public_id"`
	}{PublicID: publicID}
	_, err := c.base.Request(ctx, http.MethodDelete, "/upload/image", nil, body)
	return wrap("DeleteImage", err)
}

// decodeCar accepts both {"car": {...}} and a bare car object.
func decodeCar(resp *httpclient.Response) (models.Car, error) {
	var wrapped struct {
		Car *models.Car `json:"car"`
	}
	if err := resp.Decode(&wrapped); err != nil {
		return models.Car{}, err
	}
	if wrapped.Car != nil {
		return *wrapped.Car, nil
	}
	var car models.Car
	if err := resp.Decode(&car); err != nil {
		return models.Car{}, err
	}
	return car, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if httpclient.StatusCode(err) == http.StatusNotFound {
		return fmt.Errorf("dealer-api %s: %w: %w", op, ErrNotFound, err)
	}
	return fmt.Errorf("dealer-api %s: %w", op, err)
}
