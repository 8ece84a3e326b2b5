package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"car-passion/cmd/api/clients/carclient"
	"car-passion/eventbus"
	"car-passion/models"

	"github.com/stretchr/testify/require"
)

// fakeDealer is an in-memory dealership API.
type fakeDealer struct {
	mu       sync.Mutex
	cars     map[string]models.Car
	nextID   int
	listErr  []error
	queries  []url.Values
	uploaded []carclient.ImageFile
	deleted  []string
	err      error
}

func newFakeDealer(cars ...models.Car) *fakeDealer {
	d := &fakeDealer{cars: map[string]models.Car{}}
	for _, c := range cars {
		d.cars[c.ID] = c
	}
	return d
}

func (d *fakeDealer) ListCars(_ context.Context, q url.Values) (carclient.ListCarsResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries = append(d.queries, q)
	if len(d.listErr) > 0 {
		err := d.listErr[0]
		d.listErr = d.listErr[1:]
		return carclient.ListCarsResponse{}, err
	}
	out := make([]models.Car, 0, len(d.cars))
	for _, c := range d.cars {
		out = append(out, c)
	}
	return carclient.ListCarsResponse{Cars: out}, nil
}

func (d *fakeDealer) FeaturedCars(ctx context.Context, limit int) ([]models.Car, error) {
	resp, err := d.ListCars(ctx, url.Values{})
	if err != nil {
		return nil, err
	}
	if len(resp.Cars) > limit {
		resp.Cars = resp.Cars[:limit]
	}
	return resp.Cars, nil
}

func (d *fakeDealer) GetCar(_ context.Context, id string) (models.Car, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.cars[id]
	if !ok {
		return models.Car{}, carclient.ErrNotFound
	}
	return c, nil
}

func (d *fakeDealer) CreateCar(_ context.Context, in carclient.CarPayload) (models.Car, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return models.Car{}, d.err
	}
	d.nextID++
	c := carFromPayload("new-"+strconv.Itoa(d.nextID), in)
	d.cars[c.ID] = c
	return c, nil
}

func (d *fakeDealer) UpdateCar(_ context.Context, id string, in carclient.CarPayload) (models.Car, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.cars[id]; !ok {
		return models.Car{}, carclient.ErrNotFound
	}
	c := carFromPayload(id, in)
	d.cars[id] = c
	return c, nil
}

func (d *fakeDealer) UpdateStatus(_ context.Context, id, status string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.cars[id]
	if !ok {
		return carclient.ErrNotFound
	}
	c.Status = status
	d.cars[id] = c
	return nil
}

func (d *fakeDealer) DeleteCar(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.cars[id]; !ok {
		return carclient.ErrNotFound
	}
	delete(d.cars, id)
	return nil
}

func (d *fakeDealer) UploadImages(_ context.Context, files []carclient.ImageFile) ([]models.CarImage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uploaded = append(d.uploaded, files...)
	out := make([]models.CarImage, 0, len(files))
	for _, f := range files {
		out = append(out, models.CarImage{URL: "https://img.test/" + f.Filename, PublicID: "cars/" + f.Filename})
	}
	return out, nil
}

func (d *fakeDealer) DeleteImage(_ context.Context, publicID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, publicID)
	return nil
}

func carFromPayload(id string, in carclient.CarPayload) models.Car {
	return models.Car{
		ID: id, Make: in.Make, Model: in.Model, Year: in.Year, Price: in.Price,
		KilometersDriven: in.KilometersDriven, Color: in.Color, FuelType: in.FuelType,
		Transmission: in.Transmission, Status: in.Status, Description: in.Description,
		Features: in.Features, Images: in.Images,
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []eventbus.Event
	// failTopic makes every publish to that topic fail.
	failTopic string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, evt eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if topic == p.failTopic {
		return errors.New("broker rejected message")
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() {}

type testFile struct {
	name        string
	contentType string
	data        []byte
}

// fileHeaders builds real multipart file headers for the given files.
func fileHeaders(t *testing.T, files ...testFile) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="images"; filename="`+f.name+`"`)
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images"]
}
