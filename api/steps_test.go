package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumya-corp/sammelan-registration/registration"
)

func personalInfoForm(t *testing.T, fields map[string]string, photos []string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, name := range photos {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+name+`"; filename="`+name+`.jpg"`)
		header.Set("Content-Type", "image/jpeg")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestPutPersonalInfo(t *testing.T) {
	t.Run("creates a registration from the form", func(t *testing.T) {
		f := newAPIFixture()

		var created registration.Registration
		f.db.CreateRegistrationFunc = func(ctx context.Context, reg registration.Registration) error {
			created = reg
			return nil
		}
		var uploadedType string
		f.blobs.UploadFunc = func(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
			uploadedType = contentType
			return "https://blobs.test/" + key, nil
		}

		body, contentType := personalInfoForm(t, map[string]string{
			"name":  "Sunita Jain",
			"city":  "Bikaner",
			"state": "Rajasthan",
		}, []string{"photo"})

		req := httptest.NewRequest(http.MethodPut, "/v1/registrations/9876543210/personal-info", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		f.api.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/jpeg", uploadedType)
		assert.Equal(t, "Sunita Jain", created.Name)
		assert.Equal(t, registration.StepTravelInfo, created.Step)

		var resp Registration
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "9876543210", resp.PhoneNumber)
		assert.Equal(t, int64(500), resp.PaymentAmount)
		assert.Equal(t, "TRAVEL_INFO", resp.Step)
	})

	t.Run("missing fields are a 400 with per-field errors", func(t *testing.T) {
		f := newAPIFixture()

		body, contentType := personalInfoForm(t, map[string]string{
			"name": "Sunita Jain",
		}, nil)

		req := httptest.NewRequest(http.MethodPut, "/v1/registrations/9876543210/personal-info", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		f.api.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp Error
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, InputValidationError, resp.Code)
		assert.Contains(t, resp.Fields, "city")
		assert.Contains(t, resp.Fields, "state")
		assert.Contains(t, resp.Fields, "photo")
	})

	t.Run("non-multipart body is a 400", func(t *testing.T) {
		f := newAPIFixture()

		rec := doRequest(t, f, http.MethodPut, "/v1/registrations/9876543210/personal-info", `{"name": "Sunita"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPutTravelInfo(t *testing.T) {
	travelBody := `{
		"arrivalDate": "2025-07-26", "arrivalTime": "10:00", "arrivalTravelMode": "train",
		"departureDate": "2025-07-27", "departureTime": "09:00", "departureTravelMode": "bus"
	}`

	t.Run("merges into the stored registration", func(t *testing.T) {
		f := newAPIFixture()
		f.db.GetRegistrationByPhoneFunc = func(ctx context.Context, phoneNumber string) (registration.Registration, error) {
			return storedRegistration(phoneNumber), nil
		}
		var patched registration.Patch
		f.db.UpdateRegistrationFunc = func(ctx context.Context, phoneNumber string, patch registration.Patch) error {
			patched = patch
			return nil
		}

		rec := doRequest(t, f, http.MethodPut, "/v1/registrations/9876543210/travel-info", travelBody)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, patched.ArrivalDate)
		assert.Equal(t, "2025-07-26", *patched.ArrivalDate)
		assert.Nil(t, patched.Name, "personal fields stay untouched")

		var resp Registration
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "ADDITIONAL_GUESTS", resp.Step)
	})

	t.Run("departure before arrival on the same day is a 400", func(t *testing.T) {
		f := newAPIFixture()
		f.db.GetRegistrationByPhoneFunc = func(ctx context.Context, phoneNumber string) (registration.Registration, error) {
			return storedRegistration(phoneNumber), nil
		}

		rec := doRequest(t, f, http.MethodPut, "/v1/registrations/9876543210/travel-info", `{
			"arrivalDate": "2025-07-26", "arrivalTime": "10:00", "arrivalTravelMode": "train",
			"departureDate": "2025-07-26", "departureTime": "09:00", "departureTravelMode": "bus"
		}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp Error
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, InputValidationError, resp.Code)
	})

	t.Run("no registration for the phone number is a 404", func(t *testing.T) {
		f := newAPIFixture()

		rec := doRequest(t, f, http.MethodPut, "/v1/registrations/9876543210/travel-info", travelBody)

		require.Equal(t, http.StatusNotFound, rec.Code)
		var resp Error
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, NotFound, resp.Code)
	})
}

func TestPutGuests(t *testing.T) {
	t.Run("stores the guest list", func(t *testing.T) {
		f := newAPIFixture()
		f.db.GetRegistrationByPhoneFunc = func(ctx context.Context, phoneNumber string) (registration.Registration, error) {
			reg := storedRegistration(phoneNumber)
			reg.Step = registration.StepAdditionalGuests
			return reg, nil
		}
		var patched registration.Patch
		f.db.UpdateRegistrationFunc = func(ctx context.Context, phoneNumber string, patch registration.Patch) error {
			patched = patch
			return nil
		}

		rec := doRequest(t, f, http.MethodPut, "/v1/registrations/9876543210/guests",
			`{"additionalGuests": [{"name": "Aarav Jain", "relation": "son"}]}`)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, patched.Guests)
		assert.Equal(t, []registration.Guest{{Name: "Aarav Jain", Relation: "son"}}, *patched.Guests)

		var resp Registration
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "PAYMENT", resp.Step)
	})

	t.Run("guest missing a relation is a 400", func(t *testing.T) {
		f := newAPIFixture()
		f.db.GetRegistrationByPhoneFunc = func(ctx context.Context, phoneNumber string) (registration.Registration, error) {
			return storedRegistration(phoneNumber), nil
		}

		rec := doRequest(t, f, http.MethodPut, "/v1/registrations/9876543210/guests",
			`{"additionalGuests": [{"name": "Aarav Jain"}]}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
