package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumya-corp/sammelan-registration/ptr"
	"github.com/soumya-corp/sammelan-registration/registration"
)

func TestGetRegistrations(t *testing.T) {
	t.Run("returns a page with the pass-through cursor", func(t *testing.T) {
		f := newAPIFixture()

		var gotLimit int32
		var gotCursor *string
		f.db.ListRegistrationsFunc = func(ctx context.Context, limit int32, cursor *string) (registration.ListRegistrationsResponse, error) {
			gotLimit = limit
			gotCursor = cursor
			return registration.ListRegistrationsResponse{
				Data:        []registration.Registration{storedRegistration("9876543210")},
				Cursor:      ptr.String("next-cursor"),
				HasNextPage: true,
			}, nil
		}

		rec := doRequest(t, f, http.MethodGet, "/v1/registrations?limit=25&cursor=abc", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int32(25), gotLimit)
		require.NotNil(t, gotCursor)
		assert.Equal(t, "abc", *gotCursor)

		var resp listRegistrationsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "9876543210", resp.Data[0].PhoneNumber)
		assert.True(t, resp.HasNextPage)
		require.NotNil(t, resp.Cursor)
		assert.Equal(t, "next-cursor", *resp.Cursor)
	})

	t.Run("defaults the limit to 10", func(t *testing.T) {
		f := newAPIFixture()

		var gotLimit int32
		f.db.ListRegistrationsFunc = func(ctx context.Context, limit int32, cursor *string) (registration.ListRegistrationsResponse, error) {
			gotLimit = limit
			return registration.ListRegistrationsResponse{Data: []registration.Registration{}}, nil
		}

		rec := doRequest(t, f, http.MethodGet, "/v1/registrations", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int32(10), gotLimit)
	})

	t.Run("limit out of bounds is a 400", func(t *testing.T) {
		f := newAPIFixture()

		for _, limit := range []string{"0", "51", "abc"} {
			rec := doRequest(t, f, http.MethodGet, "/v1/registrations?limit="+limit, "")

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp Error
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, LimitOutOfBounds, resp.Code)
		}
	})

	t.Run("invalid cursor is a 400", func(t *testing.T) {
		f := newAPIFixture()
		f.db.ListRegistrationsFunc = func(ctx context.Context, limit int32, cursor *string) (registration.ListRegistrationsResponse, error) {
			return registration.ListRegistrationsResponse{}, registration.NewInvalidCursorError("Invalid cursor", nil)
		}

		rec := doRequest(t, f, http.MethodGet, "/v1/registrations?cursor=garbage", "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp Error
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, InvalidCursor, resp.Code)
	})
}
