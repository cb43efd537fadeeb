package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duties/internal/backend/rest"
	"duties/internal/service"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...rest.Option) *rest.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := rest.New(srv.URL+"/api", opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := rest.New("ftp://example.com")
	assert.Error(t, err)

	c, err := rest.New("")
	require.NoError(t, err)
	assert.Equal(t, rest.DefaultBaseURL, c.BaseURL())

	c, err = rest.New("http://localhost:3001/api/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3001/api", c.BaseURL())
}

func TestListLists_UnwrapsEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/lists", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(rest.RequestIDHeader))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": "l1", "name": "Groceries", "created_at": "2024-01-01T00:00:00Z"},
				{"id": "l2", "name": "Travel bag"},
			},
		})
	})

	lists, err := c.ListLists(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "Groceries", lists[0].Name)
	assert.Equal(t, 2024, lists[0].CreatedAt.Year())
	assert.Equal(t, "l2", lists[1].ID)
}

func TestListLists_EmptyDataIsEmptySlice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": nil})
	})

	lists, err := c.ListLists(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, lists)
	assert.Empty(t, lists)
}

func TestListDuties_FilterQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": "1", "name": "Buy milk", "status": "pending", "list_id": "list 1"},
			},
		})
	})

	listID := "list 1"
	duties, err := c.ListDuties(context.Background(), service.DutyFilter{ListID: &listID})
	require.NoError(t, err)
	assert.Equal(t, "list_id=list+1", gotQuery)
	require.Len(t, duties, 1)
	assert.Equal(t, service.StatusPending, duties[0].Status)
	require.NotNil(t, duties[0].ListID)
	assert.Equal(t, "list 1", *duties[0].ListID)

	_, err = c.ListDuties(context.Background(), service.DutyFilter{})
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestCreateDuty_SendsJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/duties", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Pack socks"}`, string(body))

		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"data":    map[string]any{"id": "d9", "name": "Pack socks", "status": "pending", "list_id": nil},
		})
	})

	duty, err := c.CreateDuty(context.Background(), service.CreateDutyInput{Name: "Pack socks"})
	require.NoError(t, err)
	assert.Equal(t, "d9", duty.ID)
	assert.Nil(t, duty.ListID)
}

func TestUpdateDuty_PartialBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/duties/d1", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"status":"done"}`, string(body))

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"id": "d1", "name": "Buy milk", "status": "done"},
		})
	})

	status := service.StatusDone
	duty, err := c.UpdateDuty(context.Background(), "d1", service.UpdateDutyInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, service.StatusDone, duty.Status)
}

func TestUpdateList_EscapesID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/lists/a%2Fb", r.URL.EscapedPath())
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"id": "a/b", "name": "Renamed"},
		})
	})

	list, err := c.UpdateList(context.Background(), "a/b", service.UpdateListInput{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", list.Name)
}

func TestDelete_AcceptsEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.DeleteDuty(context.Background(), "d1"))
	assert.NoError(t, c.DeleteList(context.Background(), "l1"))
}

func TestErrorEnvelope_MessageSurfacedVerbatim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":   "not_found",
			"message": "Duty with id d404 not found",
			"details": map[string]any{"id": "d404"},
		})
	})

	err := c.DeleteDuty(context.Background(), "d404")
	require.Error(t, err)
	assert.Equal(t, "Duty with id d404 not found", err.Error())

	ne, ok := service.AsNetworkError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, ne.StatusCode)
	assert.Equal(t, "not_found", ne.Code)
	assert.JSONEq(t, `{"id":"d404"}`, string(ne.Details))
	assert.True(t, ne.NotFound())
}

func TestErrorEnvelope_GenericFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := c.ListLists(context.Background())
	require.Error(t, err)
	assert.Equal(t, service.GenericErrorMessage, err.Error())

	ne, ok := service.AsNetworkError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, ne.StatusCode)
}

func TestUnsuccessfulEnvelopeIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "data": nil})
	})

	_, err := c.GetList(context.Background(), "l1")
	require.Error(t, err)
	assert.Equal(t, service.GenericErrorMessage, err.Error())
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := rest.New(url)
	require.NoError(t, err)

	_, err = c.ListLists(context.Background())
	require.Error(t, err)
	ne, ok := service.AsNetworkError(err)
	require.True(t, ok)
	assert.Equal(t, 0, ne.StatusCode)
	assert.Equal(t, service.GenericErrorMessage, ne.Message)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, rest.WithTimeout(20*time.Millisecond))
	defer close(release)

	_, err := c.ListLists(context.Background())
	require.Error(t, err)
	assert.Equal(t, "request timed out", err.Error())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOversizedResponseIsReported(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":"l1","name":"`)
		_, _ = w.Write(bytes.Repeat([]byte("x"), rest.MaxResponseSize))
		_, _ = io.WriteString(w, `"}]}`)
	})

	_, err := c.ListLists(context.Background())
	require.Error(t, err)
	assert.Equal(t, "response too large", err.Error())
	assert.ErrorIs(t, err, rest.ErrResponseTooLarge)

	ne, ok := service.AsNetworkError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, ne.StatusCode)
}
