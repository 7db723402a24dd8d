package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/common"
)

func TestHTTPClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "login", r.URL.Query().Get("action"))
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "12345678" {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user":    models.Account{ID: "u2", Username: body["username"]},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	ctx := context.Background()

	acc, err := c.Login(ctx, "sarah", "12345678")
	require.NoError(t, err)
	assert.Equal(t, "u2", acc.ID)

	_, err = c.Login(ctx, "sarah", "wrong")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestHTTPClient_FetchFolderQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "messages", r.URL.Query().Get("action"))
		assert.Equal(t, "inbox", r.URL.Query().Get("type"))
		assert.Equal(t, "u2", r.URL.Query().Get("userId"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.Message{{ID: "m1", Kind: models.KindEmail}})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	msgs, err := c.FetchFolder(context.Background(), "u2", models.FolderInbox)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
}

func TestHTTPClient_TransportErrorsMapToUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "non-json reply",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html>gateway error</html>"))
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte("{not json"))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			c := NewHTTPClient(srv.URL, nil)
			err := c.Ping(context.Background())
			assert.ErrorIs(t, err, common.ErrUnavailable)
		})
	}
}

func TestHTTPClient_TimeoutMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Ping(ctx)
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestHTTPClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, common.ErrUnauthenticated},
		{http.StatusNotFound, common.ErrNotFound},
		{http.StatusBadRequest, common.ErrValidation},
		{http.StatusRequestEntityTooLarge, common.ErrValidation},
	}

	for _, tc := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		c := NewHTTPClient(srv.URL, nil)
		err := c.MarkRead(context.Background(), "m1", "u2")
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		srv.Close()
	}
}

func TestHTTPClient_EnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Current password is incorrect"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	err := c.ChangePassword(context.Background(), "u2", "old", "new")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "Current password is incorrect")
}

func TestHTTPClient_UploadMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "upload", r.URL.Query().Get("action"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "report.pdf", hdr.Filename)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"attachment": models.Attachment{
				ID: "att1", Name: hdr.Filename, Size: "12 B", Type: models.TypePDF, URL: "/files/att1",
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	att, err := c.UploadAttachment(context.Background(), "report.pdf", []byte("hello, world"))
	require.NoError(t, err)
	assert.Equal(t, "att1", att.ID)
	assert.Equal(t, models.TypePDF, att.Type)
}
