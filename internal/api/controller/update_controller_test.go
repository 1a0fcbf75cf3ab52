package controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graceauto/catalogue/internal/repository"
)

type fakeBackupper struct {
	saveErr   error
	backupErr error
	saved     *repository.Document
	backups   int
}

func (f *fakeBackupper) Save(_ context.Context, doc *repository.Document) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = doc
	return nil
}

func (f *fakeBackupper) Backup(_ context.Context) error {
	if f.backupErr != nil {
		return f.backupErr
	}
	f.backups++
	return nil
}

type fakeDocumentSink struct {
	replaced   *repository.Document
	replaceErr error
}

func (f *fakeDocumentSink) Replace(doc repository.Document) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = &doc
	return nil
}

func newUpdateRouter(repo *fakeBackupper, sink *fakeDocumentSink) *gin.Engine {
	r := gin.New()
	r.Any("/api/update", NewUpdateController(repo, sink))
	return r
}

func postUpdate(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/update", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Every reply is HTTP 200 with a {success, message} body, failures included.
// That is the legacy admin client's contract and must never change.
func TestUpdateEndpoint_Contract(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		success bool
		message string
	}{
		{
			name:    "missing data",
			body:    `{"action":"save"}`,
			message: "Données manquantes",
		},
		{
			name:    "null data",
			body:    `{"action":"save","data":null}`,
			message: "Données manquantes",
		},
		{
			name:    "undecodable data",
			body:    `{"action":"save","data":"not an object"}`,
			message: "Données invalides",
		},
		{
			name:    "bad body",
			body:    `{{{`,
			message: "Requête invalide",
		},
		{
			name:    "unknown action",
			body:    `{"action":"restore"}`,
			message: "Action non reconnue",
		},
		{
			name:    "save",
			body:    `{"action":"save","data":{"vehicules":[],"residences":[],"lastUpdate":"2024-05-01T08:00:00Z"}}`,
			success: true,
			message: "Données sauvegardées",
		},
		{
			name:    "backup",
			body:    `{"action":"backup"}`,
			success: true,
			message: "Sauvegarde créée",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newUpdateRouter(&fakeBackupper{}, &fakeDocumentSink{})
			w := postUpdate(t, r, tt.body)

			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			require.NoError(t, jsonDecode(w, &resp))
			assert.Equal(t, tt.success, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestUpdateEndpoint_NonPOST(t *testing.T) {
	r := newUpdateRouter(&fakeBackupper{}, &fakeDocumentSink{})

	req := httptest.NewRequest(http.MethodGet, "/api/update", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Méthode non autorisée")
}

func TestUpdateEndpoint_SaveInstallsDocument(t *testing.T) {
	repo := &fakeBackupper{}
	sink := &fakeDocumentSink{}
	r := newUpdateRouter(repo, sink)

	w := postUpdate(t, r, `{"action":"save","data":{"vehicules":[{"id":1,"titre":"Clio"}],"residences":[]}}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.saved, "expected the document to reach the repository")
	require.NotNil(t, sink.replaced, "expected the saved document to be installed")
	require.Len(t, sink.replaced.Vehicules, 1)
	assert.Equal(t, "Clio", sink.replaced.Vehicules[0].Titre)
	// ApplyDefaults runs before the save.
	assert.NotNil(t, repo.saved.Reservations, "expected nil sequences to be normalized")
}

func TestUpdateEndpoint_SaveFailure(t *testing.T) {
	repo := &fakeBackupper{saveErr: errors.New("disk full")}
	sink := &fakeDocumentSink{}
	r := newUpdateRouter(repo, sink)

	w := postUpdate(t, r, `{"action":"save","data":{"vehicules":[],"residences":[]}}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Échec de la sauvegarde")
	assert.Nil(t, sink.replaced, "a failed save must not install the document")
}

func TestUpdateEndpoint_BackupFailure(t *testing.T) {
	repo := &fakeBackupper{backupErr: errors.New("no such file")}
	r := newUpdateRouter(repo, &fakeDocumentSink{})

	w := postUpdate(t, r, `{"action":"backup"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Échec de la sauvegarde")
}

func TestUpdateEndpoint_ReplaceFailureStillSucceeds(t *testing.T) {
	repo := &fakeBackupper{}
	sink := &fakeDocumentSink{replaceErr: errors.New("clone failed")}
	r := newUpdateRouter(repo, sink)

	w := postUpdate(t, r, `{"action":"save","data":{"vehicules":[],"residences":[]}}`)

	// The file write went through; a failed in-memory swap is only logged.
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Données sauvegardées")
}
