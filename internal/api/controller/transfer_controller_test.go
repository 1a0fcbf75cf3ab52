package controller

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graceauto/catalogue/internal/editor"
	"github.com/graceauto/catalogue/internal/repository"
)

type fakeTransferEditor struct {
	exportDoc repository.Document
	exportErr error
	importErr error
	imported  []byte
	status    editor.PersistStatus
	pending   bool
	manual    bool
}

func (f *fakeTransferEditor) Export(_ context.Context) (repository.Document, error) {
	if f.exportErr != nil {
		return repository.Document{}, f.exportErr
	}
	return f.exportDoc, nil
}

func (f *fakeTransferEditor) Import(_ context.Context, raw []byte) (editor.PersistStatus, error) {
	if f.importErr != nil {
		return "", f.importErr
	}
	f.imported = raw
	return f.status, nil
}

func (f *fakeTransferEditor) Pending() (repository.Document, bool) {
	return repository.Document{}, f.pending
}

func (f *fakeTransferEditor) ManualMode() bool {
	return f.manual
}

func newTransferRouter(ed TransferEditor) *gin.Engine {
	tc := NewTransferController(ed)
	r := gin.New()
	api := r.Group("/api")
	api.GET("/export", tc.Export)
	api.POST("/import", tc.Import)
	api.GET("/sync", tc.SyncStatus)
	return r
}

func TestTransfer_Export(t *testing.T) {
	fake := &fakeTransferEditor{exportDoc: catalogFixture()}
	r := newTransferRouter(fake)

	w := get(r, "/api/export")

	require.Equal(t, http.StatusOK, w.Code)
	date := time.Now().UTC().Format("2006-01-02")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "donnees-"+date+".json")

	var doc repository.Document
	require.NoError(t, jsonDecode(w, &doc))
	assert.Len(t, doc.Vehicules, 2)
}

func TestTransfer_Export_Failure(t *testing.T) {
	r := newTransferRouter(&fakeTransferEditor{exportErr: assert.AnError})

	assert.Equal(t, http.StatusInternalServerError, get(r, "/api/export").Code)
}

func TestTransfer_Import(t *testing.T) {
	fake := &fakeTransferEditor{status: editor.StatusSaved}
	r := newTransferRouter(fake)

	body := `{"vehicules":[],"residences":[]}`
	w := doJSON(r, http.MethodPost, "/api/import", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, string(fake.imported))
	assert.Contains(t, w.Body.String(), string(editor.StatusSaved))
}

func TestTransfer_Import_Invalid(t *testing.T) {
	r := newTransferRouter(&fakeTransferEditor{importErr: errdefs.ErrInvalidArgument})

	w := doJSON(r, http.MethodPost, "/api/import", `{"residences":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransfer_SyncStatus(t *testing.T) {
	tests := []struct {
		name    string
		manual  bool
		pending bool
	}{
		{name: "normal mode", manual: false, pending: false},
		{name: "manual mode idle", manual: true, pending: false},
		{name: "manual mode pending", manual: true, pending: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTransferRouter(&fakeTransferEditor{manual: tt.manual, pending: tt.pending})

			w := get(r, "/api/sync")

			require.Equal(t, http.StatusOK, w.Code)
			var resp struct {
				ManualMode  bool `json:"manualMode"`
				PendingSync bool `json:"pendingSync"`
			}
			require.NoError(t, jsonDecode(w, &resp))
			assert.Equal(t, tt.manual, resp.ManualMode)
			assert.Equal(t, tt.pending, resp.PendingSync)
		})
	}
}
