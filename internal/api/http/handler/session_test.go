package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chautara/identity/internal/api/http/httpctx"
	"github.com/chautara/identity/internal/model"
	"github.com/chautara/identity/internal/repository/memory"
	"github.com/chautara/identity/internal/testutil"
)

func setAccountDocument(t *testing.T, store *memory.Store, identityID uuid.UUID, data map[string]any) {
	t.Helper()
	err := store.RunTransaction(context.Background(), func(ctx context.Context, tx model.Tx) error {
		return tx.Set(ctx, model.CollectionUsers, identityID.String(), data)
	})
	require.NoError(t, err)
}

func TestSession_State(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		accountData map[string]any
		wantState   string
		wantSurface string
	}{
		{
			name:        "no account document",
			accountData: nil,
			wantState:   "signed_in_no_username",
			wantSurface: "username_prompt",
		},
		{
			name:        "account without username",
			accountData: map[string]any{model.FieldEmail: "a@x.com"},
			wantState:   "signed_in_no_username",
			wantSurface: "username_prompt",
		},
		{
			name:        "account with username",
			accountData: map[string]any{model.FieldUsername: "cool.user"},
			wantState:   "signed_in_ready",
			wantSurface: "main",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			identityID := uuid.New()
			store := memory.New(3)
			if tt.accountData != nil {
				setAccountDocument(t, store, identityID, tt.accountData)
			}

			cm := httpctx.NewManager()
			h := NewSession(store, &fakeBus{}, cm, testutil.MakeNoopLogger())

			rec := httptest.NewRecorder()
			h.State(rec, authedRequest(cm, http.MethodGet, "/api/session", nil, identityID))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t,
				`{"state":"`+tt.wantState+`","surface":"`+tt.wantSurface+`"}`,
				rec.Body.String())
		})
	}
}

func TestSession_State_NotAuthenticated(t *testing.T) {
	t.Parallel()

	h := NewSession(memory.New(3), &fakeBus{}, httpctx.NewManager(), testutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()
	h.State(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSession_Stream(t *testing.T) {
	t.Parallel()

	identityID := uuid.New()
	store := memory.New(3)
	setAccountDocument(t, store, identityID, map[string]any{model.FieldEmail: "a@x.com"})

	bus := &fakeBus{}
	cm := httpctx.NewManager()
	h := NewSession(store, bus, cm, testutil.MakeNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/session/stream", nil)
	req = req.WithContext(cm.SetIdentityIDToContext(ctx, identityID))

	pr, pw := io.Pipe()
	rec := &streamRecorder{header: http.Header{}, body: pw}

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Stream(rec, req)
		pw.Close()
	}()

	buf := make([]byte, 1024)
	n, err := pr.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), `"state":"signed_in_no_username"`)

	// Claim lands elsewhere; the bus notification must move the stream to
	// ready.
	setAccountDocument(t, store, identityID, map[string]any{model.FieldUsername: "cool.user"})
	bus.Publish(model.SessionEvent{IdentityID: identityID, Identity: &model.Identity{ID: identityID}})

	n, err = pr.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), `"state":"signed_in_ready"`)

	// Events for other identities never reach this stream.
	bus.Publish(model.SessionEvent{IdentityID: uuid.New(), Identity: nil})

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not stop on context cancel")
	}
	assert.Equal(t, "text/event-stream", rec.header.Get("Content-Type"))
}

// streamRecorder is a flushable writer backed by a pipe, so the test can
// read server-sent events as they are written.
type streamRecorder struct {
	header http.Header
	body   *io.PipeWriter
	status int
}

func (s *streamRecorder) Header() http.Header { return s.header }

func (s *streamRecorder) WriteHeader(code int) { s.status = code }

func (s *streamRecorder) Write(b []byte) (int, error) { return s.body.Write(b) }

func (s *streamRecorder) Flush() {}
