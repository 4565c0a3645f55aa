package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpeters/draftwire/go/internal/draft/claim"
)

func TestSessionIDFromPath(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name   string
		path   string
		suffix string
		wantOK bool
	}{
		{"claims path", "/api/sessions/" + id.String() + "/claims", "/claims", true},
		{"sweep path", "/api/sessions/" + id.String() + "/sweep", "/sweep", true},
		{"state path", "/api/sessions/" + id.String() + "/state", "/state", true},
		{"bad uuid", "/api/sessions/not-a-uuid/claims", "/claims", false},
		{"missing id", "/api/sessions//claims", "/claims", false},
		{"wrong prefix", "/api/drafts/" + id.String() + "/claims", "/claims", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			got, ok := sessionIDFromPath(rec, tt.path, tt.suffix)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, id, got)
			} else {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestClaimErrorHTTPMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"not your turn", claim.ErrNotYourTurn, http.StatusConflict, "NotYourTurn"},
		{"already claimed", claim.ErrAlreadyClaimed, http.StatusConflict, "AlreadyClaimed"},
		{"slot filled", claim.ErrSlotAlreadyFilled, http.StatusConflict, "SlotAlreadyFilled"},
		{"roster complete", claim.ErrRosterComplete, http.StatusConflict, "RosterComplete"},
		{"not active", claim.ErrSessionNotActive, http.StatusUnprocessableEntity, "SessionNotActive"},
		{"participant missing", claim.ErrParticipantNotFound, http.StatusNotFound, "ParticipantNotFound"},
		{"entry missing", claim.ErrCatalogEntryNotFound, http.StatusNotFound, "CatalogEntryNotFound"},
	}

	h := &ClaimHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.writeClaimError(rec, uuid.New(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp submitClaimResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.False(t, resp.OK)
			assert.Equal(t, tt.wantKind, resp.Error)
		})
	}
}

func TestHandleSubmitClaimRejectsBadInput(t *testing.T) {
	h := &ClaimHandler{}
	sessionID := uuid.New()

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+sessionID.String()+"/claims", nil)
		h.HandleSubmitClaim(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("missing participant", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := `{"catalog_entry_id":"` + uuid.New().String() + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+sessionID.String()+"/claims",
			strings.NewReader(body))
		h.HandleSubmitClaim(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+sessionID.String()+"/claims",
			strings.NewReader("{nope"))
		h.HandleSubmitClaim(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestConnectionManagerBroadcast(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	sessionID := uuid.New()
	otherSession := uuid.New()

	conn := &Connection{
		ID:        uuid.New().String(),
		UserID:    "u1",
		SessionID: sessionID,
		Send:      make(chan []byte, 4),
		Manager:   cm,
	}
	bystander := &Connection{
		ID:        uuid.New().String(),
		UserID:    "u2",
		SessionID: otherSession,
		Send:      make(chan []byte, 4),
		Manager:   cm,
	}
	cm.registerConnection(conn)
	cm.registerConnection(bystander)

	event := &SessionEvent{
		ID:        uuid.New().String(),
		SessionID: sessionID.String(),
		Type:      EventTypeClaimCommitted,
		Timestamp: time.Now(),
	}
	cm.handleBroadcast(BroadcastMessage{SessionID: sessionID, Event: event})

	select {
	case data := <-conn.Send:
		var got SessionEvent
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, EventTypeClaimCommitted, got.Type)
		assert.Equal(t, sessionID.String(), got.SessionID)
	default:
		t.Fatal("expected event on subscribed connection")
	}

	select {
	case <-bystander.Send:
		t.Fatal("connection on another session must not receive the event")
	default:
	}

	stats := cm.GetConnectionStats()
	assert.Equal(t, 2, stats.TotalConnections)
	assert.Equal(t, 2, stats.ActiveSessions)
	assert.Equal(t, 1, stats.PerSession[sessionID.String()])
}

func TestConnectionManagerUnregister(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	sessionID := uuid.New()
	conn := &Connection{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Send:      make(chan []byte, 1),
		Manager:   cm,
	}
	cm.registerConnection(conn)
	cm.unregisterConnection(conn)

	stats := cm.GetConnectionStats()
	assert.Equal(t, 0, stats.TotalConnections)
	assert.Equal(t, 0, stats.ActiveSessions)

	// Unregistering twice must not panic or double-close
	cm.unregisterConnection(conn)
}

