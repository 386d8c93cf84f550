package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func TestBroadcastTableUpdate(t *testing.T) {
	utils.SilenceLogger()
	h := New()
	conn := &fakeConn{}
	h.Register(conn, "staff")

	h.BroadcastTableUpdate(models.Table{ID: 3, Capacity: 4, Status: models.TableBusy})

	require.Len(t, conn.frames, 1)
	var msg struct {
		Event string       `json:"event"`
		Data  models.Table `json:"data"`
	}
	require.NoError(t, json.Unmarshal(conn.frames[0], &msg))
	assert.Equal(t, EventTableUpdate, msg.Event)
	assert.Equal(t, uint(3), msg.Data.ID)
	assert.Equal(t, models.TableBusy, msg.Data.Status)
}

func TestBroadcastDropsBrokenClients(t *testing.T) {
	utils.SilenceLogger()
	h := New()
	var delta float64
	h.OnChange = func(d float64) { delta += d }

	good := &fakeConn{}
	bad := &fakeConn{fail: true}
	h.Register(good, "staff")
	h.Register(bad, "staff")
	assert.Equal(t, 2, h.Count())

	h.BroadcastStaffNotification("table 1 is free")

	assert.Equal(t, 1, h.Count())
	assert.True(t, bad.closed)
	assert.Len(t, good.frames, 1)
	assert.Equal(t, 1.0, delta)
}

func TestNilHubIgnoresBroadcast(t *testing.T) {
	var h *Hub
	assert.NotPanics(t, func() {
		h.BroadcastReservation(EventReservationCreated, models.Reservation{ID: 1}, nil)
	})
	assert.Equal(t, 0, h.Count())
}
