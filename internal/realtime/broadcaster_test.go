package realtime_test

import (
	"testing"

	"github.com/Tyrowin/duochat/internal/mocks"
	"github.com/Tyrowin/duochat/internal/realtime"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBroadcaster_Sends_Snapshot_To_Every_Registered_Connection(t *testing.T) {
	req := require.New(t)
	registry := realtime.NewRegistry(testLog, nil)
	registry.SetListener(realtime.NewBroadcaster(testLog, registry))
	aliceConn, bobConn := newFakeHandle(), newFakeHandle()

	registry.Add("alice", aliceConn)
	registry.Add("bob", bobConn)

	want := []realtime.PresenceEntry{
		{UserID: "alice", SocketID: aliceConn.ID()},
		{UserID: "bob", SocketID: bobConn.ID()},
	}
	req.Equal(want, aliceConn.lastPresence())
	req.Equal(want, bobConn.lastPresence())
	req.Len(aliceConn.named(realtime.EventGetUsers), 2)
	req.Len(bobConn.named(realtime.EventGetUsers), 1)

	// A duplicate registration is silent
	registry.Add("alice", newFakeHandle())
	req.Len(aliceConn.named(realtime.EventGetUsers), 2)

	// Leaving is announced to who remains
	registry.Remove(aliceConn)
	req.Equal([]realtime.PresenceEntry{{UserID: "bob", SocketID: bobConn.ID()}}, bobConn.lastPresence())
}

func TestBroadcaster_Skips_Failing_Connection(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	audience := mocks.NewMockAudience(ctrl)
	full, healthy := newFakeHandle(), newFakeHandle()
	full.full = true
	audience.EXPECT().Handles().Return([]realtime.Handle{full, healthy})

	realtime.NewBroadcaster(testLog, audience).PresenceChanged([]realtime.Entry{{UserID: "bob", Handle: healthy}})

	req.Empty(full.named(realtime.EventGetUsers))
	req.Equal([]realtime.PresenceEntry{{UserID: "bob", SocketID: healthy.ID()}}, healthy.lastPresence())
}

func TestBroadcaster_Empty_Snapshot(t *testing.T) {
	req := require.New(t)
	conn := newFakeHandle()
	ctrl := gomock.NewController(t)
	audience := mocks.NewMockAudience(ctrl)
	audience.EXPECT().Handles().Return([]realtime.Handle{conn})

	realtime.NewBroadcaster(testLog, audience).PresenceChanged(nil)

	events := conn.named(realtime.EventGetUsers)
	req.Len(events, 1)
	req.NotNil(events[0].Data)
	req.Empty(events[0].Data)
}
