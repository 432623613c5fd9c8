package realtime_test

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Tyrowin/duochat/internal/mocks"
	"github.com/Tyrowin/duochat/internal/realtime"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRegistry_Add_And_Find(t *testing.T) {
	req := require.New(t)
	registry := realtime.NewRegistry(testLog, nil)
	h := newFakeHandle()

	// Given nobody is registered
	_, ok := registry.Find("alice")
	req.False(ok)

	// When alice registers
	req.True(registry.Add("alice", h))

	// Then her handle is found
	found, ok := registry.Find("alice")
	req.True(ok)
	req.Equal(h.ID(), found.ID())
	req.Equal(1, registry.Len())
}

func TestRegistry_Readd_Keeps_First_Handle_Without_Notification(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	listener := mocks.NewMockPresenceListener(ctrl)
	registry := realtime.NewRegistry(testLog, listener)
	first, second := newFakeHandle(), newFakeHandle()

	// Only the actual insertion is notified
	listener.EXPECT().PresenceChanged(gomock.Len(1)).Times(1)

	req.True(registry.Add("alice", first))
	req.False(registry.Add("alice", second))
	req.False(registry.Add("alice", first))

	found, ok := registry.Find("alice")
	req.True(ok)
	req.Equal(first.ID(), found.ID())
}

func TestRegistry_Remove(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	listener := mocks.NewMockPresenceListener(ctrl)
	registry := realtime.NewRegistry(testLog, listener)
	alice, bob, stranger := newFakeHandle(), newFakeHandle(), newFakeHandle()

	gomock.InOrder(
		listener.EXPECT().PresenceChanged(gomock.Len(1)),
		listener.EXPECT().PresenceChanged(gomock.Len(2)),
		listener.EXPECT().PresenceChanged(gomock.Len(1)),
	)

	registry.Add("alice", alice)
	registry.Add("bob", bob)

	// When an unknown handle leaves nothing happens
	req.False(registry.Remove(stranger))

	// When alice leaves only bob remains
	req.True(registry.Remove(alice))
	_, ok := registry.Find("alice")
	req.False(ok)
	_, ok = registry.Find("bob")
	req.True(ok)

	// When alice leaves twice the second one is a no-op
	req.False(registry.Remove(alice))
}

func TestRegistry_Reconnect_With_New_Handle(t *testing.T) {
	req := require.New(t)
	registry := realtime.NewRegistry(testLog, nil)
	oldHandle, newHandle := newFakeHandle(), newFakeHandle()

	registry.Add("alice", oldHandle)
	registry.Remove(oldHandle)
	req.True(registry.Add("alice", newHandle))

	found, ok := registry.Find("alice")
	req.True(ok)
	req.Equal(newHandle.ID(), found.ID())
}

func TestRegistry_Snapshot_Is_Sorted(t *testing.T) {
	req := require.New(t)
	registry := realtime.NewRegistry(testLog, nil)
	registry.Add("carol", newFakeHandle())
	registry.Add("alice", newFakeHandle())
	registry.Add("bob", newFakeHandle())

	snapshot := registry.Snapshot()
	req.Len(snapshot, 3)
	req.Equal("alice", snapshot[0].UserID)
	req.Equal("bob", snapshot[1].UserID)
	req.Equal("carol", snapshot[2].UserID)
	req.Len(registry.Handles(), 3)
}

// The registry must agree with a plain map model for any sequence of
// operations: first handle wins, removal by handle clears the user.
func TestRegistry_Random_Sequences_Match_Model(t *testing.T) {
	req := require.New(t)
	rnd := rand.New(rand.NewSource(42))
	users := []string{"u1", "u2", "u3", "u4"}
	handles := make([]*fakeHandle, 6)
	for i := range handles {
		handles[i] = newFakeHandle()
	}

	for round := 0; round < 50; round++ {
		registry := realtime.NewRegistry(testLog, nil)
		model := map[string]*fakeHandle{}

		for step := 0; step < 100; step++ {
			h := handles[rnd.Intn(len(handles))]
			if rnd.Intn(3) == 0 {
				var want bool
				for u, mh := range model {
					if mh == h {
						delete(model, u)
						want = true
					}
				}
				req.Equal(want, registry.Remove(h))
				continue
			}
			u := users[rnd.Intn(len(users))]
			_, exists := model[u]
			if !exists {
				model[u] = h
			}
			req.Equal(!exists, registry.Add(u, h))
		}

		req.Equal(len(model), registry.Len())
		for _, u := range users {
			found, ok := registry.Find(u)
			mh, want := model[u]
			req.Equal(want, ok)
			if want {
				req.Equal(mh.ID(), found.ID())
			}
		}
	}
}

func TestRegistry_Concurrent_Access(t *testing.T) {
	req := require.New(t)
	registry := realtime.NewRegistry(testLog, nil)
	const workers = 16

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			h := newFakeHandle()
			user := []string{"alice", "bob"}[i%2]
			for j := 0; j < 200; j++ {
				registry.Add(user, h)
				registry.Find(user)
				registry.Snapshot()
				registry.Remove(h)
			}
		}(i)
	}
	wg.Wait()

	req.Equal(0, registry.Len())
}

// stallingAudience holds the first broadcast until release is closed.
type stallingAudience struct {
	watcher realtime.Handle
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (a *stallingAudience) Handles() []realtime.Handle {
	if a.calls.Add(1) == 1 {
		close(a.entered)
		<-a.release
	}
	return []realtime.Handle{a.watcher}
}

func TestRegistry_Overlapping_Broadcasts_End_On_Current_State(t *testing.T) {
	req := require.New(t)
	watcher := newFakeHandle()
	audience := &stallingAudience{
		watcher: watcher,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	registry := realtime.NewRegistry(testLog, realtime.NewBroadcaster(testLog, audience))

	var wg sync.WaitGroup
	wg.Add(2)

	// Given alice's presence broadcast is stuck on its way out
	go func() {
		defer wg.Done()
		registry.Add("alice", newFakeHandle())
	}()
	<-audience.entered

	// When bob registers meanwhile
	go func() {
		defer wg.Done()
		registry.Add("bob", newFakeHandle())
	}()
	time.Sleep(50 * time.Millisecond)
	close(audience.release)
	wg.Wait()

	// Then snapshots arrive in mutation order and the last one lists both
	snapshots := watcher.named(realtime.EventGetUsers)
	req.Len(snapshots, 2)
	req.Len(snapshots[0].Data.([]realtime.PresenceEntry), 1)
	latest := watcher.lastPresence()
	req.Len(latest, registry.Len())
	req.Equal("alice", latest[0].UserID)
	req.Equal("bob", latest[1].UserID)
}
