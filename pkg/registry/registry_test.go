package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/mynaparrot/speech-relay/pkg/wsconn"
	"github.com/stretchr/testify/assert"
)

type nopRaw struct {
	closed bool
}

func (n *nopRaw) ReadMessage() (int, []byte, error) { select {} }
func (n *nopRaw) WriteMessage(int, []byte) error    { return nil }
func (n *nopRaw) SetWriteDeadline(time.Time) error  { return nil }
func (n *nopRaw) Close() error                      { n.closed = true; return nil }

func TestRegistry_AddGetRemove(t *testing.T) {
	r := New()
	assert.Nil(t, r.Get(RoleConsumer))
	assert.False(t, r.IsConnected(RoleConsumer))

	c := wsconn.New(&nopRaw{})
	r.Add(RoleConsumer, c)
	assert.Same(t, c, r.Get(RoleConsumer))
	assert.True(t, r.IsConnected(RoleConsumer))
	assert.Nil(t, r.Get(RoleProducer))

	r.Remove(RoleConsumer)
	assert.Nil(t, r.Get(RoleConsumer))

	// removing an absent role is fine
	r.Remove(RoleConsumer)
}

func TestRegistry_ReplaceDoesNotClose(t *testing.T) {
	r := New()
	oldRaw := &nopRaw{}
	oldConn := wsconn.New(oldRaw)
	newConn := wsconn.New(&nopRaw{})

	r.Add(RoleConsumer, oldConn)
	r.Add(RoleConsumer, newConn)

	assert.Same(t, newConn, r.Get(RoleConsumer))
	assert.False(t, oldRaw.closed)
	assert.True(t, oldConn.IsOpen())
}

func TestRegistry_IsConnectedFollowsState(t *testing.T) {
	r := New()
	c := wsconn.New(&nopRaw{})
	r.Add(RoleProducer, c)

	_ = c.Close()
	assert.False(t, r.IsConnected(RoleProducer))
	assert.NotNil(t, r.Get(RoleProducer))
}

func TestRegistry_RemoveIfKeyedByIdentity(t *testing.T) {
	r := New()
	first := wsconn.New(&nopRaw{})
	second := wsconn.New(&nopRaw{})

	r.Add(RoleConsumer, first)
	r.Add(RoleConsumer, second)

	// the first session tears down after being replaced
	assert.False(t, r.RemoveIf(RoleConsumer, first))
	assert.Same(t, second, r.Get(RoleConsumer))

	assert.True(t, r.RemoveIf(RoleConsumer, second))
	assert.Nil(t, r.Get(RoleConsumer))
	assert.False(t, r.RemoveIf(RoleConsumer, second))
}

func TestRegistry_LookupResolvesAtCallTime(t *testing.T) {
	r := New()
	lookup := r.Lookup(RoleConsumer)
	assert.Nil(t, lookup())

	c := wsconn.New(&nopRaw{})
	r.Add(RoleConsumer, c)
	assert.Same(t, c, lookup())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	conns := make([]*wsconn.Conn, 10)
	for i := range conns {
		conns[i] = wsconn.New(&nopRaw{})
	}

	var wg sync.WaitGroup
	for _, c := range conns {
		wg.Add(2)
		go func(c *wsconn.Conn) {
			defer wg.Done()
			r.Add(RoleConsumer, c)
			r.RemoveIf(RoleConsumer, c)
		}(c)
		go func() {
			defer wg.Done()
			_ = r.IsConnected(RoleConsumer)
		}()
	}
	wg.Wait()

	got := r.Get(RoleConsumer)
	if got != nil {
		assert.Contains(t, conns, got)
	}
}
