package ws

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func registered(h *Hub) *Client {
	c := NewClient(h, nil)
	h.Register(c)
	return c
}

func next(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw := <-c.Send:
		var m Message
		require.NoError(t, json.Unmarshal(raw, &m))
		return m
	default:
		t.Fatal("expected a queued message")
		return Message{}
	}
}

func subscribers(h *Hub, deviceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.devices[deviceID])
}

func TestPublishReachesOnlySubscribers(t *testing.T) {
	h := NewHub(testLogger(), nil)
	a, b := registered(h), registered(h)

	h.Subscribe(a, "dev-1")
	h.Subscribe(b, "dev-2")
	h.Publish("dev-1", map[string]int{"airQuality": 42})

	m := next(t, a)
	assert.Equal(t, MessageSensorData, m.Type)
	assert.Equal(t, "dev-1", m.DeviceID)
	assert.Equal(t, map[string]interface{}{"airQuality": float64(42)}, m.Data)
	assert.Len(t, b.Send, 0)
}

func TestClientMaySubscribeToSeveralDevices(t *testing.T) {
	h := NewHub(testLogger(), nil)
	c := registered(h)

	h.HandleMessage(c, []byte(`{"type":"subscribe","deviceId":"dev-1"}`))
	h.HandleMessage(c, []byte(`{"type":"subscribe","deviceId":"dev-2"}`))
	h.Publish("dev-1", 1)
	h.Publish("dev-2", 2)
	assert.Len(t, c.Send, 2)

	h.HandleMessage(c, []byte(`{"type":"unsubscribe","deviceId":"dev-1"}`))
	h.Publish("dev-1", 3)
	assert.Len(t, c.Send, 2)
	assert.Equal(t, 0, subscribers(h, "dev-1"))
	assert.Equal(t, 1, subscribers(h, "dev-2"))
}

func TestPublishDropsForSlowClient(t *testing.T) {
	h := NewHub(testLogger(), nil)
	slow, fast := registered(h), registered(h)
	h.Subscribe(slow, "dev")
	h.Subscribe(fast, "dev")

	for n := 0; n < sendBuffer; n++ {
		h.Publish("dev", n)
		<-fast.Send
	}
	require.Len(t, slow.Send, sendBuffer)

	// must not block even though slow's buffer is full
	h.Publish("dev", "overflow")
	assert.Len(t, slow.Send, sendBuffer)
	assert.Equal(t, "overflow", next(t, fast).Data)
	assert.Equal(t, 2, subscribers(h, "dev"))
}

func TestSubscribePushesSnapshot(t *testing.T) {
	h := NewHub(testLogger(), func(deviceID string) (interface{}, bool) {
		if deviceID == "known" {
			return "latest", true
		}
		return nil, false
	})
	c := registered(h)

	h.Subscribe(c, "unknown")
	assert.Len(t, c.Send, 0)

	h.Subscribe(c, "known")
	m := next(t, c)
	assert.Equal(t, "known", m.DeviceID)
	assert.Equal(t, "latest", m.Data)
}

func TestHandleMessageErrors(t *testing.T) {
	h := NewHub(testLogger(), nil)
	c := registered(h)

	h.HandleMessage(c, []byte(`not json`))
	assert.Equal(t, MessageError, next(t, c).Type)

	h.HandleMessage(c, []byte(`{"type":"subscribe"}`))
	assert.Equal(t, "deviceId is required", next(t, c).Error)

	h.HandleMessage(c, []byte(`{"type":"shout"}`))
	assert.Equal(t, MessageError, next(t, c).Type)
}

func TestUnregisterAndClose(t *testing.T) {
	h := NewHub(testLogger(), nil)
	a, b := registered(h), registered(h)
	h.Subscribe(a, "dev")
	h.Subscribe(b, "dev")

	h.Unregister(a)
	_, open := <-a.Send
	assert.False(t, open)
	assert.Equal(t, 1, subscribers(h, "dev"))

	// publishing after unregister must not panic on the closed channel
	h.Publish("dev", 1)
	h.Unregister(a)

	h.Close()
	<-b.Send
	_, open = <-b.Send
	assert.False(t, open)
	assert.Equal(t, 0, h.Stats()["clients"])

	late := NewClient(h, nil)
	h.Register(late)
	_, open = <-late.Send
	assert.False(t, open)
}
