package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	MessageSubscribe   = "subscribe"
	MessageUnsubscribe = "unsubscribe"
	MessageSensorData  = "sensorData"
	MessageError       = "error"
)

// Message is the envelope exchanged with dashboard clients.
type Message struct {
	Type     string      `json:"type"`
	DeviceID string      `json:"deviceId,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// SnapshotFunc returns the last known payload for a device, if any. It is
// pushed to a client right after it subscribes.
type SnapshotFunc func(deviceID string) (interface{}, bool)

// Hub routes device updates to the clients subscribed to that device.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]map[string]struct{} // client -> subscribed deviceIDs
	devices map[string]map[*Client]struct{} // deviceID -> subscribers
	closed  bool

	snapshot SnapshotFunc
	log      *logrus.Entry
}

func NewHub(log *logrus.Entry, snapshot SnapshotFunc) *Hub {
	return &Hub{
		clients:  make(map[*Client]map[string]struct{}),
		devices:  make(map[string]map[*Client]struct{}),
		snapshot: snapshot,
		log:      log,
	}
}

// Register adds c to the hub. A closed hub closes c immediately.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(c.Send)
		return
	}
	h.clients[c] = make(map[string]struct{})
}

// Unregister drops every subscription of c and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	subs, ok := h.clients[c]
	if !ok {
		return
	}
	for deviceID := range subs {
		h.dropSubscriberLocked(deviceID, c)
	}
	delete(h.clients, c)
	close(c.Send)
}

func (h *Hub) dropSubscriberLocked(deviceID string, c *Client) {
	set := h.devices[deviceID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.devices, deviceID)
	}
}

func (h *Hub) Subscribe(c *Client, deviceID string) {
	h.mu.Lock()
	subs, ok := h.clients[c]
	if !ok {
		h.mu.Unlock()
		return
	}
	subs[deviceID] = struct{}{}
	set, ok := h.devices[deviceID]
	if !ok {
		set = make(map[*Client]struct{})
		h.devices[deviceID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	if h.snapshot == nil {
		return
	}
	if data, ok := h.snapshot(deviceID); ok {
		h.sendTo(c, Message{Type: MessageSensorData, DeviceID: deviceID, Data: data})
	}
}

func (h *Hub) Unsubscribe(c *Client, deviceID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.clients[c]
	if !ok {
		return
	}
	delete(subs, deviceID)
	h.dropSubscriberLocked(deviceID, c)
}

// Publish sends a sensorData message to every subscriber of deviceID. It
// never blocks: a subscriber whose buffer is full misses this message.
func (h *Hub) Publish(deviceID string, data interface{}) {
	payload, err := json.Marshal(Message{Type: MessageSensorData, DeviceID: deviceID, Data: data})
	if err != nil {
		h.log.Errorf("could not encode update for device %s: %s", deviceID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.devices[deviceID] {
		if !c.offer(payload) {
			h.log.Warnf("dropping update for device %s: client %s is not keeping up", deviceID, c.id)
		}
	}
}

// HandleMessage applies one client control message.
func (h *Hub) HandleMessage(c *Client, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendTo(c, Message{Type: MessageError, Error: "malformed message"})
		return
	}

	switch msg.Type {
	case MessageSubscribe:
		if msg.DeviceID == "" {
			h.sendTo(c, Message{Type: MessageError, Error: "deviceId is required"})
			return
		}
		h.Subscribe(c, msg.DeviceID)
		h.log.Debugf("client %s subscribed to %s", c.id, msg.DeviceID)
	case MessageUnsubscribe:
		h.Unsubscribe(c, msg.DeviceID)
	default:
		h.sendTo(c, Message{Type: MessageError, Error: "unknown message type " + msg.Type})
	}
}

func (h *Hub) sendTo(c *Client, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorf("could not encode message: %s", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; ok {
		c.offer(payload)
	}
}

// Close disconnects every client. Later registrations are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
	h.closed = true
}

func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]interface{}{
		"clients": len(h.clients),
		"devices": len(h.devices),
	}
}
