package mqttingest

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

type Options struct {
	BrokerURL string
	ClientID  string
	Log       *logrus.Entry
}

type Client struct {
	raw mqtt.Client
	log *logrus.Entry

	mu        sync.Mutex
	onConnect []func()
}

// NewClient connects to the broker, retrying in the background until it is
// reachable. The session is clean, so subscriptions must be made from
// OnConnect to survive a reconnect.
func NewClient(opts Options) (*Client, error) {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	c := &Client{log: log}

	o := mqtt.NewClientOptions()
	o.AddBroker(opts.BrokerURL)
	o.SetClientID(opts.ClientID)
	o.SetAutoReconnect(true)
	o.SetConnectRetry(true)
	o.SetConnectRetryInterval(2 * time.Second)
	o.SetOnConnectHandler(func(mqtt.Client) { c.connected() })
	o.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.log.Warnf("broker connection lost: %s", err)
	})
	o.SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
		c.log.Info("reconnecting to broker")
	})
	c.raw = mqtt.NewClient(o)

	token := c.raw.Connect()
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		return nil, token.Error()
	}
	return c, nil
}

// OnConnect registers fn to run after every successful (re)connect. If the
// client is already connected fn also runs right away.
func (c *Client) OnConnect(fn func()) {
	c.mu.Lock()
	c.onConnect = append(c.onConnect, fn)
	c.mu.Unlock()

	if c.raw.IsConnectionOpen() {
		fn()
	}
}

func (c *Client) connected() {
	c.log.Info("connected to broker")

	c.mu.Lock()
	fns := make([]func(), len(c.onConnect))
	copy(fns, c.onConnect)
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (c *Client) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	token := c.raw.Subscribe(topic, qos, handler)
	token.Wait()
	return token.Error()
}

func (c *Client) Close() {
	c.raw.Disconnect(250)
}
