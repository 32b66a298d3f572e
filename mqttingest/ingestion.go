package mqttingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ecotracker/entities"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// Ingester is the reading pipeline shared with the HTTP endpoint.
type Ingester interface {
	Ingest(ctx context.Context, mac string, raw []byte) (*entities.SensorReading, []entities.Alert, error)
}

type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	// OnConnect runs fn after every (re)connect to the broker.
	OnConnect(fn func())
}

// Service feeds readings published on the broker into the pipeline. The
// device MAC address is taken from the single-level wildcard of the topic.
type Service struct {
	sub      Subscriber
	pipeline Ingester
	topic    string
	timeout  time.Duration
	log      *logrus.Entry
}

func NewService(sub Subscriber, pipeline Ingester, topic string, log *logrus.Entry) *Service {
	return &Service{sub: sub, pipeline: pipeline, topic: topic, timeout: 10 * time.Second, log: log}
}

// Start subscribes to the topic on every connection to the broker.
func (s *Service) Start() error {
	if !strings.Contains(s.topic, "+") {
		return fmt.Errorf("topic %q has no '+' segment for the device MAC address", s.topic)
	}
	s.sub.OnConnect(s.subscribe)
	return nil
}

func (s *Service) subscribe() {
	s.log.Infof("subscribing to %s", s.topic)
	if err := s.sub.Subscribe(s.topic, 1, s.handle); err != nil {
		s.log.Errorf("subscribe %s: %s", s.topic, err)
	}
}

func (s *Service) handle(_ mqtt.Client, msg mqtt.Message) {
	mac, err := MACFromTopic(s.topic, msg.Topic())
	if err != nil {
		s.log.Warnf("ignoring message: %s", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	reading, alerts, err := s.pipeline.Ingest(ctx, mac, msg.Payload())
	if err != nil {
		s.log.Warnf("rejected reading from %s: %s", mac, err)
		return
	}
	s.log.Debugf("stored reading %s from %s with %d alerts", reading.ID, mac, len(alerts))
}

// MACFromTopic returns the topic level matched by the first '+' of pattern.
func MACFromTopic(pattern, topic string) (string, error) {
	want := strings.Split(pattern, "/")
	got := strings.Split(topic, "/")
	if len(want) != len(got) {
		return "", fmt.Errorf("topic %q does not match %q", topic, pattern)
	}

	mac := ""
	for i, level := range want {
		switch {
		case level == "+":
			if mac == "" {
				mac = got[i]
			}
		case level != got[i]:
			return "", fmt.Errorf("topic %q does not match %q", topic, pattern)
		}
	}
	if mac == "" {
		return "", fmt.Errorf("topic %q carries no device address", topic)
	}
	return mac, nil
}
