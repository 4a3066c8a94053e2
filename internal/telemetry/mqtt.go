package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kmishmael/dieselops/internal/sim"
)

// MQTTConfig describes the broker connection and topic prefix.
type MQTTConfig struct {
	Broker   string
	Username string
	Password string
	ClientID string
	Prefix   string
}

// Message is one outgoing MQTT publication.
type Message struct {
	Topic   string
	Payload []byte
	Retain  bool
}

// Publisher queues snapshot publications onto a broker. Publishing never
// blocks the simulation tick: a full queue drops the snapshot.
type Publisher struct {
	cfg    MQTTConfig
	client mqtt.Client
	queue  chan Message
}

// NewPublisher connects to the broker and starts the sender worker. The
// worker drains the queue until ctx is cancelled.
func NewPublisher(ctx context.Context, cfg MQTTConfig) (*Publisher, error) {
	if cfg.ClientID == "" {
		cfg.ClientID = "dieselops"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "dieselops"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Printf("mqtt connection lost: %v", err)
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Printf("connected to mqtt broker at %s", cfg.Broker)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, token.Error())
	}

	p := &Publisher{
		cfg:    cfg,
		client: client,
		queue:  make(chan Message, 64),
	}
	go p.sender(ctx)
	return p, nil
}

func (p *Publisher) sender(ctx context.Context) {
	for {
		select {
		case msg := <-p.queue:
			token := p.client.Publish(msg.Topic, 0, msg.Retain, msg.Payload)
			token.Wait()
			if token.Error() != nil {
				log.Printf("publish %s: %v", msg.Topic, token.Error())
			}
		case <-ctx.Done():
			if p.client.IsConnected() {
				p.client.Disconnect(250)
			}
			return
		}
	}
}

// PublishSnapshot enqueues the full snapshot as JSON plus flat per-value
// topics for dashboard consumption.
func (p *Publisher) PublishSnapshot(snap sim.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Printf("marshal snapshot: %v", err)
		return
	}
	p.enqueue(Message{Topic: p.cfg.Prefix + "/snapshot", Payload: payload})

	values := map[string]float64{
		"power":       snap.Plant.PowerOutput,
		"temperature": snap.Plant.EngineTemperature,
		"efficiency":  snap.Plant.Efficiency,
		"fuel":        snap.Plant.FuelConsumption,
		"nox":         snap.Plant.Emissions.NOx,
	}
	for name, v := range values {
		p.enqueue(Message{
			Topic:   fmt.Sprintf("%s/plant/%s", p.cfg.Prefix, name),
			Payload: []byte(fmt.Sprintf("%.3f", v)),
			Retain:  true,
		})
	}
}

func (p *Publisher) enqueue(msg Message) {
	select {
	case p.queue <- msg:
	default:
		// Queue full; the next snapshot supersedes this one anyway.
	}
}
