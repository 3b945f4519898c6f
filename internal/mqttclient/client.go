// Package mqttclient wraps the MQTT v5 wire client used to feed the
// inspection engine: subscribe management, reconnect handling, and
// conversion between the wire library's message representation and the
// engine's own mqttmsg.Message, including the v5 properties (response
// topic, correlation data, user properties) the correlation tracker needs.
package mqttclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/rs/zerolog"

	"github.com/snarg/mqtt-inspect/internal/mqttmsg"
)

// MessageHandler receives every inbound message, already converted to the
// engine's own representation.
type MessageHandler func(topic string, msg mqttmsg.Message)

// Client manages one MQTT v5 broker connection plus its active
// subscription set, re-subscribing automatically on reconnect.
type Client struct {
	cm        *autopaho.ConnectionManager
	connected atomic.Bool
	log       zerolog.Logger

	mu      sync.Mutex
	subs    map[string]struct{}
	handler MessageHandler
}

// Options configures a new Client connection.
type Options struct {
	Host          string
	Port          int
	ClientID      string
	Username      string
	Password      string
	UseTLS        bool
	KeepAlive     time.Duration
	CleanSession  bool
	SessionExpiry *uint32

	// Enhanced (AUTH packet) authentication. Empty AuthMethod disables it.
	AuthMethod string
	AuthData   []byte

	Log zerolog.Logger
}

// Connect dials the broker over MQTT v5 and starts the auto-reconnect
// loop. It blocks until the first CONNACK (or ctx expiry, or at most 30
// seconds) so callers can
// report a bad endpoint immediately instead of on first publish. It does
// not subscribe to anything — callers drive the subscription set with
// Subscribe/Unsubscribe.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	c := &Client{
		log:  opts.Log,
		subs: make(map[string]struct{}),
	}

	scheme := "mqtt"
	if opts.UseTLS {
		scheme = "mqtts"
	}
	broker, err := url.Parse(fmt.Sprintf("%s://%s:%d", scheme, opts.Host, opts.Port))
	if err != nil {
		return nil, fmt.Errorf("mqttclient: bad broker address: %w", err)
	}

	keepAlive := uint16(60)
	if opts.KeepAlive > 0 {
		keepAlive = uint16(opts.KeepAlive / time.Second)
	}

	cfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{broker},
		KeepAlive:                     keepAlive,
		CleanStartOnInitialConnection: opts.CleanSession,
		ConnectRetryDelay:             5 * time.Second,
		OnConnectionUp:                c.onConnectionUp,
		OnConnectError: func(err error) {
			c.connected.Store(false)
			c.log.Warn().Err(err).Msg("mqtt connect attempt failed, will retry")
		},
		ClientConfig: paho.ClientConfig{
			ClientID: opts.ClientID,
			OnPublishReceived: []func(paho.PublishReceived) (bool, error){
				c.onPublishReceived,
			},
			OnClientError: func(err error) {
				c.connected.Store(false)
				c.log.Warn().Err(err).Msg("mqtt connection lost, will auto-reconnect")
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				c.connected.Store(false)
				c.log.Warn().Int("reason_code", int(d.ReasonCode)).Msg("server initiated disconnect")
			},
		},
	}
	if opts.SessionExpiry != nil {
		cfg.SessionExpiryInterval = *opts.SessionExpiry
	}
	if opts.UseTLS {
		cfg.TlsCfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if opts.Username != "" {
		cfg.ConnectUsername = opts.Username
		cfg.ConnectPassword = []byte(opts.Password)
	}
	if opts.AuthMethod != "" {
		method, data := opts.AuthMethod, opts.AuthData
		cfg.ConnectPacketBuilder = func(cp *paho.Connect, _ *url.URL) *paho.Connect {
			if cp.Properties == nil {
				cp.Properties = &paho.ConnectProperties{}
			}
			cp.Properties.AuthMethod = method
			cp.Properties.AuthData = data
			return cp
		}
	}

	cm, err := autopaho.NewConnection(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("mqttclient: connect: %w", err)
	}
	c.cm = cm

	awaitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := cm.AwaitConnection(awaitCtx); err != nil {
		_ = cm.Disconnect(context.Background())
		return nil, fmt.Errorf("mqttclient: awaiting first connack: %w", err)
	}
	return c, nil
}

// SetMessageHandler installs the callback invoked for every inbound
// message. Must be called before Subscribe to avoid a startup race.
func (c *Client) SetMessageHandler(h MessageHandler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// Subscribe adds topic (QoS 0) to the active subscription set and issues
// the subscribe immediately if connected.
func (c *Client) Subscribe(ctx context.Context, topic string) error {
	c.mu.Lock()
	c.subs[topic] = struct{}{}
	c.mu.Unlock()

	if !c.connected.Load() {
		return nil
	}
	_, err := c.cm.Subscribe(ctx, &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{{Topic: topic, QoS: 0}},
	})
	return err
}

// Unsubscribe removes topic from the active subscription set.
func (c *Client) Unsubscribe(ctx context.Context, topic string) error {
	c.mu.Lock()
	delete(c.subs, topic)
	c.mu.Unlock()

	if !c.connected.Load() {
		return nil
	}
	_, err := c.cm.Unsubscribe(ctx, &paho.Unsubscribe{Topics: []string{topic}})
	return err
}

// IsSubscribed reports whether topic is currently in the active
// subscription set — the collaborator NavigationPolicy needs.
func (c *Client) IsSubscribed(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.subs[topic]
	return ok
}

// Publish sends payload to topic, honoring retain and qos. It is the
// publisher collaborator used by the deletetopic command (an empty
// retained payload clears broker-side retained state).
func (c *Client) Publish(ctx context.Context, topic string, payload []byte, retain bool, qos byte) error {
	_, err := c.cm.Publish(ctx, &paho.Publish{
		Topic:   topic,
		QoS:     qos,
		Retain:  retain,
		Payload: payload,
	})
	return err
}

func (c *Client) onConnectionUp(cm *autopaho.ConnectionManager, _ *paho.Connack) {
	c.connected.Store(true)

	c.mu.Lock()
	topics := make([]string, 0, len(c.subs))
	for t := range c.subs {
		topics = append(topics, t)
	}
	c.mu.Unlock()

	if len(topics) == 0 {
		c.log.Info().Msg("mqtt connected")
		return
	}
	c.log.Info().Strs("topics", topics).Msg("mqtt connected, resubscribing")

	subs := make([]paho.SubscribeOptions, len(topics))
	for i, t := range topics {
		subs[i] = paho.SubscribeOptions{Topic: t, QoS: 0}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := cm.Subscribe(ctx, &paho.Subscribe{Subscriptions: subs}); err != nil {
		c.log.Error().Err(err).Msg("mqtt resubscribe failed")
	}
}

func (c *Client) onPublishReceived(pr paho.PublishReceived) (bool, error) {
	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()

	if handler == nil {
		c.log.Debug().Str("topic", pr.Packet.Topic).Int("payload_size", len(pr.Packet.Payload)).Msg("mqtt message received before handler installed")
		return true, nil
	}
	handler(pr.Packet.Topic, fromWire(pr.Packet))
	return true, nil
}

// IsConnected reports the current connection state.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Close disconnects cleanly. Safe to call on an already-closed client.
func (c *Client) Close() {
	c.log.Info().Msg("disconnecting mqtt client")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.cm.Disconnect(ctx); err != nil {
		c.log.Debug().Err(err).Msg("mqtt disconnect")
	}
	c.connected.Store(false)
}

// fromWire converts a wire-level v5 publish, including its properties,
// into the engine's own Message shape.
func fromWire(p *paho.Publish) mqttmsg.Message {
	m := mqttmsg.Message{
		Topic:   p.Topic,
		Payload: p.Payload,
		QoS:     mqttmsg.QoS(p.QoS),
		Retain:  p.Retain,
	}

	props := p.Properties
	if props == nil {
		return m
	}
	m.ResponseTopic = props.ResponseTopic
	m.CorrelationData = props.CorrelationData
	m.ContentType = props.ContentType
	if props.MessageExpiry != nil {
		v := *props.MessageExpiry
		m.MessageExpiryInterval = &v
	}
	if props.PayloadFormat != nil {
		pf := mqttmsg.PayloadFormatBinary
		if *props.PayloadFormat == 1 {
			pf = mqttmsg.PayloadFormatUTF8
		}
		m.PayloadFormatIndicator = &pf
	}
	for _, u := range props.User {
		m = m.WithUserProperty(u.Key, u.Value)
	}
	return m
}
