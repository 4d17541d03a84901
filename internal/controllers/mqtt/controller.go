package mqttctrl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/envelope/internal/envelope"
	"github.com/Agrid-Dev/envelope/internal/export"
	"github.com/Agrid-Dev/envelope/internal/ports"
)

type Config struct {
	// Identity
	DeviceID string

	// MQTT connection
	BrokerURL string
	ClientID  string

	// Topics
	BaseTopic string

	// Behavior
	QoS             byte
	RetainSnapshot  bool
	PublishInterval time.Duration

	Username string
	Password string
}

type Controller struct {
	svc ports.EstimatorService
	cfg Config
	log *zap.Logger

	client mqtt.Client
}

func New(svc ports.EstimatorService, cfg Config, logger *zap.Logger) (*Controller, error) {
	// ---- defaults ----

	if cfg.BrokerURL == "" {
		cfg.BrokerURL = "tcp://localhost:1883"
	}

	if cfg.DeviceID == "" {
		return nil, errors.New("mqtt: DeviceID is required")
	}
	if cfg.BaseTopic == "" {
		cfg.BaseTopic = "envelope/" + cfg.DeviceID
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "envelope-" + cfg.DeviceID
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = 1 * time.Second
	}
	if cfg.QoS > 1 {
		return nil, errors.New("mqtt: QoS must be 0 or 1")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		svc: svc,
		cfg: cfg,
		log: logger.With(zap.String("controller", "mqtt")),
	}, nil
}

func (c *Controller) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second)

	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	// Subscribe when connected/reconnected.
	opts.OnConnect = func(cl mqtt.Client) {
		topics := map[string]byte{
			c.topic("set/+"):     c.cfg.QoS,
			c.topic("calculate"): c.cfg.QoS,
		}
		token := cl.SubscribeMultiple(topics, c.onMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			c.log.Error("subscribe failed", zap.Error(err))
		}
	}

	c.client = mqtt.NewClient(opts)
	tok := c.client.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	c.log.Info("mqtt connected", zap.String("broker", c.cfg.BrokerURL), zap.String("base_topic", c.cfg.BaseTopic))

	// Publish loop: publish snapshot on interval, and only when changed.
	ticker := time.NewTicker(c.cfg.PublishInterval)
	defer ticker.Stop()

	// publish immediately once
	last := c.publishSnapshot()

	for {
		select {
		case <-ctx.Done():
			c.client.Disconnect(250)
			return ctx.Err()

		case <-ticker.C:
			if cur := c.svc.Get(); cur.ID != last {
				last = c.publishSnapshot()
			}
		}
	}
}

// publishSnapshot publishes the current snapshot and returns its ID.
func (c *Controller) publishSnapshot() string {
	s := c.svc.Get()
	doc := export.NewDocument(s.ID, s.Room, s.Params, s.Result)
	b, err := json.Marshal(doc)
	if err != nil {
		c.log.Error("encode snapshot", zap.Error(err))
		return s.ID
	}
	topic := c.topic("snapshot")
	c.watchPublish(topic, c.client.Publish(topic, c.cfg.QoS, c.cfg.RetainSnapshot, b))
	return s.ID
}

// Command payload format: {"value": ...}
type valueReq[T any] struct {
	Value *T `json:"value"`
}

// calculateReq asks for a one-off calculation; the reply goes to results/<request_id>.
type calculateReq struct {
	RequestID string          `json:"request_id"`
	Room      *export.RoomDTO `json:"room"`
	Params    json.RawMessage `json:"params"`
}

type calculateResp struct {
	RequestID string           `json:"request_id"`
	Error     string           `json:"error,omitempty"`
	Document  *export.Document `json:"document,omitempty"`
}

func (c *Controller) onMessage(_ mqtt.Client, msg mqtt.Message) {
	t := msg.Topic()
	base := strings.TrimRight(c.cfg.BaseTopic, "/") + "/"
	if !strings.HasPrefix(t, base) {
		return
	}
	rest := strings.TrimPrefix(t, base)
	payload := msg.Payload()

	if rest == "calculate" {
		c.handleCalculate(payload)
		return
	}

	// topic format: <base>/set/<field>
	field, ok := strings.CutPrefix(rest, "set/")
	if !ok {
		return
	}

	var err error
	switch field {
	case "optimize":
		var v bool
		if v, err = decodeValueStrict[bool](payload); err == nil {
			err = c.svc.SetOptimize(v)
		}

	case "room":
		var v export.RoomDTO
		if v, err = decodeValueStrict[export.RoomDTO](payload); err == nil {
			err = c.svc.SetRoom(v.Room())
		}

	default:
		var name envelope.Param
		if name, err = envelope.ParseParam(field); err != nil {
			break
		}
		var v float64
		if v, err = decodeValueStrict[float64](payload); err == nil {
			err = c.svc.SetParam(name, v)
		}
	}
	if err != nil {
		c.log.Warn("command rejected", zap.String("topic", t), zap.Error(err))
	}
}

func (c *Controller) handleCalculate(payload []byte) {
	var req calculateReq
	if err := json.Unmarshal(payload, &req); err != nil {
		c.log.Warn("invalid calculate request", zap.Error(err))
		return
	}
	if !validRequestID(req.RequestID) {
		id := uuid.NewString()
		if req.RequestID != "" {
			c.log.Warn("request id not usable in a topic, replaced",
				zap.String("request_id", req.RequestID), zap.String("replacement", id))
		}
		req.RequestID = id
	}

	resp := calculateResp{RequestID: req.RequestID}
	if doc, err := c.calculate(req); err != nil {
		resp.Error = err.Error()
	} else {
		resp.Document = &doc
	}

	b, err := json.Marshal(resp)
	if err != nil {
		c.log.Error("encode calculate response", zap.Error(err))
		return
	}
	topic := c.topic("results/" + req.RequestID)
	c.watchPublish(topic, c.client.Publish(topic, c.cfg.QoS, false, b))
}

// validRequestID reports whether id can be used as a single topic level.
func validRequestID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "/+#\x00")
}

// watchPublish logs a failed publish once its token completes. It does not
// block, so it is safe to call from a message handler.
func (c *Controller) watchPublish(topic string, tok mqtt.Token) {
	go func() {
		<-tok.Done()
		if err := tok.Error(); err != nil {
			c.log.Error("publish failed", zap.String("topic", topic), zap.Error(err))
		}
	}()
}

func (c *Controller) calculate(req calculateReq) (export.Document, error) {
	if req.Room == nil {
		return export.Document{}, errors.New("missing field 'room'")
	}
	params := envelope.DefaultParams()
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return export.Document{}, fmt.Errorf("invalid params: %w", err)
		}
	}
	room := req.Room.Room()
	res, err := c.svc.Evaluate(room, params)
	if err != nil {
		return export.Document{}, err
	}
	return export.NewDocument(req.RequestID, room, params, res), nil
}

func (c *Controller) topic(suffix string) string {
	return strings.TrimRight(c.cfg.BaseTopic, "/") + "/" + suffix
}

func decodeValueStrict[T any](b []byte) (T, error) {
	var zero T
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var req valueReq[T]
	if err := dec.Decode(&req); err != nil {
		return zero, err
	}
	if req.Value == nil {
		return zero, errors.New("missing field 'value'")
	}
	return *req.Value, nil
}
