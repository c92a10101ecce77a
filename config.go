package ilink3

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration a Session is created from (spec.md §6).
type Config struct {
	SessionID string `yaml:"sessionId"`
	FirmID    string `yaml:"firmId"`
	AccessKeyID string `yaml:"accessKeyId"`
	UserKey   string `yaml:"userKey"` // base64url

	TradingSystemName    string `yaml:"tradingSystemName"`
	TradingSystemVersion string `yaml:"tradingSystemVersion"`
	TradingSystemVendor  string `yaml:"tradingSystemVendor"`

	RequestedKeepAliveIntervalInMs int32 `yaml:"requestedKeepAliveIntervalInMs"`

	ReEstablishLastSession bool `yaml:"reEstablishLastSession"`

	// InitialSentSequenceNumber and InitialReceivedSequenceNumber are
	// either an explicit positive value or AutomaticSequenceNumber,
	// meaning "derive from the last-seen value" (see sequence_store.go).
	InitialSentSequenceNumber     int64 `yaml:"initialSentSequenceNumber"`
	InitialReceivedSequenceNumber int64 `yaml:"initialReceivedSequenceNumber"`

	RetransmitRequestMessageLimit int32 `yaml:"retransmitRequestMessageLimit"`

	// TerminateOnNotAppliedUUIDMismatch resolves the open question in
	// spec.md §9 around onNotApplied with a mismatched uuid. Default true
	// (terminate), per the spec's conservative recommendation.
	TerminateOnNotAppliedUUIDMismatch bool `yaml:"terminateOnNotAppliedUuidMismatch"`

	// SequenceStore optionally persists/resolves last-seen sequence
	// numbers across reconnects. Nil means an AutomaticSequenceNumber
	// setting resolves to 1; explicit values are taken literally (and
	// both start at 1 if not reEstablishing).
	SequenceStore SequenceStore `yaml:"-"`

	// Handler receives business message/session-layer callbacks.
	Handler Handler `yaml:"-"`

	// Logger receives operational tracing. Defaults to a logrus-backed
	// Logger if nil.
	Logger Logger `yaml:"-"`

	// DisconnectFunc is the owner's hook for actually dropping the
	// transport connection (spec.md §4.4 "requestDisconnect"). The core
	// never closes a socket itself; it only reports why one should close.
	DisconnectFunc func(DisconnectReason) `yaml:"-"`

	// Metrics receives session counters. Defaults to a no-op recorder;
	// NewPrometheusMetrics wires a real collector (metrics.go).
	Metrics SessionMetricsRecorder `yaml:"-"`
}

// NewConfig returns a Config with spec-mandated defaults applied,
// including the conservative choice for the onNotApplied uuid-mismatch
// open question (spec.md §9): terminate the session. Callers that build
// a Config struct literal instead of calling NewConfig get
// TerminateOnNotAppliedUUIDMismatch=false and should set it explicitly.
func NewConfig(sessionID, firmID, userKey string) *Config {
	c := &Config{
		SessionID:                         sessionID,
		FirmID:                            firmID,
		UserKey:                           userKey,
		TerminateOnNotAppliedUUIDMismatch: true,
	}
	c.setDefaults()
	return c
}

// setDefaults fills in zero-valued fields with spec-mandated defaults.
func (c *Config) setDefaults() {
	if c.RequestedKeepAliveIntervalInMs == 0 {
		c.RequestedKeepAliveIntervalInMs = 5000
	}
	if c.RetransmitRequestMessageLimit == 0 {
		c.RetransmitRequestMessageLimit = 1000
	}
	if c.InitialSentSequenceNumber == 0 {
		c.InitialSentSequenceNumber = AutomaticSequenceNumber
	}
	if c.InitialReceivedSequenceNumber == 0 {
		c.InitialReceivedSequenceNumber = AutomaticSequenceNumber
	}
	if c.Logger == nil {
		c.Logger = NewLogrusLogger(nil)
	}
	if c.Metrics == nil {
		c.Metrics = noopMetrics{}
	}
}

// Validate checks that the configuration is usable to create a session.
func (c *Config) Validate() error {
	if c.SessionID == "" {
		return fmt.Errorf("%w: sessionId is required", ErrInvalidConfig)
	}
	if c.FirmID == "" {
		return fmt.Errorf("%w: firmId is required", ErrInvalidConfig)
	}
	if c.UserKey == "" {
		return fmt.Errorf("%w: userKey is required", ErrInvalidConfig)
	}
	if c.RequestedKeepAliveIntervalInMs < 0 {
		return fmt.Errorf("%w: requestedKeepAliveIntervalInMs must be >= 0", ErrInvalidConfig)
	}
	if c.RetransmitRequestMessageLimit <= 0 {
		return fmt.Errorf("%w: retransmitRequestMessageLimit must be > 0", ErrInvalidConfig)
	}
	if c.Handler == nil {
		return fmt.Errorf("%w: handler is required", ErrInvalidConfig)
	}
	return nil
}

// LoadConfigFile loads a Config from a YAML file, the format used by a
// host gateway process to configure one or more iLink3 sessions
// alongside its other static configuration.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ilink3: read config file: %w", err)
	}
	cfg := Config{TerminateOnNotAppliedUUIDMismatch: true}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ilink3: parse config file: %w", err)
	}
	cfg.setDefaults()
	return &cfg, nil
}

// keepAliveInterval returns the keepalive interval as a
// time.Duration for timer arithmetic.
func (c *Config) keepAliveInterval() time.Duration {
	return time.Duration(c.RequestedKeepAliveIntervalInMs) * time.Millisecond
}
