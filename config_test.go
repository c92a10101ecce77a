package ilink3

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig_setDefaults(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   *Config
	}{
		{
			name:   "empty config gets all defaults",
			config: &Config{},
			want: &Config{
				RequestedKeepAliveIntervalInMs: 5000,
				RetransmitRequestMessageLimit:  1000,
				InitialSentSequenceNumber:      AutomaticSequenceNumber,
				InitialReceivedSequenceNumber:  AutomaticSequenceNumber,
			},
		},
		{
			name: "custom values are preserved",
			config: &Config{
				RequestedKeepAliveIntervalInMs: 1000,
				RetransmitRequestMessageLimit:  50,
				InitialSentSequenceNumber:      10,
				InitialReceivedSequenceNumber:  20,
			},
			want: &Config{
				RequestedKeepAliveIntervalInMs: 1000,
				RetransmitRequestMessageLimit:  50,
				InitialSentSequenceNumber:      10,
				InitialReceivedSequenceNumber:  20,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.setDefaults()

			if tt.config.RequestedKeepAliveIntervalInMs != tt.want.RequestedKeepAliveIntervalInMs {
				t.Errorf("RequestedKeepAliveIntervalInMs = %d, want %d", tt.config.RequestedKeepAliveIntervalInMs, tt.want.RequestedKeepAliveIntervalInMs)
			}
			if tt.config.RetransmitRequestMessageLimit != tt.want.RetransmitRequestMessageLimit {
				t.Errorf("RetransmitRequestMessageLimit = %d, want %d", tt.config.RetransmitRequestMessageLimit, tt.want.RetransmitRequestMessageLimit)
			}
			if tt.config.InitialSentSequenceNumber != tt.want.InitialSentSequenceNumber {
				t.Errorf("InitialSentSequenceNumber = %d, want %d", tt.config.InitialSentSequenceNumber, tt.want.InitialSentSequenceNumber)
			}
			if tt.config.InitialReceivedSequenceNumber != tt.want.InitialReceivedSequenceNumber {
				t.Errorf("InitialReceivedSequenceNumber = %d, want %d", tt.config.InitialReceivedSequenceNumber, tt.want.InitialReceivedSequenceNumber)
			}
			if tt.config.Logger == nil {
				t.Error("Logger left nil after setDefaults()")
			}
			if tt.config.Metrics == nil {
				t.Error("Metrics left nil after setDefaults()")
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	validHandler := &mockHandler{}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "missing sessionId",
			config:  &Config{FirmID: "F1", UserKey: "k", Handler: validHandler},
			wantErr: true,
		},
		{
			name:    "missing firmId",
			config:  &Config{SessionID: "S1", UserKey: "k", Handler: validHandler},
			wantErr: true,
		},
		{
			name:    "missing userKey",
			config:  &Config{SessionID: "S1", FirmID: "F1", Handler: validHandler},
			wantErr: true,
		},
		{
			name:    "missing handler",
			config:  &Config{SessionID: "S1", FirmID: "F1", UserKey: "k"},
			wantErr: true,
		},
		{
			name: "negative keepalive interval",
			config: &Config{
				SessionID: "S1", FirmID: "F1", UserKey: "k", Handler: validHandler,
				RequestedKeepAliveIntervalInMs: -1, RetransmitRequestMessageLimit: 10,
			},
			wantErr: true,
		},
		{
			name: "zero retransmit limit",
			config: &Config{
				SessionID: "S1", FirmID: "F1", UserKey: "k", Handler: validHandler,
				RetransmitRequestMessageLimit: 0,
			},
			wantErr: true,
		},
		{
			name:    "fully valid config",
			config:  NewConfig("S1", "F1", testUserKey()),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "fully valid config" {
				tt.config.Handler = validHandler
			}
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewConfig_DefaultsUUIDMismatchToTerminate(t *testing.T) {
	cfg := NewConfig("S1", "F1", testUserKey())
	if !cfg.TerminateOnNotAppliedUUIDMismatch {
		t.Error("NewConfig() TerminateOnNotAppliedUUIDMismatch = false, want true")
	}
}

func TestLoadConfigFile_ParsesYAMLAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	yamlBody := "sessionId: S1\n" +
		"firmId: F1\n" +
		"userKey: " + testUserKey() + "\n" +
		"requestedKeepAliveIntervalInMs: 2000\n" +
		"reEstablishLastSession: true\n" +
		"terminateOnNotAppliedUuidMismatch: false\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg.SessionID != "S1" || cfg.FirmID != "F1" {
		t.Errorf("cfg = %+v, want SessionID=S1 FirmID=F1", cfg)
	}
	if cfg.RequestedKeepAliveIntervalInMs != 2000 {
		t.Errorf("RequestedKeepAliveIntervalInMs = %d, want 2000", cfg.RequestedKeepAliveIntervalInMs)
	}
	if !cfg.ReEstablishLastSession {
		t.Error("ReEstablishLastSession = false, want true")
	}
	if cfg.TerminateOnNotAppliedUUIDMismatch {
		t.Error("TerminateOnNotAppliedUUIDMismatch = true, want false (explicit YAML override must not be clobbered)")
	}
	if cfg.RetransmitRequestMessageLimit != 1000 {
		t.Errorf("RetransmitRequestMessageLimit = %d, want default 1000", cfg.RetransmitRequestMessageLimit)
	}
}

func TestLoadConfigFile_MissingFile(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfigFile() on a missing file: want error, got nil")
	}
}
