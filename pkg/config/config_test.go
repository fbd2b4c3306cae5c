package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for explicit missing file")
	}

	// no explicit path: defaults apply
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Modem.TargetAddress != 5 {
		t.Fatalf("target_address = %d", cfg.Modem.TargetAddress)
	}
	if cfg.Modem.MaxEnvelopeBytes != 9000 {
		t.Fatalf("max_envelope_bytes = %d", cfg.Modem.MaxEnvelopeBytes)
	}
	want := map[string]bool{"position_request": true, "body_request": true}
	if len(cfg.Modem.RequiringAck) != 2 || !want[cfg.Modem.RequiringAck[0]] || !want[cfg.Modem.RequiringAck[1]] {
		t.Fatalf("requiring_ack = %v", cfg.Modem.RequiringAck)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modem.yaml")
	doc := `
app_name: test-node
log:
  level: debug
modem:
  target_address: 9
  requiring_ack: [nav]
general_incoming:
  - name: ctd_profile
    id: 120
    topic: /sensors/ctd
    content_type: application/json
links:
  - kind: udp
    listen: ":7450"
    local_address: 1
    peers:
      - address: 9
        endpoint: "127.0.0.1:7451"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppName != "test-node" || cfg.Modem.TargetAddress != 9 {
		t.Fatalf("config mismatch: %#v", cfg)
	}
	if len(cfg.Modem.RequiringAck) != 1 || cfg.Modem.RequiringAck[0] != "nav" {
		t.Fatalf("requiring_ack = %v", cfg.Modem.RequiringAck)
	}
	if len(cfg.GeneralIncoming) != 1 || cfg.GeneralIncoming[0].ID != 120 || cfg.GeneralIncoming[0].Topic != "/sensors/ctd" {
		t.Fatalf("general_incoming = %#v", cfg.GeneralIncoming)
	}
	if len(cfg.Links) != 1 || cfg.Links[0].Kind != "udp" || cfg.Links[0].Peers[0].Address != 9 {
		t.Fatalf("links = %#v", cfg.Links)
	}
}

func TestValidateRejectsBadBinding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modem.yaml")
	doc := `
general_outgoing:
  - name: broken
    id: 0
    topic: /x
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for id 0")
	}
}

func TestValidateRejectsBadLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modem.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for log level")
	}
}
