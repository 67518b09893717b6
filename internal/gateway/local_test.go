package gateway

import (
	"strings"
	"testing"

	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/storage"
)

func TestOpenLocal_ApplyAndReopen(t *testing.T) {
	s := newTestSettings(t)

	var notified []*gwcfg.Config
	local, err := OpenLocal(s, func(cfg *gwcfg.Config) { notified = append(notified, cfg) })
	if err != nil {
		t.Fatalf("OpenLocal() error = %v", err)
	}
	if local.Configured {
		t.Error("Configured on empty store = true, want false")
	}

	cfg, err := local.Manager.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	cfg.WiFi.STA.SSID = "office"
	if err := local.Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(notified) != 1 || notified[0] == nil || notified[0].WiFi.STA.SSID != "office" {
		t.Errorf("notify calls = %v, want one with the new record", notified)
	}
	local.Close()

	again, err := OpenLocal(s, nil)
	if err != nil {
		t.Fatalf("OpenLocal() reopen error = %v", err)
	}
	defer again.Close()
	if !again.Configured {
		t.Error("Configured after Apply = false, want true")
	}
	got, _ := again.Manager.Get()
	if got.WiFi.STA.SSID != "office" {
		t.Errorf("SSID after reopen = %q, want %q", got.WiFi.STA.SSID, "office")
	}
}

func TestLocal_ApplyRejectsInvalid(t *testing.T) {
	local, err := OpenLocal(newTestSettings(t), nil)
	if err != nil {
		t.Fatalf("OpenLocal() error = %v", err)
	}
	defer local.Close()

	cfg, _ := local.Manager.Get()
	cfg.WiFi.STA.SSID = strings.Repeat("x", gwcfg.MaxSSIDLen+1)
	if err := local.Apply(cfg); err == nil {
		t.Fatal("Apply() error = nil, want validation error")
	}
	if !local.Manager.IsEmpty() {
		t.Error("rejected record replaced the defaults")
	}
}

func TestLocal_ApplyNilResets(t *testing.T) {
	local, err := OpenLocal(newTestSettings(t), nil)
	if err != nil {
		t.Fatalf("OpenLocal() error = %v", err)
	}
	defer local.Close()

	cfg, _ := local.Manager.Get()
	cfg.Coordinates = "60.1,24.9"
	if err := local.Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := local.Apply(nil); err != nil {
		t.Fatalf("Apply(nil) error = %v", err)
	}
	if local.Persist.Namespace().Check(storage.KeyConfig) {
		t.Error("reset should remove the stored record")
	}
}
