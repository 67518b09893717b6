package storage

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/muurk/blegw/internal/gwcfg"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "blegw.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestNamespace_ReadWriteDelete(t *testing.T) {
	ns := newTestStore(t).Namespace(NamespaceGWCfg)

	if ns.Check(KeyConfig) {
		t.Error("Check() on empty store = true, want false")
	}
	if _, err := ns.Read(KeyConfig); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read() on empty store error = %v, want ErrNotFound", err)
	}

	want := []byte(`{"use_eth": true}`)
	if err := ns.Write(KeyConfig, want); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !ns.Check(KeyConfig) {
		t.Error("Check() after Write = false, want true")
	}
	got, err := ns.Read(KeyConfig)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Read() = %s, want %s", got, want)
	}

	if err := ns.Delete(KeyConfig); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if ns.Check(KeyConfig) {
		t.Error("Check() after Delete = true, want false")
	}
	if err := ns.Delete(KeyConfig); err != nil {
		t.Errorf("Delete() of missing key error = %v, want nil", err)
	}
}

func TestNamespace_WriteRejectsBadKeys(t *testing.T) {
	ns := newTestStore(t).Namespace(NamespaceGWCfg)
	for _, key := range []string{"", strings.Repeat("k", MaxKeyLen+1)} {
		if err := ns.Write(key, []byte("x")); !gwcfg.IsValidationError(err) {
			t.Errorf("Write(%q) error = %v, want validation error", key, err)
		}
	}
}

func TestNamespace_Isolation(t *testing.T) {
	s := newTestStore(t)
	cfg := s.Namespace(NamespaceGWCfg)
	flags := s.Namespace(NamespaceFlags)

	if err := cfg.Write("shared", []byte("a")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if flags.Check("shared") {
		t.Error("key leaked across namespaces")
	}
	if err := flags.Erase(); err != nil {
		t.Fatalf("Erase() error = %v", err)
	}
	if !cfg.Check("shared") {
		t.Error("erasing one namespace removed keys from another")
	}
}

func TestNamespace_DeinitEraseReinit(t *testing.T) {
	tests := []struct {
		name        string
		withDefault bool
	}{
		{"keeps default profile", true},
		{"no default profile", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := newTestStore(t).Namespace(NamespaceGWCfg)
			profile := []byte(`{"mqtt_server": "factory"}`)
			if tt.withDefault {
				if err := ns.Write(KeyDefaultConfig, profile); err != nil {
					t.Fatalf("Write() error = %v", err)
				}
			}
			for _, key := range []string{KeyConfig, CertKey(ChannelMQTT, ClientCert)} {
				if err := ns.Write(key, []byte("x")); err != nil {
					t.Fatalf("Write(%s) error = %v", key, err)
				}
			}

			if err := ns.DeinitEraseReinit(); err != nil {
				t.Fatalf("DeinitEraseReinit() error = %v", err)
			}

			keys, err := ns.Keys()
			if err != nil {
				t.Fatalf("Keys() error = %v", err)
			}
			if tt.withDefault {
				if len(keys) != 1 || keys[0] != KeyDefaultConfig {
					t.Errorf("Keys() = %v, want [%s]", keys, KeyDefaultConfig)
				}
				got, _ := ns.Read(KeyDefaultConfig)
				if !bytes.Equal(got, profile) {
					t.Errorf("default profile = %s, want %s", got, profile)
				}
			} else if len(keys) != 0 {
				t.Errorf("Keys() = %v, want none", keys)
			}
			if !ns.Ready() {
				t.Error("Ready() after reinit = false, want true")
			}
		})
	}
}

func TestNamespace_Ready(t *testing.T) {
	ns := newTestStore(t).Namespace(NamespaceGWCfg)
	if ns.Ready() {
		t.Error("Ready() before Init = true, want false")
	}
	if err := ns.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !ns.Ready() {
		t.Error("Ready() after Init = false, want true")
	}
}

func TestNamespace_Status(t *testing.T) {
	ns := newTestStore(t).Namespace(NamespaceGWCfg)
	if err := ns.Write(CertKey(ChannelHTTP, ServerCert), []byte("pem")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	st := ns.Status()
	if !st.Ready {
		t.Error("Status().Ready = false, want true")
	}
	if len(st.Certs) != 12 {
		t.Fatalf("len(Status().Certs) = %d, want 12", len(st.Certs))
	}
	for _, c := range st.Certs {
		want := c.Name == "http_srv_cert"
		if c.Present != want {
			t.Errorf("cert %s present = %v, want %v", c.Name, c.Present, want)
		}
	}
}

func TestCertKeys(t *testing.T) {
	seen := make(map[string]bool)
	for _, key := range CertKeys() {
		if len(key) > MaxKeyLen {
			t.Errorf("cert key %q longer than %d", key, MaxKeyLen)
		}
		if seen[key] {
			t.Errorf("duplicate cert key %q", key)
		}
		seen[key] = true
		if !IsCertKey(key) {
			t.Errorf("IsCertKey(%q) = false", key)
		}
	}
	if IsCertKey(KeyConfig) {
		t.Error("IsCertKey(gw_cfg) = true, want false")
	}
}

func TestFlag(t *testing.T) {
	flag := newTestStore(t).ForceHotspotFlag()
	if flag.Get() {
		t.Error("Get() on fresh store = true, want false")
	}
	if err := flag.Set(); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !flag.Get() {
		t.Error("Get() after Set = false, want true")
	}
	if err := flag.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if flag.Get() {
		t.Error("Get() after Clear = true, want false")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ns := newTestStore(t).Namespace(NamespaceGWCfg)
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- ns.Write(KeyConfig, []byte("v"))
		}()
		go func() {
			defer wg.Done()
			ns.Check(KeyConfig)
			errs <- nil
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent operation error = %v", err)
		}
	}
}

func TestOpen_BadPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	s, err := Open(file)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := Open(filepath.Join(s.Path(), "nested", "db")); !gwcfg.IsStorageError(err) {
		t.Errorf("Open(under a file) error = %v, want storage error", err)
	}
}
