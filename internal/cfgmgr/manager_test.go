package cfgmgr

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/muurk/blegw/internal/gwcfg"
)

func testDefaults() *gwcfg.Config {
	return gwcfg.Defaults(gwcfg.DefaultInitParams{
		WiFiMAC:  gwcfg.MustParseMAC("AA:BB:CC:DD:EE:F1"),
		NRF52MAC: gwcfg.MustParseMAC("C8:25:2D:8E:9C:2C"),
		DeviceID: gwcfg.DeviceID{1, 2, 3, 4, 5, 6, 7, 8},
	})
}

func TestManager_NotInitialized(t *testing.T) {
	m := New(testDefaults())

	if err := m.Update(testDefaults()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Update() before Init error = %v, want ErrNotInitialized", err)
	}
	cfg, release := m.LockRO()
	release()
	if cfg != nil {
		t.Error("LockRO() before Init returned a config")
	}
	if _, err := m.Get(); !gwcfg.IsNotInitializedError(err) {
		t.Errorf("Get() before Init error = %v, want not initialized", err)
	}

	m.Init(nil)
	m.Deinit()
	if err := m.View(func(*gwcfg.Config) {}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("View() after Deinit error = %v, want ErrNotInitialized", err)
	}
}

func TestManager_InitStartsWithDefaults(t *testing.T) {
	m := New(testDefaults())
	m.Init(nil)
	defer m.Deinit()

	if !m.IsEmpty() {
		t.Error("IsEmpty() after Init = false, want true")
	}
	got, err := m.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if *got != *testDefaults() {
		t.Error("Get() after Init should equal the defaults")
	}
	if m.DeviceInfo().Hostname != "RuuviGatewayEEF1" {
		t.Errorf("DeviceInfo().Hostname = %v, want RuuviGatewayEEF1", m.DeviceInfo().Hostname)
	}
}

func TestManager_UpdateNotifies(t *testing.T) {
	var calls []*gwcfg.Config
	m := New(testDefaults())
	m.Init(func(cfg *gwcfg.Config) {
		calls = append(calls, cfg)
	})
	defer m.Deinit()

	next := testDefaults()
	next.MQTT.Use = true
	next.Device.Hostname = "spoofed"
	if err := m.Update(next); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if m.IsEmpty() {
		t.Error("IsEmpty() after Update = true, want false")
	}
	if len(calls) != 1 || calls[0] == nil || !calls[0].MQTT.Use {
		t.Fatalf("callback calls = %v, want one with the new config", calls)
	}
	if calls[0].Device.Hostname != "RuuviGatewayEEF1" {
		t.Errorf("device info taken from update: %v", calls[0].Device.Hostname)
	}

	if err := m.Update(nil); err != nil {
		t.Fatalf("Update(nil) error = %v", err)
	}
	if len(calls) != 2 || calls[1] != nil {
		t.Errorf("reset should notify with nil, got %v", calls)
	}
	if !m.IsEmpty() {
		t.Error("IsEmpty() after reset = false, want true")
	}
	got, _ := m.Get()
	if got.MQTT.Use {
		t.Error("reset did not restore the defaults")
	}
}

func TestManager_CallbackRunsOutsideLock(t *testing.T) {
	m := New(testDefaults())
	done := make(chan bool, 1)
	m.Init(func(*gwcfg.Config) {
		// Both would deadlock if the write lock were still held.
		_, err := m.Get()
		done <- err == nil && !m.IsEmpty()
	})
	defer m.Deinit()

	go func() { _ = m.Update(testDefaults()) }()
	select {
	case ok := <-done:
		if !ok {
			t.Error("callback could not read the new configuration")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback deadlocked on the manager lock")
	}
}

func TestManager_CallbacksFollowUpdateOrder(t *testing.T) {
	m := New(testDefaults())
	entered := make(chan struct{})
	resume := make(chan struct{})
	var (
		mu   sync.Mutex
		seen []string
	)
	m.Init(func(cfg *gwcfg.Config) {
		if cfg.Coordinates == "A" {
			close(entered)
			<-resume
		}
		mu.Lock()
		seen = append(seen, cfg.Coordinates)
		mu.Unlock()
	})
	defer m.Deinit()

	a := testDefaults()
	a.Coordinates = "A"
	b := testDefaults()
	b.Coordinates = "B"

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = m.Update(a)
	}()
	<-entered
	go func() {
		defer wg.Done()
		_ = m.Update(b)
	}()

	// B waits for A's callback; readers are not held up meanwhile.
	time.Sleep(50 * time.Millisecond)
	got, err := m.Get()
	if err != nil {
		t.Fatalf("Get() during callback error = %v", err)
	}
	if got.Coordinates != "A" {
		t.Errorf("Coordinates during A's callback = %q, want A", got.Coordinates)
	}

	close(resume)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != "A" || seen[1] != "B" {
		t.Errorf("callback order = %v, want [A B]", seen)
	}
	if got, _ := m.Get(); got.Coordinates != "B" {
		t.Errorf("Coordinates = %q, want B", got.Coordinates)
	}
}

func TestManager_NestedReadWithPendingUpdate(t *testing.T) {
	m := New(testDefaults())
	m.Init(nil)
	defer m.Deinit()

	next := testDefaults()
	next.Coordinates = "next"
	updated := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		outer, release := m.LockRO()
		defer release()

		go func() {
			_ = m.Update(next)
			close(updated)
		}()
		time.Sleep(50 * time.Millisecond)

		inner, releaseInner := m.LockRO()
		releaseInner()
		switch {
		case inner != outer:
			done <- errors.New("nested LockRO returned a different config")
		case outer.Coordinates != "":
			done <- errors.New("Update applied while a read lock was held")
		default:
			done <- nil
		}
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Error(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("nested LockRO blocked behind a waiting Update")
	}

	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatal("Update did not complete after the readers released")
	}
	if got, _ := m.Get(); got.Coordinates != "next" {
		t.Errorf("Coordinates = %q, want next", got.Coordinates)
	}
}

func TestManager_ReadersSeeCompletedUpdates(t *testing.T) {
	m := New(testDefaults())
	m.Init(nil)
	defer m.Deinit()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(2)
		go func(port uint16) {
			defer wg.Done()
			cfg := testDefaults()
			cfg.MQTT.Port = port
			if err := m.Update(cfg); err != nil {
				t.Errorf("Update() error = %v", err)
			}
			if err := m.View(func(*gwcfg.Config) {}); err != nil {
				t.Errorf("View() error = %v", err)
			}
		}(uint16(i))
		go func() {
			defer wg.Done()
			cfg, release := m.LockRO()
			defer release()
			if cfg.MQTT.Port == 0 || cfg.MQTT.Port > 1883 {
				t.Errorf("reader saw port %d", cfg.MQTT.Port)
			}
		}()
	}
	wg.Wait()

	cfg := testDefaults()
	cfg.MQTT.Port = 9999
	_ = m.Update(cfg)
	got, _ := m.Get()
	if got.MQTT.Port != 9999 {
		t.Errorf("reader after Update saw port %d, want 9999", got.MQTT.Port)
	}
}

func TestManager_ReleaseIsIdempotent(t *testing.T) {
	m := New(testDefaults())
	m.Init(nil)
	defer m.Deinit()

	_, release := m.LockRO()
	release()
	release()
	if err := m.Update(testDefaults()); err != nil {
		t.Errorf("Update() after double release error = %v", err)
	}
}

func TestManager_Rollback(t *testing.T) {
	m := New(testDefaults())
	m.Init(nil)
	defer m.Deinit()

	if err := m.Rollback(); !gwcfg.IsValidationError(err) {
		t.Errorf("Rollback() with no history error = %v, want validation error", err)
	}

	first := testDefaults()
	first.Coordinates = "first"
	second := testDefaults()
	second.Coordinates = "second"
	_ = m.Update(first)
	_ = m.Update(second)

	if n := len(m.History()); n != 2 {
		t.Fatalf("len(History()) = %d, want 2", n)
	}
	if err := m.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	got, _ := m.Get()
	if got.Coordinates != "first" {
		t.Errorf("Coordinates after rollback = %q, want first", got.Coordinates)
	}

	if err := m.Rollback(); err != nil {
		t.Fatalf("second Rollback() error = %v", err)
	}
	if !m.IsEmpty() {
		t.Error("rolling back to the initial state should leave the manager empty")
	}
}

func TestHistory_Bounded(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Push(Snapshot{Description: string(rune('a' + i))})
	}
	all := h.All()
	if len(all) != 3 || all[0].Description != "c" || all[2].Description != "e" {
		t.Errorf("History = %v, want c..e", all)
	}
	if all[0].Timestamp.IsZero() {
		t.Error("Push() should stamp snapshots")
	}
	h.Clear()
	if _, ok := h.Pop(); ok {
		t.Error("Pop() after Clear returned a snapshot")
	}
}
