package cfgjson

import (
	"errors"
	"testing"

	"github.com/muurk/blegw/internal/gwcfg"
)

// faultAllocator fails the failAt-th allocation (1-based) and tracks how
// many allocations are outstanding.
type faultAllocator struct {
	failAt      int
	calls       int
	outstanding int
}

func (a *faultAllocator) Alloc() error {
	a.calls++
	if a.failAt > 0 && a.calls == a.failAt {
		return ErrAllocFailed
	}
	a.outstanding++
	return nil
}

func (a *faultAllocator) Free() {
	a.outstanding--
}

func TestEncode_AllocationFaults(t *testing.T) {
	encoders := map[string]func(*Codec, *gwcfg.Config) ([]byte, error){
		"saving": (*Codec).EncodeForSaving,
		"ui": func(c *Codec, cfg *gwcfg.Config) ([]byte, error) {
			return c.EncodeForUI(cfg, StorageStatus{Ready: true, Certs: []CertFlag{{Name: "client_cert_http"}}})
		},
	}

	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			counter := &faultAllocator{}
			if _, err := encode(New(WithAllocator(counter)), customConfig()); err != nil {
				t.Fatalf("encode() error = %v", err)
			}
			if counter.outstanding != 0 {
				t.Fatalf("successful encode left %d allocations outstanding", counter.outstanding)
			}
			total := counter.calls

			for n := 1; n <= total; n++ {
				a := &faultAllocator{failAt: n}
				out, err := encode(New(WithAllocator(a)), customConfig())
				if err == nil {
					t.Errorf("allocation %d/%d failed but encode succeeded", n, total)
				}
				if out != nil {
					t.Errorf("allocation %d/%d failed but encode returned output", n, total)
				}
				if !gwcfg.IsAllocError(err) || !errors.Is(err, ErrAllocFailed) {
					t.Errorf("allocation %d/%d: error = %v, want alloc error", n, total, err)
				}
				if a.outstanding != 0 {
					t.Errorf("allocation %d/%d: %d allocations outstanding", n, total, a.outstanding)
				}
			}
		})
	}
}

func TestDecode_AllocationFaults(t *testing.T) {
	ui, err := EncodeForUI(customConfig(), StorageStatus{})
	if err != nil {
		t.Fatalf("EncodeForUI() error = %v", err)
	}
	docs := map[string][]byte{
		"saved": mustEncode(t, customConfig()),
		"ui":    ui,
		"empty": []byte("{}"),
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			counter := &faultAllocator{}
			if _, err := New(WithAllocator(counter)).Decode(testDefaults(), doc); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if counter.outstanding != 0 {
				t.Fatalf("successful decode left %d allocations outstanding", counter.outstanding)
			}
			total := counter.calls

			for n := 1; n <= total; n++ {
				a := &faultAllocator{failAt: n}
				dst := testDefaults()
				before := *dst
				err := New(WithAllocator(a)).DecodeInto(dst, doc)
				if !gwcfg.IsAllocError(err) {
					t.Errorf("allocation %d/%d: error = %v, want alloc error", n, total, err)
				}
				if *dst != before {
					t.Errorf("allocation %d/%d: destination modified", n, total)
				}
				if a.outstanding != 0 {
					t.Errorf("allocation %d/%d: %d allocations outstanding", n, total, a.outstanding)
				}
			}
		})
	}
}
