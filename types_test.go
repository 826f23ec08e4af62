package html2pdf

import (
	"testing"
	"time"
)

func TestOptions_PanicOnProgrammerError(t *testing.T) {
	t.Parallel()

	cases := map[string]func(){
		"zero timeout":        func() { WithTimeout(0) },
		"negative timeout":    func() { WithTimeout(-time.Second) },
		"zero probe timeout":  func() { WithProbeTimeout(0) },
		"zero max payload":    func() { WithMaxPayload(0) },
		"negative workers":    func() { WithMaxConcurrent(-1) },
		"empty engine binary": func() { WithEngineBinary("") },
	}

	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			defer func() {
				if recover() == nil {
					t.Error("expected panic, got none")
				}
			}()
			fn()
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	svc := New()
	if svc.cfg.bin != "prince" {
		t.Errorf("default bin = %q, want prince", svc.cfg.bin)
	}
	if svc.cfg.timeout != DefaultTimeout {
		t.Errorf("default timeout = %v, want %v", svc.cfg.timeout, DefaultTimeout)
	}
	if svc.cfg.probeTimeout != DefaultProbeTimeout {
		t.Errorf("default probe timeout = %v, want %v", svc.cfg.probeTimeout, DefaultProbeTimeout)
	}
	if svc.cfg.maxPayload != DefaultMaxPayload {
		t.Errorf("default max payload = %d, want %d", svc.cfg.maxPayload, int64(DefaultMaxPayload))
	}
	if svc.sem != nil {
		t.Error("default service should not have a concurrency semaphore")
	}
	if svc.MaxPayload() != DefaultMaxPayload {
		t.Errorf("MaxPayload() = %d", svc.MaxPayload())
	}
	if svc.EngineBinary() != "prince" {
		t.Errorf("EngineBinary() = %q", svc.EngineBinary())
	}
}

func TestNew_OptionsApply(t *testing.T) {
	t.Parallel()

	svc := New(
		WithEngineBinary("weasyprint"),
		WithTimeout(time.Minute),
		WithProbeTimeout(10*time.Second),
		WithMaxPayload(1<<20),
		WithScratchDir("/tmp/scratch"),
		WithMaxConcurrent(4),
	)

	if svc.cfg.bin != "weasyprint" || svc.cfg.timeout != time.Minute ||
		svc.cfg.probeTimeout != 10*time.Second || svc.cfg.maxPayload != 1<<20 ||
		svc.cfg.scratchDir != "/tmp/scratch" || svc.cfg.maxConcurrent != 4 {
		t.Errorf("options not applied: %+v", svc.cfg)
	}
	if svc.sem == nil {
		t.Error("WithMaxConcurrent(4) should create a semaphore")
	}
}
