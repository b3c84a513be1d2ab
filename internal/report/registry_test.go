package report

import (
	"strings"
	"testing"
	"time"

	"alert-monitor/internal/model"
)

// stubWriter records the snapshot it was asked to write.
type stubWriter struct {
	format string
	err    error
	paths  []string
}

func (s *stubWriter) Write(_ *model.SessionSnapshot, outputPath string) error {
	s.paths = append(s.paths, outputPath)
	return s.err
}

func (s *stubWriter) Format() string { return s.format }

func TestNewRegistry(t *testing.T) {
	t.Run("with nil timezone and catalog uses defaults", func(t *testing.T) {
		r := NewRegistry(nil, nil, "")

		if r == nil {
			t.Fatal("expected non-nil registry")
		}
		if len(r.writers) != 2 {
			t.Errorf("expected 2 writers, got %d", len(r.writers))
		}
		if _, ok := r.writers["excel"]; !ok {
			t.Error("expected excel writer to be registered")
		}
		if _, ok := r.writers["html"]; !ok {
			t.Error("expected html writer to be registered")
		}
	})

	t.Run("with custom timezone", func(t *testing.T) {
		tz, _ := time.LoadLocation("America/New_York")
		r := NewRegistry(tz, model.DefaultAlertTypeCatalog(), "/custom/template.html")

		if len(r.writers) != 2 {
			t.Errorf("expected 2 writers, got %d", len(r.writers))
		}
	})
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry(nil, nil, "")

	tests := []struct {
		input string
		want  string
	}{
		{"excel", "excel"},
		{"html", "html"},
		{"EXCEL", "excel"},
		{" Html ", "html"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			writer, err := r.Get(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if writer.Format() != tt.want {
				t.Errorf("expected format %q, got %q", tt.want, writer.Format())
			}
		})
	}
}

func TestRegistry_Get_Unsupported(t *testing.T) {
	r := NewRegistry(nil, nil, "")

	_, err := r.Get("pdf")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "pdf") || !strings.Contains(err.Error(), "excel, html") {
		t.Errorf("error should name the format and the supported list, got: %v", err)
	}
}

func TestRegistry_GetAll(t *testing.T) {
	r := NewRegistry(nil, nil, "")

	all := r.GetAll()
	if len(all) != 2 || all[0] != "excel" || all[1] != "html" {
		t.Errorf("expected [excel html], got %v", all)
	}
}

func TestRegistry_Has(t *testing.T) {
	r := NewRegistry(nil, nil, "")

	if !r.Has("Excel") {
		t.Error("expected Has(Excel) to be true")
	}
	if r.Has("csv") {
		t.Error("expected Has(csv) to be false")
	}
}

func TestRegistry_Register_Replaces(t *testing.T) {
	r := NewRegistry(nil, nil, "")
	stub := &stubWriter{format: "HTML"}

	r.Register(stub)

	w, err := r.Get("html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != stub {
		t.Error("expected registered writer to replace the default")
	}
	if len(r.GetAll()) != 2 {
		t.Errorf("expected 2 formats, got %v", r.GetAll())
	}
}
