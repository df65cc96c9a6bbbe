package pipeline

import (
	"errors"
	"testing"

	"github.com/shaiso/skyfetch/internal/domain"
)

func TestParse_FullPipeline(t *testing.T) {
	specs, err := Parse("fetch(site=eih) -> convert(to=json) -> save(out=/tmp/x.json)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(specs) != 3 {
		t.Fatalf("expected 3 specs, got %d", len(specs))
	}

	if specs[0].Kind != domain.KindFetch {
		t.Errorf("expected fetch, got %s", specs[0].Kind)
	}
	if specs[0].Param("site", "") != "eih" {
		t.Errorf("expected site=eih, got %q", specs[0].Param("site", ""))
	}
	if specs[1].Param("to", "") != "json" {
		t.Errorf("expected to=json, got %q", specs[1].Param("to", ""))
	}
	if specs[2].Param("out", "") != "/tmp/x.json" {
		t.Errorf("expected out=/tmp/x.json, got %q", specs[2].Param("out", ""))
	}
}

func TestParse_NoParams(t *testing.T) {
	for _, text := range []string{"nothing", "nothing()"} {
		specs, err := Parse(text)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", text, err)
		}
		if len(specs) != 1 || specs[0].Kind != domain.KindNothing {
			t.Errorf("%q: expected single nothing spec, got %+v", text, specs)
		}
		if specs[0].Params != nil {
			t.Errorf("%q: expected nil params, got %v", text, specs[0].Params)
		}
	}
}

func TestParse_QuotedValue(t *testing.T) {
	specs, err := Parse(`read(path="/data/a,b.csv") -> save(out="/tmp/x -> y.json")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := specs[0].Param("path", ""); got != "/data/a,b.csv" {
		t.Errorf("expected quoted comma preserved, got %q", got)
	}
	if got := specs[1].Param("out", ""); got != "/tmp/x -> y.json" {
		t.Errorf("expected quoted arrow preserved, got %q", got)
	}
}

func TestParse_MultiParam(t *testing.T) {
	specs, err := Parse("read(path=/tmp/in.csv, format=csv) -> save(out=/tmp/out.csv)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := specs[0].Param("format", ""); got != "csv" {
		t.Errorf("expected format=csv, got %q", got)
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"empty", "   "},
		{"missing paren", "fetch(site=eih -> save(out=/tmp/x)"},
		{"bad name", "Fetch(site=eih) -> save(out=/x)"},
		{"bare param", "fetch(eih) -> save(out=/x)"},
		{"empty segment", "fetch(site=eih) -> -> save(out=/x)"},
		{"duplicate param", "fetch(site=a, site=b) -> save(out=/x)"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.text)
			if err == nil {
				t.Fatalf("expected error for %q", tc.text)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestParse_DoesNotCheckKinds(t *testing.T) {
	// Неизвестный вид — забота ValidateTopology, не парсера.
	specs, err := Parse("frobnicate(x=1)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if specs[0].Kind != domain.Kind("frobnicate") {
		t.Errorf("expected kind passed through, got %s", specs[0].Kind)
	}
}
