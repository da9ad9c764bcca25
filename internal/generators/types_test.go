package generators

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
)

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"hh":        KindInterface,
		".cc":       KindHost,
		"CU":        KindDevice,
		"interface": KindInterface,
		" device ":  KindDevice,
	}
	for in, want := range tests {
		got, err := ParseKind(in)
		if err != nil {
			t.Errorf("ParseKind(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseKind(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParseKind("h"); !errors.IsCode(err, errors.CodeInvalidArgument) {
		t.Errorf("Expected INVALID_ARGUMENT for unknown kind, got %v", err)
	}
}

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds([]string{"cu", "hh", "device"})
	if err != nil {
		t.Fatalf("ParseKinds failed: %v", err)
	}
	if diff := cmp.Diff([]Kind{KindInterface, KindDevice}, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}

	kinds, err = ParseKinds(nil)
	if err != nil {
		t.Fatalf("ParseKinds failed: %v", err)
	}
	if diff := cmp.Diff(AllKinds(), kinds); diff != "" {
		t.Errorf("Expected all kinds by default (-want +got):\n%s", diff)
	}
}

func TestKindYAML(t *testing.T) {
	var doc struct {
		Kinds []Kind `yaml:"kinds"`
	}
	if err := yaml.Unmarshal([]byte("kinds: [hh, device]\n"), &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if diff := cmp.Diff([]Kind{KindInterface, KindDevice}, doc.Kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}

	if err := yaml.Unmarshal([]byte("kinds: [py]\n"), &doc); err == nil {
		t.Error("Expected unknown kind to fail")
	}
}

func TestParseFlavor(t *testing.T) {
	if f, err := ParseFlavor(""); err != nil || f != FlavorInteractor {
		t.Errorf("ParseFlavor(\"\") = %s, %v", f, err)
	}
	if f, err := ParseFlavor("Demo-Loop"); err != nil || f != FlavorDemoLoop {
		t.Errorf("ParseFlavor(\"Demo-Loop\") = %s, %v", f, err)
	}
	if _, err := ParseFlavor("physics"); !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND for unknown flavor, got %v", err)
	}
}

func TestWithDefaults(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Request
	}{
		{
			name: "interactor",
			req:  Request{Class: "Rayleigh", Func: "rayleigh"},
			want: Request{
				Flavor:   FlavorInteractor,
				Basename: "RayleighInteract",
				Class:    "Rayleigh",
				Func:     "rayleigh",
				Threads:  "core_data.states.size()",
				Kinds:    AllKinds(),
			},
		},
		{
			name: "demo-loop",
			req:  Request{Flavor: FlavorDemoLoop, Class: "PreStep", Func: "pre_step"},
			want: Request{
				Flavor:   FlavorDemoLoop,
				Basename: "PreStepKernel",
				Class:    "PreStep",
				Func:     "pre_step",
				Threads:  "states.size()",
				Kinds:    AllKinds(),
			},
		},
		{
			name: "explicit values kept",
			req:  Request{Class: "Rayleigh", Func: "rayleigh", Basename: "Ray", Threads: "n", Kinds: []Kind{KindHost}},
			want: Request{
				Flavor:   FlavorInteractor,
				Basename: "Ray",
				Class:    "Rayleigh",
				Func:     "rayleigh",
				Threads:  "n",
				Kinds:    []Kind{KindHost},
			},
		},
		{
			name: "no class",
			req:  Request{Func: "rayleigh"},
			want: Request{
				Flavor:  FlavorInteractor,
				Func:    "rayleigh",
				Threads: "core_data.states.size()",
				Kinds:   AllKinds(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.req.WithDefaults()); diff != "" {
				t.Errorf("WithDefaults mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEntryPoint(t *testing.T) {
	if got := FlavorInteractor.EntryPoint("rayleigh"); got != "rayleigh_interact" {
		t.Errorf("Expected rayleigh_interact, got %s", got)
	}
	if got := FlavorDemoLoop.EntryPoint("pre_step"); got != "pre_step" {
		t.Errorf("Expected pre_step, got %s", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr []string
	}{
		{name: "valid", req: Request{Class: "Rayleigh", Func: "rayleigh"}},
		{name: "missing both", req: Request{}, wantErr: []string{"class is required", "func is required"}},
		{name: "missing func", req: Request{Class: "Rayleigh"}, wantErr: []string{"func is required"}},
		{
			name:    "bad flavor",
			req:     Request{Class: "A", Func: "a", Flavor: "physics"},
			wantErr: []string{"flavor must be one of [interactor demo-loop]"},
		},
		{
			name:    "path basename",
			req:     Request{Class: "A", Func: "a", Basename: "sub/A"},
			wantErr: []string{"basename must be a plain file name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.IsCode(err, errors.CodeInvalidArgument) {
				t.Fatalf("Expected INVALID_ARGUMENT, got %v", err)
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Expected %q in %q", want, err.Error())
				}
			}
		})
	}
}
