// Package generators renders and writes interface, host and device sources for
// physics kernels.
//
// Overview:
//   - Responsibility: Turn a generation Request into three rendered files and write them
//   - Key Types: Request, Kind, Flavor, Output, Generator
//   - Concurrency Model: Rendering is sequential; writes for one request run in parallel
//   - Error Semantics: INVALID_ARGUMENT from Validate, MISSING_PARAMETER from rendering,
//     IO from writing; rendering is all-or-nothing per request
//   - Performance Notes: Templates are parsed once per Generator
//
// Usage:
//
//	gen := NewGenerator(projectfs.NewProjectFS("."))
//	outputs, err := gen.Generate(ctx, Request{Class: "Rayleigh", Func: "rayleigh"})
package generators

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
)

// Kind identifies one of the three generated files.
type Kind string

const (
	// KindInterface is the header declaring host and device entry points.
	KindInterface Kind = "interface"
	// KindHost is the host loop implementation.
	KindHost Kind = "host"
	// KindDevice is the device kernel implementation.
	KindDevice Kind = "device"
)

// AllKinds returns every kind in generation order.
func AllKinds() []Kind {
	return []Kind{KindInterface, KindHost, KindDevice}
}

// Ext returns the fixed file extension of the kind.
func (k Kind) Ext() string {
	switch k {
	case KindInterface:
		return "hh"
	case KindHost:
		return "cc"
	case KindDevice:
		return "cu"
	default:
		return ""
	}
}

// Lang returns the language named in the file's modeline.
func (k Kind) Lang() string {
	if k == KindDevice {
		return "CUDA"
	}
	return "C++"
}

// ParseKind accepts a kind name or its extension.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "interface", "hh":
		return KindInterface, nil
	case "host", "cc":
		return KindHost, nil
	case "device", "cu":
		return KindDevice, nil
	default:
		return "", errors.Newf(errors.CodeInvalidArgument, "unknown output kind %q (want hh, cc or cu)", s)
	}
}

// ParseKinds parses a list of kinds, keeping generation order and dropping duplicates.
func ParseKinds(values []string) ([]Kind, error) {
	kinds := make([]Kind, 0, len(values))
	for _, v := range values {
		k, err := ParseKind(v)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return normalizeKinds(kinds), nil
}

// UnmarshalYAML accepts either spelling of a kind.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func normalizeKinds(kinds []Kind) []Kind {
	if len(kinds) == 0 {
		return AllKinds()
	}
	want := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	out := make([]Kind, 0, len(want))
	for _, k := range AllKinds() {
		if want[k] {
			out = append(out, k)
		}
	}
	return out
}

// Flavor names a template set and its defaults.
type Flavor string

const (
	// FlavorInteractor generates Model "interact" kernels.
	FlavorInteractor Flavor = "interactor"
	// FlavorDemoLoop generates demo loop step kernels.
	FlavorDemoLoop Flavor = "demo-loop"
)

type flavorDefaults struct {
	threads string
	suffix  string
	entry   string
}

var flavorTable = map[Flavor]flavorDefaults{
	FlavorInteractor: {threads: "core_data.states.size()", suffix: "Interact", entry: "_interact"},
	FlavorDemoLoop:   {threads: "states.size()", suffix: "Kernel", entry: ""},
}

// Flavors returns the known flavors, sorted.
func Flavors() []Flavor {
	return []Flavor{FlavorDemoLoop, FlavorInteractor}
}

// ParseFlavor validates a flavor name. Empty means FlavorInteractor.
func ParseFlavor(s string) (Flavor, error) {
	if s == "" {
		return FlavorInteractor, nil
	}
	f := Flavor(strings.ToLower(s))
	if _, ok := flavorTable[f]; !ok {
		return "", errors.Newf(errors.CodeNotFound, "unknown flavor %q (want interactor or demo-loop)", s)
	}
	return f, nil
}

// DefaultThreads is the thread-count expression meaning "size of the state collection".
func (f Flavor) DefaultThreads() string {
	return flavorTable[f].threads
}

// DefaultBasename derives the output basename from the class name.
func (f Flavor) DefaultBasename(class string) string {
	return class + flavorTable[f].suffix
}

// EntryPoint returns the generated entry-point name; it keys launch-bounds lookups.
func (f Flavor) EntryPoint(fn string) string {
	return fn + flavorTable[f].entry
}

// Request is the set of named parameters driving one generation.
type Request struct {
	Flavor   Flavor `yaml:"flavor,omitempty" validate:"omitempty,oneof=interactor demo-loop"`
	Basename string `yaml:"basename,omitempty" validate:"omitempty,excludesall=/\\"`
	Class    string `yaml:"class" validate:"required"`
	Func     string `yaml:"func" validate:"required"`
	Threads  string `yaml:"threads,omitempty"`
	Kinds    []Kind `yaml:"kinds,omitempty" validate:"dive,oneof=interface host device"`
}

// WithDefaults returns a copy with flavor, threads, basename and kinds filled in.
// Class and Func are never synthesized; an empty Class leaves Basename empty too.
func (r Request) WithDefaults() Request {
	if r.Flavor == "" {
		r.Flavor = FlavorInteractor
	}
	if r.Threads == "" {
		r.Threads = r.Flavor.DefaultThreads()
	}
	if r.Basename == "" && r.Class != "" {
		r.Basename = r.Flavor.DefaultBasename(r.Class)
	}
	r.Kinds = normalizeKinds(r.Kinds)
	return r
}

// Filename returns the output file name for a kind, or "" without a basename.
func (r Request) Filename(kind Kind) string {
	r = r.WithDefaults()
	if r.Basename == "" {
		return ""
	}
	return r.Basename + "." + kind.Ext()
}

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(field.Name)
		}
		return name
	})
	return v
}

// Validate checks the request before rendering.
//
// Returns:
//   - error: INVALID_ARGUMENT listing every violated field, nil when valid
func (r Request) Validate() error {
	err := requestValidator.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(errors.CodeInvalidArgument, "validate request", err)
	}

	msgs := make([]string, 0, len(verrs))
	fields := make([]any, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
		fields = append(fields, fe.Field())
	}
	return errors.Build(errors.CodeInvalidArgument).
		WithOp("validate request").
		WithMsg(strings.Join(msgs, "; ")).
		WithDetails(fields...).
		Err()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fmt.Sprint(fe.Value()))
	case "excludesall":
		return fmt.Sprintf("%s must be a plain file name, got %q", fe.Field(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// Output is one rendered file.
type Output struct {
	Kind    Kind
	Path    string
	Content []byte
}
