package pipeline

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/polytree/pkg/cache"
	"github.com/matzehuels/polytree/pkg/chain"
	"github.com/matzehuels/polytree/pkg/errors"
	"github.com/matzehuels/polytree/pkg/observability"
	"github.com/matzehuels/polytree/pkg/preset"
	"github.com/matzehuels/polytree/pkg/render/polymer"
)

const (
	examplePolymer = "dabAcCaCBAcCcaDA"
	exampleLicense = "2 3 0 3 10 11 12 1 1 0 1 99 2 1 1 2"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateVizType(t *testing.T) {
	tests := []struct {
		vizType string
		wantErr bool
	}{
		{"turtle", false},
		{"nodelink", false},
		{"sunburst", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVizType(tt.vizType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizType(%q) error = %v, wantErr %v", tt.vizType, err, tt.wantErr)
		}
	}
}

func TestValidateKind(t *testing.T) {
	for _, kind := range []string{"polymer", "license"} {
		if err := ValidateKind(kind); err != nil {
			t.Errorf("ValidateKind(%q) = %v", kind, err)
		}
	}
	if err := ValidateKind("dag"); !errors.Is(err, errors.ErrCodeInvalidKind) {
		t.Errorf("ValidateKind(dag) = %v, want INVALID_KIND", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Kind: KindPolymer}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.VizType != DefaultVizType {
		t.Errorf("VizType should be %q, got %q", DefaultVizType, opts.VizType)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %v, got %v", DefaultScale, opts.Scale)
	}
	if opts.Polymer != polymer.DefaultParams() {
		t.Error("zero polymer params should be replaced by the defaults")
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestOptionsValidate(t *testing.T) {
	badZoom := DefaultOptions(KindPolymer)
	badZoom.Polymer.Zoom = 0

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing kind", Options{}, errors.ErrCodeInvalidKind},
		{"unknown kind", Options{Kind: "forest"}, errors.ErrCodeInvalidKind},
		{"ignored on license", Options{Kind: KindLicense, Ignored: "c"}, errors.ErrCodeInvalidParameter},
		{"ignored digit", Options{Kind: KindPolymer, Ignored: "1"}, errors.ErrCodeInvalidSymbol},
		{"ignored too long", Options{Kind: KindPolymer, Ignored: "ab"}, errors.ErrCodeInvalidSymbol},
		{"negative prefix", Options{Kind: KindPolymer, Prefix: -1}, errors.ErrCodeInvalidParameter},
		{"bad format", Options{Kind: KindPolymer, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad viz type", Options{Kind: KindPolymer, VizType: "sunburst"}, errors.ErrCodeInvalidVizType},
		{"negative scale", Options{Kind: KindPolymer, Scale: -2}, errors.ErrCodeInvalidParameter},
		{"bad params", badZoom, errors.ErrCodeInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsNodelinkSkipsParams(t *testing.T) {
	opts := DefaultOptions(KindPolymer)
	opts.VizType = VizTypeNodelink
	opts.Polymer.Zoom = 0
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("nodelink should not validate turtle params: %v", err)
	}
}

func TestApplyPreset(t *testing.T) {
	wreath, err := preset.Get("holiday-wreath")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("sets params and ignored unit", func(t *testing.T) {
		opts := Options{}
		if err := opts.ApplyPreset(wreath); err != nil {
			t.Fatal(err)
		}
		if opts.Kind != KindPolymer {
			t.Errorf("Kind = %q, want polymer", opts.Kind)
		}
		if opts.Polymer != *wreath.Polymer {
			t.Error("polymer params not copied")
		}
		if opts.Ignored != wreath.Ignored {
			t.Errorf("Ignored = %q, want %q", opts.Ignored, wreath.Ignored)
		}
	})

	t.Run("explicit ignored wins", func(t *testing.T) {
		opts := Options{Kind: KindPolymer, Ignored: "x"}
		if err := opts.ApplyPreset(wreath); err != nil {
			t.Fatal(err)
		}
		if opts.Ignored != "x" {
			t.Errorf("Ignored = %q, want x", opts.Ignored)
		}
	})

	t.Run("kind mismatch", func(t *testing.T) {
		opts := Options{Kind: KindLicense}
		if err := opts.ApplyPreset(wreath); !errors.Is(err, errors.ErrCodeInvalidPreset) {
			t.Errorf("ApplyPreset() = %v, want INVALID_PRESET", err)
		}
	})
}

func TestArtifactKeyOpts(t *testing.T) {
	a := DefaultOptions(KindPolymer)
	b := DefaultOptions(KindPolymer)
	b.Polymer.Zoom = 2

	if a.ArtifactKeyOpts(FormatSVG) == b.ArtifactKeyOpts(FormatSVG) {
		t.Error("changing a render parameter should change the svg key")
	}
	if a.ArtifactKeyOpts(FormatJSON) != b.ArtifactKeyOpts(FormatJSON) {
		t.Error("render parameters should not affect the json key")
	}
	if k := a.ArtifactKeyOpts(FormatSVG); k.Scale != 0 {
		t.Errorf("svg key should not include scale, got %v", k.Scale)
	}
	if k := a.ArtifactKeyOpts(FormatPNG); k.Scale != DefaultScale {
		t.Errorf("png key scale = %v, want %v", k.Scale, DefaultScale)
	}

	a.VizType, b.VizType = VizTypeNodelink, VizTypeNodelink
	if a.ArtifactKeyOpts(FormatSVG) != b.ArtifactKeyOpts(FormatSVG) {
		t.Error("turtle parameters should not affect nodelink keys")
	}

	c := DefaultOptions(KindPolymer)
	c.Ignored = "C"
	d := DefaultOptions(KindPolymer)
	d.Ignored = "c"
	if c.ArtifactKeyOpts(FormatSVG) != d.ArtifactKeyOpts(FormatSVG) {
		t.Error("ignored unit should be case-insensitive in keys")
	}
}

func TestRunnerExecutePolymer(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := DefaultOptions(KindPolymer)
	opts.Formats = []string{FormatSVG, FormatJSON}

	result, err := runner.Execute(context.Background(), []byte(examplePolymer+"\n"), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if got := string(result.Forest.Remaining()); got != "dabCBAcaDA" {
		t.Errorf("Remaining() = %q, want dabCBAcaDA", got)
	}
	if result.Stats.Trunk != 10 {
		t.Errorf("Stats.Trunk = %d, want 10", result.Stats.Trunk)
	}
	if result.Stats.Nodes != len(examplePolymer) {
		t.Errorf("Stats.Nodes = %d, want %d", result.Stats.Nodes, len(examplePolymer))
	}
	if result.InputHash != cache.Hash([]byte(examplePolymer)) {
		t.Error("InputHash should be the hash of the trimmed input")
	}
	if !bytes.HasPrefix(result.Artifacts[FormatSVG], []byte("<svg")) {
		t.Errorf("svg artifact should start with <svg, got %.20q", result.Artifacts[FormatSVG])
	}

	f, err := chain.UnmarshalForest(result.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if !f.Equal(result.Forest) {
		t.Error("json artifact does not round-trip to the forest")
	}
}

func TestRunnerExecuteLicense(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := DefaultOptions(KindLicense)
	opts.Formats = []string{FormatSVG, FormatJSON}

	result, err := runner.Execute(context.Background(), []byte(exampleLicense), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.Stats.Nodes != 4 {
		t.Errorf("Stats.Nodes = %d, want 4", result.Stats.Nodes)
	}
	if got := result.License.Value(); got != 66 {
		t.Errorf("Value() = %d, want 66", got)
	}
	if !strings.Contains(string(result.Artifacts[FormatJSON]), `"metadata"`) {
		t.Error("json artifact should contain metadata")
	}
}

func TestRunnerErrors(t *testing.T) {
	tests := []struct {
		name  string
		kind  string
		input string
		opts  func(*Options)
		code  errors.Code
	}{
		{"truncated license", KindLicense, "1 1", nil, errors.ErrCodeInvalidLicense},
		{"license with letters", KindLicense, "a b", nil, errors.ErrCodeInvalidLicense},
		{"strict polymer", KindPolymer, "ab1", func(o *Options) { o.Strict = true }, errors.ErrCodeInvalidInput},
		{"too large", KindPolymer, strings.Repeat("a", errors.MaxInputSize+1), nil, errors.ErrCodeInputTooLarge},
	}

	runner := NewRunner(nil, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions(tt.kind)
			if tt.opts != nil {
				tt.opts(&opts)
			}
			_, err := runner.Execute(context.Background(), []byte(tt.input), opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRunnerLenientPolymer(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	f, err := runner.Reduce(context.Background(), []byte("a1A"), Options{})
	if err != nil {
		t.Fatalf("Reduce() error: %v", err)
	}
	if f.TrunkLen() != 3 {
		t.Errorf("TrunkLen() = %d, want 3", f.TrunkLen())
	}
}

func TestRunnerPrefix(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := DefaultOptions(KindPolymer)
	opts.Prefix = 4

	f, err := runner.Reduce(context.Background(), []byte(examplePolymer), opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(f.Remaining()); got != "dabA" {
		t.Errorf("Remaining() = %q, want dabA", got)
	}

	// A prefix longer than the input reduces everything.
	opts.Prefix = 1000
	f, err = runner.Reduce(context.Background(), []byte(examplePolymer), opts)
	if err != nil {
		t.Fatal(err)
	}
	if f.Stats().Units != len(examplePolymer) {
		t.Errorf("Units = %d, want %d", f.Stats().Units, len(examplePolymer))
	}
}

func TestRunnerCachesFramesSeparately(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()
	ctx := context.Background()

	tests := []struct {
		prefix int
		units  int
		hit    bool
	}{
		{4, 4, false},
		{6, 6, false},
		{4, 4, true},
	}

	for _, tt := range tests {
		opts := DefaultOptions(KindPolymer)
		opts.Prefix = tt.prefix
		f, hit, err := runner.ReduceWithCacheInfo(ctx, []byte(examplePolymer), opts)
		if err != nil {
			t.Fatal(err)
		}
		if hit != tt.hit || f.Stats().Units != tt.units {
			t.Errorf("prefix %d: hit = %v with %d units, want %v with %d",
				tt.prefix, hit, f.Stats().Units, tt.hit, tt.units)
		}
	}
}

func TestRunnerHideRoot(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := DefaultOptions(KindPolymer)
	opts.HideRoot = true

	f, err := runner.Reduce(context.Background(), []byte(examplePolymer), opts)
	if err != nil {
		t.Fatal(err)
	}
	if f.Root() != nil {
		t.Error("forest should not include the root")
	}
}

func TestRunnerCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := DefaultOptions(KindPolymer)
	opts.Ignored = "c"
	opts.Formats = []string{FormatSVG, FormatJSON}
	ctx := context.Background()

	first, err := runner.Execute(ctx, []byte(examplePolymer), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.ReduceHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss the cache: %+v", first.CacheInfo)
	}

	second, err := runner.Execute(ctx, []byte(examplePolymer), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.ReduceHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit the cache: %+v", second.CacheInfo)
	}
	if !second.Forest.Equal(first.Forest) {
		t.Error("cached forest differs")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	// Changing a render parameter misses the artifact cache only.
	opts.Polymer.Zoom = 1
	third, err := runner.Execute(ctx, []byte(examplePolymer), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !third.CacheInfo.ReduceHit || third.CacheInfo.RenderHit {
		t.Errorf("third run should hit reduce and miss render: %+v", third.CacheInfo)
	}
}

func TestRunnerRenderPNG(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := DefaultOptions(KindLicense)
	opts.Formats = []string{FormatPNG}

	artifacts, err := runner.Render(context.Background(), []byte(exampleLicense), opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !bytes.HasPrefix(artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("png artifact should start with the PNG signature")
	}
}

func TestRunnerNodelinkLimit(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := DefaultOptions(KindPolymer)
	opts.VizType = VizTypeNodelink

	_, err := runner.Render(context.Background(), bytes.Repeat([]byte("a"), 6000), opts)
	if !errors.Is(err, errors.ErrCodeInputTooLarge) {
		t.Errorf("Render() error = %v, want INPUT_TOO_LARGE", err)
	}
}

func TestRunnerCanceled(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Render(ctx, []byte(examplePolymer), DefaultOptions(KindPolymer))
	if err != context.Canceled {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	reduced []string
	renders int
}

func (h *recordingHooks) OnReduceComplete(_ context.Context, kind string, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		h.reduced = append(h.reduced, kind)
	}
}

func (h *recordingHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders++
}

func TestRunnerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()
	if _, err := runner.Execute(ctx, []byte(examplePolymer), DefaultOptions(KindPolymer)); err != nil {
		t.Fatal(err)
	}
	if _, err := runner.Execute(ctx, []byte(exampleLicense), DefaultOptions(KindLicense)); err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(hooks.reduced, ","); got != "polymer,license" {
		t.Errorf("reduce hooks = %q, want polymer,license", got)
	}
	if hooks.renders != 2 {
		t.Errorf("render hooks = %d, want 2", hooks.renders)
	}
}
