package probe

import (
	"context"
	"encoding/json"
	"os/exec"
	"strings"
	"sync"

	"lazydotnet/internal/config"
	"lazydotnet/internal/domain"
)

// Result classifies one project after evaluating its build properties.
// A project that failed evaluation is reported as not a test project so a
// single bad descriptor never aborts a discovery batch.
type Result struct {
	ProjectPath   string
	BinaryPath    string // compiled output, empty when unknown
	IsTestProject bool
	Protocol      domain.Protocol
}

// Prober evaluates msbuild properties to classify projects. Evaluations are
// cached per project path so repeated probes are cheap.
type Prober struct {
	cfg *config.Config

	mu    sync.Mutex
	cache map[string]Result

	// eval is swapped out in tests
	eval func(ctx context.Context, projectPath string) ([]byte, error)
}

// NewProber creates a new Prober
func NewProber(cfg *config.Config) *Prober {
	p := &Prober{
		cfg:   cfg,
		cache: make(map[string]Result),
	}
	p.eval = p.evalMSBuild
	return p
}

// msbuildProperties is the JSON shape of `dotnet msbuild -getProperty:...`
type msbuildProperties struct {
	Properties struct {
		IsTestProject                string `json:"IsTestProject"`
		IsTestingPlatformApplication string `json:"IsTestingPlatformApplication"`
		TestingPlatformDotnetTestCLI string `json:"TestingPlatformDotnetTestSupport"`
		OutputType                   string `json:"OutputType"`
		TargetPath                   string `json:"TargetPath"`
	} `json:"Properties"`
}

// Probe classifies a project, returning the cached result when available.
func (p *Prober) Probe(ctx context.Context, projectPath string) Result {
	p.mu.Lock()
	if cached, ok := p.cache[projectPath]; ok {
		p.mu.Unlock()
		return cached
	}
	p.mu.Unlock()

	res := p.probe(ctx, projectPath)

	p.mu.Lock()
	p.cache[projectPath] = res
	p.mu.Unlock()
	return res
}

// Invalidate drops the cached result for a project, e.g. after a rebuild
// changed its output path.
func (p *Prober) Invalidate(projectPath string) {
	p.mu.Lock()
	delete(p.cache, projectPath)
	p.mu.Unlock()
}

func (p *Prober) probe(ctx context.Context, projectPath string) Result {
	neutral := Result{ProjectPath: projectPath}

	out, err := p.eval(ctx, projectPath)
	if err != nil {
		return neutral
	}

	var props msbuildProperties
	if err := json.Unmarshal(out, &props); err != nil {
		return neutral
	}

	res := Result{
		ProjectPath:   projectPath,
		BinaryPath:    props.Properties.TargetPath,
		IsTestProject: isTrue(props.Properties.IsTestProject),
	}
	// The testing-platform binary hosts its own runner, which requires an
	// executable output. A project that sets the platform flags but builds
	// a plain library can only be driven through the vstest console.
	if isExecutable(props.Properties.OutputType) &&
		(isTrue(props.Properties.IsTestingPlatformApplication) ||
			isTrue(props.Properties.TestingPlatformDotnetTestCLI)) {
		res.Protocol = domain.ProtocolMTP
	}
	return res
}

func isExecutable(outputType string) bool {
	v := strings.TrimSpace(outputType)
	return strings.EqualFold(v, "Exe") || strings.EqualFold(v, "WinExe")
}

// evalMSBuild asks dotnet for the properties that decide whether this is a
// test project and which protocol its binary speaks.
func (p *Prober) evalMSBuild(ctx context.Context, projectPath string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, p.cfg.DotnetPath, "msbuild", projectPath,
		"-getProperty:IsTestProject",
		"-getProperty:IsTestingPlatformApplication",
		"-getProperty:TestingPlatformDotnetTestSupport",
		"-getProperty:OutputType",
		"-getProperty:TargetPath",
		"-nologo",
	)
	return cmd.Output()
}

func isTrue(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
