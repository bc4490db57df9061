package config

import (
	"strings"
	"testing"
)

func TestSchemaRegisterAndLookup(t *testing.T) {
	t.Parallel()
	s := NewSchema()
	s.Register(ConfigOption{Key: "verbose", Type: TypeBool, Section: ""})
	s.Register(ConfigOption{Key: "thread-id", Type: TypeString, Section: "run"})

	if !s.IsKnown("", "verbose") {
		t.Error("expected 'verbose' to be known globally")
	}
	if !s.IsKnown("run", "thread-id") {
		t.Error("expected 'thread-id' to be known in [run]")
	}
	if s.IsKnown("", "nonexistent") {
		t.Error("expected 'nonexistent' to not be known")
	}
	if s.Lookup("", "verbose") == nil {
		t.Error("expected Lookup to find 'verbose'")
	}
	if s.Lookup("run", "nonexistent") != nil {
		t.Error("expected Lookup to return nil for an unregistered option")
	}
}

func TestSchemaSectionFallsBackToGlobal(t *testing.T) {
	t.Parallel()
	s := NewSchema()
	s.Register(ConfigOption{Key: "verbose", Type: TypeBool, Section: ""})

	if !s.IsKnown("run", "verbose") {
		t.Error("expected a global key to be known inside any command section")
	}
}

func TestSchemaRegisterAllAndSections(t *testing.T) {
	t.Parallel()
	s := NewSchema()
	s.RegisterAll([]ConfigOption{
		{Key: "a", Section: ""},
		{Key: "b", Section: "run"},
		{Key: "c", Section: "step"},
	})
	sections := s.Sections()
	if len(sections) != 2 || sections[0] != "run" || sections[1] != "step" {
		t.Fatalf("expected sorted [run step], got %v", sections)
	}
	if len(s.GlobalOptions()) != 1 {
		t.Fatalf("expected 1 global option, got %d", len(s.GlobalOptions()))
	}
	if len(s.SectionOptions("run")) != 1 {
		t.Fatalf("expected 1 option in [run], got %d", len(s.SectionOptions("run")))
	}
}

func TestDefaultSchemaKnowsRunnerAndToolOptions(t *testing.T) {
	t.Parallel()
	s := DefaultSchema()
	for _, key := range []string{
		"runner.max-fps", "runner.setup-timeout", "runner.checkpoint-interval",
		"checkpoint.dir", "tool.max-retries", "tool.observation-format",
		"trace.enabled", "state.allow-unknown-keys",
	} {
		if !s.IsKnown("", key) {
			t.Errorf("expected DefaultSchema to know global option %q", key)
		}
	}
	for _, key := range []string{"max-ticks", "thread-id", "reset-tree", "reset-data"} {
		if !s.IsKnown("run", key) {
			t.Errorf("expected DefaultSchema to know [run] option %q", key)
		}
	}
}

func TestValidateConfigFlagsUnknownAndMistyped(t *testing.T) {
	t.Parallel()
	s := DefaultSchema()

	c := NewConfig()
	c.SetGlobalOption("runner.max-fps", "not-an-int")
	c.SetGlobalOption("totally-unknown", "x")
	c.SetCommandOption("run", "max-ticks", "not-an-int")
	c.SetCommandOption("run", "also-unknown", "y")

	issues := ValidateConfig(c, s)
	joined := strings.Join(issues, "\n")
	for _, want := range []string{"totally-unknown", "also-unknown", "runner.max-fps", "max-ticks"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected validation issues to mention %q, got:\n%s", want, joined)
		}
	}
}

func TestValidateConfigAcceptsWellFormedConfig(t *testing.T) {
	t.Parallel()
	s := DefaultSchema()

	c := NewConfig()
	c.SetGlobalOption("runner.max-fps", "60")
	c.SetGlobalOption("trace.enabled", "true")
	c.SetCommandOption("run", "max-ticks", "1000")

	if issues := ValidateConfig(c, s); len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func TestSchemaResolvePrecedence(t *testing.T) {
	s := NewSchema()
	s.Register(ConfigOption{Key: "checkpoint.dir", Default: "/default/dir", EnvVar: "BTFLOW_CHECKPOINT_DIR"})

	c := NewConfig()
	if got := s.Resolve(c, "checkpoint.dir"); got != "/default/dir" {
		t.Errorf("expected schema default, got %q", got)
	}

	c.SetGlobalOption("checkpoint.dir", "/config/dir")
	if got := s.Resolve(c, "checkpoint.dir"); got != "/config/dir" {
		t.Errorf("expected config value to override default, got %q", got)
	}

	t.Setenv("BTFLOW_CHECKPOINT_DIR", "/env/dir")
	if got := s.Resolve(c, "checkpoint.dir"); got != "/env/dir" {
		t.Errorf("expected env var to override config value, got %q", got)
	}
}

func TestConfigTypedGetters(t *testing.T) {
	t.Parallel()
	c := NewConfig()
	c.SetGlobalOption("verbose", "true")
	c.SetGlobalOption("runner.checkpoint-interval", "5")
	c.SetGlobalOption("runner.setup-timeout", "30s")

	if !c.GetBool("verbose") {
		t.Error("expected GetBool(verbose) to be true")
	}
	if c.GetInt("runner.checkpoint-interval") != 5 {
		t.Errorf("expected GetInt(runner.checkpoint-interval) == 5, got %d", c.GetInt("runner.checkpoint-interval"))
	}
	if c.GetDuration("runner.setup-timeout").String() != "30s" {
		t.Errorf("expected GetDuration(runner.setup-timeout) == 30s, got %s", c.GetDuration("runner.setup-timeout"))
	}
	if c.GetStringDefault("missing-key", "fallback") != "fallback" {
		t.Error("expected GetStringDefault to return the fallback for a missing key")
	}
}
