package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/advisor"
	"gopkg.in/yaml.v3"
)

const (
	defaultRoster   = "SLATE_Query_With_Names_Formatted.csv"
	defaultProvider = "bedrock"
	defaultRegion   = "us-west-2"
	defaultLocation = "us-central1"
)

// config is the process configuration. Env is only read through the getenv
// function handed to loadConfig.
type config struct {
	Provider string
	KB       advisor.KnowledgeBaseConfig

	Region   string // bedrock
	Project  string // gemini
	Location string // gemini

	Roster    string
	IDColumn  string
	Table     string
	JWTSecret string
	LogFile   string
	LogLevel  string
}

func loadConfig(getenv func(string) string) config {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}
	cfg := config{
		Provider: strings.ToLower(get("ADVISOR_PROVIDER", defaultProvider)),
		KB: advisor.KnowledgeBaseConfig{
			KnowledgeBaseID:  get("KNOWLEDGE_BASE_ID", ""),
			GuardrailID:      get("GUARDRAIL_ID", ""),
			GuardrailVersion: get("GUARDRAIL_VERSION", ""),
		},
		Region:    get("AWS_REGION", defaultRegion),
		Project:   get("GOOGLE_CLOUD_PROJECT", ""),
		Location:  get("GOOGLE_CLOUD_LOCATION", defaultLocation),
		Roster:    get("ADVISOR_ROSTER", defaultRoster),
		IDColumn:  get("ADVISOR_ID_COLUMN", advisor.DefaultIDColumn),
		Table:     get("ADVISOR_ROSTER_TABLE", ""),
		JWTSecret: get("ADVISOR_JWT_SECRET", ""),
		LogFile:   get("ADVISOR_LOG_FILE", ""),
		LogLevel:  get("ADVISOR_LOG_LEVEL", ""),
	}
	if cfg.Provider == "gemini" {
		cfg.KB.ModelID = get("GEMINI_MODEL", "")
	} else {
		cfg.KB.ModelID = get("BEDROCK_MODEL_ID", "")
	}
	return cfg
}

func (c config) validate() error {
	if c.KB.KnowledgeBaseID == "" {
		return errors.New("KNOWLEDGE_BASE_ID not set")
	}
	switch c.Provider {
	case "bedrock":
		if c.KB.ModelID == "" {
			return errors.New("BEDROCK_MODEL_ID not set")
		}
	case "gemini":
		if c.Project == "" {
			return errors.New("GOOGLE_CLOUD_PROJECT not set")
		}
	default:
		return fmt.Errorf("unknown provider %q: must be \"bedrock\" or \"gemini\"", c.Provider)
	}
	return nil
}

// policyFile overrides the prompt composer defaults. Empty fields keep the
// default value.
type policyFile struct {
	Policy     string `yaml:"policy"`
	Greeting   string `yaml:"greeting"`
	Window     int    `yaml:"window"`
	TimeFormat string `yaml:"time_format"`
}

// loadComposer returns the default composer with overrides from the YAML
// file at path applied. An empty path yields the defaults.
func loadComposer(path string) (advisor.Composer, error) {
	c := advisor.NewComposer()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read policy: %w", err)
	}
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return c, fmt.Errorf("parse policy %s: %w", path, err)
	}
	if pf.Policy != "" {
		c.Policy = strings.TrimSpace(pf.Policy)
	}
	if pf.Greeting != "" {
		c.Greeting = strings.TrimSpace(pf.Greeting)
	}
	if pf.Window < 0 {
		return c, fmt.Errorf("parse policy %s: window must not be negative", path)
	}
	if pf.Window > 0 {
		c.Window = pf.Window
	}
	if pf.TimeFormat != "" {
		c.TimeFormat = pf.TimeFormat
	}
	return c, nil
}
