package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface of the service. Every tunable
// the pipeline consumes lives here; components receive the values at
// construction and never read the environment themselves.
type Config struct {
	Restaurant string `yaml:"restaurant"`
	City       string `yaml:"city"`

	Paths    PathsConfig    `yaml:"paths"`
	Sampler  SamplerConfig  `yaml:"sampler"`
	Decision DecisionConfig `yaml:"decision"`
	LLM      LLMConfig      `yaml:"llm"`
	Cost     CostConfig     `yaml:"cost"`
	Feedback FeedbackConfig `yaml:"feedback"`

	// CollaboratorTimeoutSeconds bounds each candidate collaborator call.
	CollaboratorTimeoutSeconds int `yaml:"collaborator_timeout_seconds"`
}

// PathsConfig locates the flat per-run artifacts and reference data
type PathsConfig struct {
	DataDir        string `yaml:"data_dir"`
	ResultsDir     string `yaml:"results_dir"`
	RestaurantsCSV string `yaml:"restaurants_csv"`
	SoupKitchenCSV string `yaml:"soup_kitchens_csv"`
	RecipeCatalog  string `yaml:"recipe_catalog"`
}

// SamplerConfig controls the expiry simulation
type SamplerConfig struct {
	Blacklist   []string `yaml:"blacklist"`
	BatchSize   int      `yaml:"batch_size"`
	MinDays     int      `yaml:"min_days"`
	MaxDays     int      `yaml:"max_days"`
	FractionMin float64  `yaml:"fraction_min"`
	FractionMax float64  `yaml:"fraction_max"`
}

// DecisionConfig holds the decision engine thresholds
type DecisionConfig struct {
	// MinRecipeScore is the usability threshold a retrieved recipe must
	// exceed before COOK is considered.
	MinRecipeScore float64 `yaml:"min_recipe_score"`
	// MaxSellDistanceKm bounds how far a buyer may be for SELL.
	MaxSellDistanceKm float64 `yaml:"max_sell_distance_km"`
	// MinSellQuantity is the smallest quantity worth selling.
	MinSellQuantity float64 `yaml:"min_sell_quantity"`
}

// LLMConfig configures the chat and embedding backends. Provider selects
// the hosted endpoint: openai (default), azure, or github.
type LLMConfig struct {
	Provider       string  `yaml:"provider"`
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	EmbeddingModel string  `yaml:"embedding_model"`
	BaseURL        string  `yaml:"base_url"`
	Temperature    float64 `yaml:"temperature"`
}

// CostConfig holds the per-unit token rates used for the cost estimate.
// The estimate assumes half of chat volume is input-priced and half
// output-priced; it is an approximation, not a billing figure.
type CostConfig struct {
	InputPer1K     float64 `yaml:"input_per_1k"`
	OutputPer1K    float64 `yaml:"output_per_1k"`
	EmbeddingPer1M float64 `yaml:"embedding_per_1m"`
	TokenizerModel string  `yaml:"tokenizer_model"`
}

// FeedbackConfig controls the periodic purchasing-feedback harvester
type FeedbackConfig struct {
	Enabled bool `yaml:"enabled"`
	EveryN  int  `yaml:"every_n_runs"`
}

// Default returns the configuration used when no file overrides it.
// Defaults mirror the reference deployment for the HaSalon simulation.
func Default() *Config {
	return &Config{
		Restaurant: "HaSalon",
		City:       "Tel Aviv",
		Paths: PathsConfig{
			DataDir:        "data",
			ResultsDir:     "results",
			RestaurantsCSV: "data/nearby_restaurants.csv",
			SoupKitchenCSV: "data/nearby_soup_kitchens.csv",
			RecipeCatalog:  "data/recipes.db",
		},
		Sampler: SamplerConfig{
			Blacklist:   []string{"salt", "water", "sea salt", "lemon"},
			BatchSize:   10,
			MinDays:     1,
			MaxDays:     4,
			FractionMin: 0.3,
			FractionMax: 0.8,
		},
		Decision: DecisionConfig{
			MinRecipeScore:    0.75,
			MaxSellDistanceKm: 10,
			MinSellQuantity:   0.5,
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.3,
		},
		Cost: CostConfig{
			InputPer1K:     0.0025,
			OutputPer1K:    0.01,
			EmbeddingPer1M: 0.02,
			TokenizerModel: "gpt-4",
		},
		Feedback: FeedbackConfig{
			Enabled: true,
			EveryN:  10,
		},
		CollaboratorTimeoutSeconds: 30,
	}
}

// Load reads a YAML configuration file over the defaults. A missing path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CollaboratorTimeout returns the per-collaborator call bound
func (c *Config) CollaboratorTimeout() time.Duration {
	return time.Duration(c.CollaboratorTimeoutSeconds) * time.Second
}

// Validate rejects configurations the sampler or decision engine cannot
// honor
func (c *Config) Validate() error {
	if c.Sampler.BatchSize < 0 {
		return fmt.Errorf("sampler batch_size must be >= 0, got %d", c.Sampler.BatchSize)
	}
	if c.Sampler.MinDays < 1 || c.Sampler.MaxDays < c.Sampler.MinDays {
		return fmt.Errorf("sampler day range [%d,%d] is invalid", c.Sampler.MinDays, c.Sampler.MaxDays)
	}
	if c.Sampler.FractionMin <= 0 || c.Sampler.FractionMax >= 1 || c.Sampler.FractionMax < c.Sampler.FractionMin {
		return fmt.Errorf("sampler fraction bounds (%.2f,%.2f) must satisfy 0 < min <= max < 1",
			c.Sampler.FractionMin, c.Sampler.FractionMax)
	}
	return nil
}
