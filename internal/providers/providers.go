// Package providers assembles the training strategy of each project type.
package providers

import (
	"log/slog"
	"strings"

	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/internal/providers/assistant"
	"github.com/JaimeStill/lyceum/internal/providers/numbers"
	"github.com/JaimeStill/lyceum/internal/providers/visualrec"
	"github.com/JaimeStill/lyceum/internal/training"
	"github.com/JaimeStill/lyceum/internal/trainingdata"
)

// New returns one strategy per project type. Every strategy reads its
// training input from examples.
func New(cfg *Config, examples trainingdata.System, logger *slog.Logger) map[projects.Type]training.Strategy {
	return map[projects.Type]training.Strategy{
		projects.Text: assistant.New(examples, assistant.Options{
			Version:     cfg.Assistant.Version,
			Timeout:     cfg.Assistant.TimeoutDuration(),
			ModelTTL:    cfg.Assistant.ModelTTLDuration(),
			Concurrency: cfg.StatusConcurrency,
		}, logger),
		projects.Images: visualrec.New(examples, visualrec.Options{
			Version:     cfg.VisualRecognition.Version,
			Timeout:     cfg.VisualRecognition.TimeoutDuration(),
			ModelTTL:    cfg.VisualRecognition.ModelTTLDuration(),
			Concurrency: cfg.StatusConcurrency,
		}, logger),
		projects.Numbers: numbers.New(examples, numbers.Options{
			URL:      strings.TrimSuffix(cfg.Numbers.URL, "/"),
			Username: cfg.Numbers.Username,
			Password: cfg.Numbers.Password,
			Timeout:  cfg.Numbers.TimeoutDuration(),
		}, logger),
	}
}
