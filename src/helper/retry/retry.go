package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"graphmigrate/src/domain"
)

// Probe é uma chamada mínima de conectividade contra uma dependência.
type Probe func(ctx context.Context) error

// WaitUntilReady executa a probe até maxAttempts vezes, dormindo delay
// entre tentativas. Cada tentativa abre e libera a própria conexão (isso
// é responsabilidade da probe). Depois de maxAttempts falhas
// consecutivas, devolve domain.ErrDependencyUnavailable embrulhando o
// último erro observado. Nunca dorme depois da última tentativa.
func WaitUntilReady(ctx context.Context, logger *slog.Logger, name string, probe Probe, maxAttempts int, delay time.Duration) error {
	if maxAttempts < 1 {
		return fmt.Errorf("%s: %w: retry budget must be at least 1 attempt", name, domain.ErrDependencyUnavailable)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = probe(ctx)
		if lastErr == nil {
			logger.Info("Dependency is ready", "dependency", name, "attempt", attempt)
			return nil
		}

		if attempt < maxAttempts {
			logger.Warn("Dependency not ready yet",
				"dependency", name,
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"error", lastErr)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s: %w: %v", name, domain.ErrDependencyUnavailable, ctx.Err())
			}
		}
	}

	return fmt.Errorf("%s: %w after %d attempts: %v", name, domain.ErrDependencyUnavailable, maxAttempts, lastErr)
}
