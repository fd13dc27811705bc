package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"wvw-dashboard/internal/config"

	"github.com/rs/zerolog"
)

// ImportantGuilds are guild names highlighted by the dashboard.
type ImportantGuilds []string

// LoadImportantGuilds reads one name per line, skipping blank lines. A
// missing file yields an empty list.
func LoadImportantGuilds(cfg *config.Config, logger zerolog.Logger) (ImportantGuilds, error) {
	f, err := os.Open(cfg.ImportantGuildsPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Str("path", cfg.ImportantGuildsPath).Msg("important guilds file not found")
		return ImportantGuilds{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open important guilds: %w", err)
	}
	defer f.Close()

	out := ImportantGuilds{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read important guilds: %w", err)
	}

	logger.Info().Int("count", len(out)).Msg("important guilds loaded")
	return out, nil
}
