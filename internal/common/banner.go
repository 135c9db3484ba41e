package common

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the effective settings.
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.Print("Bravix", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("address", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)).
		Str("environment", config.Environment).
		Str("llm_provider", string(config.LLM.DefaultProvider)).
		Bool("narrative", config.Narrative.Enabled).
		Bool("api_key_required", config.Security.APIKey != "").
		Msg("Bravix credit evaluation service")
}
