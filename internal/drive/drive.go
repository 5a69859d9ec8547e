package drive

import (
	"fmt"
	"log/slog"

	"github.com/sift-cli/sift/internal/config"
	"github.com/sift-cli/sift/internal/domain"
	"github.com/sift-cli/sift/internal/drive/onedrive"
)

// NewClient creates the drive backend from configuration. OneDrive (Microsoft
// Graph) is the only backend today; the factory keeps the call sites
// provider-agnostic.
func NewClient(cfg *config.Config, logger *slog.Logger) (domain.DriveRepository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.Drive.Token == "" {
		return nil, fmt.Errorf("drive token is required")
	}

	return onedrive.NewClient(cfg.Drive.BaseURL, cfg.Drive.Token, logger), nil
}
