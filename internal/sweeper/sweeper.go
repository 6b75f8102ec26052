package sweeper

import (
	"os"
	"path/filepath"
	"time"

	"innoclub/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// staleAfter is how long an orphaned staging file may sit before the sweep
// removes it. Uploads promote out of staging within seconds; anything older
// is debris from a failed request.
const staleAfter = time.Hour

// StagingSweeper periodically clears abandoned files from the staging
// directory. Files land there during upload and are renamed into the final
// store on success; a crash or failed insert leaves them behind.
type StagingSweeper struct {
	Config    *config.Config
	Logger    *zap.Logger
	scheduler *cron.Cron
}

func NewStagingSweeper(cfg *config.Config, logger *zap.Logger) *StagingSweeper {
	return &StagingSweeper{
		Config: cfg,
		Logger: logger,
	}
}

func (s *StagingSweeper) Start() error {
	s.scheduler = cron.New()
	if _, err := s.scheduler.AddFunc("@hourly", s.Sweep); err != nil {
		return err
	}
	s.scheduler.Start()
	return nil
}

func (s *StagingSweeper) Stop() error {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
	}
	return nil
}

// Sweep removes staging files older than staleAfter. Errors on individual
// files are logged and skipped so one bad entry never blocks the rest.
func (s *StagingSweeper) Sweep() {
	entries, err := os.ReadDir(s.Config.FSStaging)
	if err != nil {
		if !os.IsNotExist(err) {
			s.Logger.Warn("failed to read staging directory", zap.Error(err))
		}
		return
	}

	cutoff := time.Now().Add(-staleAfter)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.Config.FSStaging, entry.Name())
		if err := os.Remove(path); err != nil {
			s.Logger.Warn("failed to remove stale staging file",
				zap.String("path", path), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		s.Logger.Info("swept stale staging files", zap.Int("removed", removed))
	}
}
