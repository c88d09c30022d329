package calibration

import (
	"errors"

	"github.com/playmatatu/fairway/internal/logger"
	"github.com/robfig/cron/v3"
)

// Schedule registers a recurring calibration run on a standard five-field
// cron spec. The caller starts and stops the returned scheduler. A run that
// is due while another is still going is skipped.
func (s *Service) Schedule(spec string) (*cron.Cron, error) {
	log := logger.WithComponent("calibrate")
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(logger.GetLogger())))

	_, err := c.AddFunc(spec, func() {
		runID, err := s.Start(Request{CreatedBy: "schedule"})
		if errors.Is(err, ErrRunInProgress) {
			log.Info("scheduled calibration skipped; run in progress")
			return
		}
		if err != nil {
			log.WithError(err).Error("scheduled calibration not started")
			return
		}
		log.WithField("run_id", runID).Info("scheduled calibration started")
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
