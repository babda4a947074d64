package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/5w1tchy/textbooks-api/internal/service"
)

// Auditor is satisfied by *service.Auditor.
type Auditor interface {
	Run(ctx context.Context) (*service.Report, error)
}

const auditTimeout = 10 * time.Minute

// StartIntegrityAudit schedules the reference audit every day at
// hour:minute in loc and stops the scheduler when ctx is done. Violations are
// logged, never repaired.
func StartIntegrityAudit(ctx context.Context, a Auditor, hour, minute int, loc *time.Location, log logrus.FieldLogger) (*cron.Cron, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(dailyCron(hour, minute), func() { RunAudit(ctx, a, log) }); err != nil {
		return nil, fmt.Errorf("schedule integrity audit: %w", err)
	}
	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}

// dailyCron is the five-field cron expression for hour:minute every day.
func dailyCron(hour, minute int) string {
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

// RunAudit runs one audit and logs the outcome. It reports whether the
// graph was clean.
func RunAudit(ctx context.Context, a Auditor, log logrus.FieldLogger) bool {
	ctx, cancel := context.WithTimeout(ctx, auditTimeout)
	defer cancel()

	start := time.Now()
	r, err := a.Run(ctx)
	if err != nil {
		log.WithError(err).Error("[audit] integrity audit failed")
		return false
	}
	for _, v := range r.Violations {
		log.WithFields(logrus.Fields{"kind": v.Kind, "id": v.ID}).Warn("[audit] " + v.Message)
	}
	log.WithFields(logrus.Fields{
		"checked":    r.Checked,
		"violations": len(r.Violations),
		"took":       time.Since(start).String(),
	}).Info("[audit] integrity audit finished")
	return r.OK()
}
