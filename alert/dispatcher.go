package alert

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mlgruby/nixmedic/health"
	"github.com/mlgruby/nixmedic/observe"
	"github.com/mlgruby/nixmedic/report"
)

// DispatcherConfig configures the alert dispatcher.
type DispatcherConfig struct {
	// HookURL is the optional webhook POSTed on critical issues.
	// Empty disables the hook; the alerts log entry is always written.
	HookURL string

	// HookTimeout bounds one webhook call. Default: 10 seconds
	HookTimeout time.Duration

	// HookRetries is how many times a failed call is retried. Default: 2
	HookRetries int
}

// Outcome reports what the dispatcher did for one run.
type Outcome struct {
	// Dispatched is true when critical issues were present and an alert
	// was raised.
	Dispatched bool

	// HookNotified is true when the webhook accepted the payload.
	HookNotified bool

	// HookErr is the best-effort webhook failure, if any.
	HookErr error
}

// hookPayload is the JSON body POSTed to the webhook.
type hookPayload struct {
	Host      string    `json:"host"`
	Run       string    `json:"run"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Issues    []string  `json:"issues"`
}

// Dispatcher raises alerts for critical issues.
type Dispatcher struct {
	config DispatcherConfig
	client *resty.Client
	writer *report.Writer
	logger observe.Logger
}

// NewDispatcher creates an alert dispatcher writing through the given
// report writer.
func NewDispatcher(config DispatcherConfig, writer *report.Writer, logger observe.Logger) *Dispatcher {
	if config.HookTimeout <= 0 {
		config.HookTimeout = 10 * time.Second
	}
	if config.HookRetries < 0 {
		config.HookRetries = 0
	} else if config.HookRetries == 0 {
		config.HookRetries = 2
	}
	if logger == nil {
		logger = observe.NewNopLogger()
	}

	client := resty.New().
		SetTimeout(config.HookTimeout).
		SetRetryCount(config.HookRetries).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Dispatcher{
		config: config,
		client: client,
		writer: writer,
		logger: logger,
	}
}

// Dispatch raises an alert when the record carries critical issues. The
// returned error covers only the alerts log write, which is infrastructure;
// webhook failure lands in the outcome and is logged.
func (d *Dispatcher) Dispatch(ctx context.Context, rec *report.RunRecord) (Outcome, error) {
	var critical []health.Issue
	for _, issue := range rec.Issues {
		if issue.Severity == health.SeverityCritical {
			critical = append(critical, issue)
		}
	}
	if len(critical) == 0 {
		return Outcome{}, nil
	}

	messages := make([]string, len(critical))
	for i, issue := range critical {
		messages[i] = issue.Message
	}

	entry := fmt.Sprintf("run=%s status=%s %s", rec.ID, rec.Status, strings.Join(messages, "; "))
	if err := d.writer.Append(report.CategoryAlerts, "CRITICAL", entry); err != nil {
		return Outcome{Dispatched: true}, err
	}

	outcome := Outcome{Dispatched: true}

	if d.config.HookURL != "" {
		if err := d.notifyHook(ctx, rec, messages); err != nil {
			outcome.HookErr = err
			d.logger.Warn(ctx, "alert hook failed",
				observe.Field{Key: "url", Value: d.config.HookURL},
				observe.Field{Key: "error", Value: err.Error()},
			)
		} else {
			outcome.HookNotified = true
		}
	}

	return outcome, nil
}

func (d *Dispatcher) notifyHook(ctx context.Context, rec *report.RunRecord, messages []string) error {
	host, _ := os.Hostname()

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(hookPayload{
			Host:      host,
			Run:       rec.ID,
			Timestamp: rec.Timestamp,
			Status:    rec.Status.String(),
			Issues:    messages,
		}).
		Post(d.config.HookURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("alert: hook returned %s", resp.Status())
	}
	return nil
}
