// Package jobs holds the queued background work of the shop.
package jobs

import (
	"context"

	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/mail"
	"github.com/diamantrouge/maison/pkg/metrics"
	"github.com/diamantrouge/maison/pkg/queue"
)

// Register makes every job type known to the queue workers.
func Register() {
	queue.Register(func() queue.Job { return &SendMail{} })
}

// SendMail delivers one email. Template wins over Body when set.
type SendMail struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Body     string         `json:"body,omitempty"`
}

func (*SendMail) JobName() string { return "mail.send" }

func (j *SendMail) Handle(ctx context.Context) error {
	msg := mail.To(j.To).WithSubject(j.Subject)
	if j.Template != "" {
		msg = msg.Template(j.Template, j.Data)
	} else {
		msg = msg.HTML(j.Body)
	}

	tmpl := j.Template
	if tmpl == "" {
		tmpl = "inline"
	}
	if err := msg.Send(ctx); err != nil {
		metrics.MailsSent.WithLabelValues(tmpl, "failed").Inc()
		return err
	}
	metrics.MailsSent.WithLabelValues(tmpl, "sent").Inc()
	logger.WithCtx(ctx).Info("mail: sent", "template", tmpl, "to", j.To)
	return nil
}

// QueueMail dispatches a SendMail job and logs, rather than returns, a
// dispatch failure: mail never fails the request that triggered it.
func QueueMail(ctx context.Context, j *SendMail) {
	if err := queue.Dispatch(ctx, j); err != nil {
		logger.WithCtx(ctx).Error("mail: dispatch failed", "to", j.To, "subject", j.Subject, "error", err)
	}
}
