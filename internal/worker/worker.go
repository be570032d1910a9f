package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/visitrack/backend/config"
	"github.com/visitrack/backend/internal/messages"
	"github.com/visitrack/backend/pkg/queue"
)

// EmailProcessor consumes badge-email jobs: renders the visitor's QR badge,
// sends the confirmation over SMTP and records the outcome on the message log.
type EmailProcessor struct {
	jobs        *queue.Queue
	messageRepo *messages.Repository
	dialer      *gomail.Dialer
	cfg         config.SMTPConfig
	logger      *zap.Logger
}

// NewEmailProcessor creates the processor with a dialer for the configured
// SMTP host.
func NewEmailProcessor(jobs *queue.Queue, messageRepo *messages.Repository, cfg config.SMTPConfig, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{
		jobs:        jobs,
		messageRepo: messageRepo,
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		cfg:         cfg,
		logger:      logger,
	}
}

// Run dequeues and processes jobs until ctx is cancelled.
func (p *EmailProcessor) Run(ctx context.Context) error {
	p.logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return ctx.Err()
		default:
		}

		job, _, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}
		p.handle(ctx, job)
	}
}

func (p *EmailProcessor) handle(ctx context.Context, job *queue.Job) {
	if job.Type != queue.JobTypeBadgeEmail {
		p.logger.Warn("unknown job type", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		return
	}
	var payload queue.BadgeEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		p.logger.Error("invalid badge email payload", zap.Error(err), zap.String("job_id", job.ID))
		return
	}

	if err := p.sendBadgeEmail(payload); err != nil {
		p.logger.Error("send badge email failed", zap.Error(err),
			zap.String("job_id", job.ID),
			zap.String("recipient", payload.RecipientEmail),
			zap.Int("attempt", job.Attempt))
		if job.Attempt+1 >= queue.MaxRetries {
			if dbErr := p.messageRepo.MarkFailed(ctx, payload.MessageLogID, err.Error()); dbErr != nil {
				p.logger.Error("mark message failed errored", zap.Error(dbErr))
			}
		} else {
			select {
			case <-time.After(queue.RetryBackoff):
			case <-ctx.Done():
				return
			}
		}
		if err := p.jobs.Retry(ctx, job); err != nil {
			p.logger.Error("retry enqueue failed", zap.Error(err), zap.String("job_id", job.ID))
		}
		return
	}

	if err := p.messageRepo.MarkSent(ctx, payload.MessageLogID); err != nil {
		p.logger.Error("mark message sent failed", zap.Error(err), zap.String("job_id", job.ID))
	}
	p.logger.Info("badge email sent",
		zap.String("job_id", job.ID),
		zap.String("recipient", payload.RecipientEmail))
}

// sendBadgeEmail renders the QR badge and sends it as an inline attachment.
func (p *EmailProcessor) sendBadgeEmail(payload queue.BadgeEmailPayload) error {
	png, err := qrcode.Encode(payload.VisitorID.String(), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("render qr: %w", err)
	}

	subject := "Your badge"
	if payload.EventTitle != "" {
		subject = "Your badge for " + payload.EventTitle
	}
	name := payload.RecipientName
	if name == "" {
		name = "there"
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.cfg.FromAddress, p.cfg.FromName)
	m.SetHeader("To", payload.RecipientEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Thanks for registering for <strong>%s</strong>. Your badge QR code is attached; present it at the entrance to check in.</p>
<p><img src="cid:badge.png" alt="badge qr"></p>`,
		name, payload.EventTitle))
	m.Embed("badge.png", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(png)
		return err
	}))

	return p.dialer.DialAndSend(m)
}
