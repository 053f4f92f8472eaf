package planner

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

const EmailQueue = "email_queue"

// MailReporter 把排班报告作为邮件消息投递到 rabbitmq，由 mail worker 发送
type MailReporter struct {
	channel        *amqp.Channel
	recipient      string
	publishTimeout time.Duration
}

func NewMailReporter(ch *amqp.Channel, recipient string, publishTimeout time.Duration) *MailReporter {
	return &MailReporter{
		channel:        ch,
		recipient:      recipient,
		publishTimeout: publishTimeout,
	}
}

func NewReportMail(recipient string, report *domain.SolveReport) domain.MailMessage {
	objective := "-"
	if report.Objective != nil {
		objective = strconv.FormatInt(*report.Objective, 10)
	}
	return domain.MailMessage{
		Type: domain.MailTypeSolveReport,
		To:   recipient,
		Data: domain.SolveReportMailData{
			LocationName:     report.LocationName,
			Status:           string(report.Status),
			Objective:        objective,
			AssignmentsCount: report.AssignmentsCount,
			CycleStart:       report.CycleStart.Format(time.DateOnly),
			Duration:         report.Duration,
		},
	}
}

func (r *MailReporter) Report(ctx context.Context, report *domain.SolveReport) error {
	body, err := json.Marshal(NewReportMail(r.recipient, report))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.publishTimeout)
	defer cancel()

	return r.channel.PublishWithContext(
		ctx,
		"",
		EmailQueue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
