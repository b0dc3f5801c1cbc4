package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"geopunch/internal/events"
	"geopunch/internal/punch"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PresenceKey is the per-company hash of employee id to attendance
// status that dashboards read.
func PresenceKey(companyID string) string {
	return "presence:" + companyID
}

// ConsumeAttendancePunches keeps the Redis presence board in sync with
// accepted punches.
func ConsumeAttendancePunches(
	ctx context.Context,
	reader *kafkago.Reader,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.attendance_punch")
	log.Info("attendance punch consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("attendance punch consumer stopped")
				return
			}
			log.Error("fetch attendance punch message failed", zap.Error(err))
			continue
		}

		var event events.AttendancePunchedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode attendance_punched event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := ApplyPunch(ctx, rdb, event); err != nil {
			log.Error("update presence board failed",
				zap.String("employee_id", event.EmployeeID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit attendance punch message failed", zap.Error(err))
			continue
		}

		log.Info("presence board updated",
			zap.String("employee_id", event.EmployeeID),
			zap.String("company_id", event.CompanyID),
			zap.String("punch_type", event.PunchType),
		)
	}
}

// ApplyPunch writes one punch event onto the presence board.
func ApplyPunch(ctx context.Context, rdb *redis.Client, event events.AttendancePunchedEvent) error {
	status, err := presenceStatus(event.PunchType)
	if err != nil {
		return err
	}
	return rdb.HSet(ctx, PresenceKey(event.CompanyID), event.EmployeeID, status).Err()
}

func presenceStatus(punchType string) (string, error) {
	switch punch.Type(punchType) {
	case punch.TypeCheckIn:
		return string(punch.StatusCheckedIn), nil
	case punch.TypeCheckOut:
		return string(punch.StatusCheckedOut), nil
	default:
		return "", fmt.Errorf("unknown punch type: %s", punchType)
	}
}
