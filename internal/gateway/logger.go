package gateway

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Logger provides structured logging for gateway events
type Logger struct {
	logger *zap.Logger
}

// NewLogger creates a new gateway logger
func NewLogger() *Logger {
	return &Logger{
		logger: zap.L().With(zap.String("component", "gateway")),
	}
}

// Info logs info level event
func (l *Logger) Info(event string, accountID uuid.UUID, connectionID string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("account_id", accountID.String()),
		zap.String("connection_id", connectionID),
	}, fields...)
	l.logger.Info("gateway_event", allFields...)
}

// Error logs error level event
func (l *Logger) Error(event string, accountID uuid.UUID, connectionID string, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("account_id", accountID.String()),
		zap.String("connection_id", connectionID),
		zap.Error(err),
	}, fields...)
	l.logger.Error("gateway_error", allFields...)
}

// Warn logs warning level event
func (l *Logger) Warn(event string, accountID uuid.UUID, connectionID string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("account_id", accountID.String()),
		zap.String("connection_id", connectionID),
	}, fields...)
	l.logger.Warn("gateway_warning", allFields...)
}
