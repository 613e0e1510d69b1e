package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldOwner is the structured log field key for the profile owner.
	FieldOwner = "owner"
	// FieldSource is the structured log field key for the job source name.
	FieldSource = "job_source"
	// FieldModel is the structured log field key for the model identifier.
	FieldModel = "model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger, defaulting to
// a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// RunFields returns the standard fields describing one scheduled-search run.
// Empty values are ignored to keep log entries compact.
func RunFields(owner, source string) []zap.Field {
	return StringFields(
		StringField{Key: FieldOwner, Value: owner},
		StringField{Key: FieldSource, Value: source},
	)
}

// WithRunFields attaches the run fields to the provided logger.
func WithRunFields(logger *zap.Logger, owner, source string) *zap.Logger {
	return WithFields(logger, RunFields(owner, source)...)
}
