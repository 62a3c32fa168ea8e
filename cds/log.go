package cds

import "go.uber.org/zap"

// logger is the package-wide diagnostic sink. The core performs no other
// I/O; every failure is reported here with the object path, the operation
// and the reason, in addition to being returned to the caller.
var logger = zap.NewNop()

// SetLogger directs failure diagnostics to l. Passing nil restores the
// default no-op sink.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// logFailure emits one structured record for a failed operation.
func logFailure(op, path string, err error) {
	logger.Warn(op,
		zap.String("object", path),
		zap.Error(err),
	)
}
