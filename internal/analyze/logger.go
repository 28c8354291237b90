package analyze

import "go.uber.org/zap"

var logger = zap.NewNop()

// SetLogger installs the logger used by this package. Passing nil
// restores the no-op default.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger = zap.NewNop()
		return
	}

	logger = l
}
