package candidatematcher

var _ Logger = DiscardLogger{}

// DiscardLogger drops every message. It is the default for matchers and loaders
// built without an explicit logger.
type DiscardLogger struct{}

func (DiscardLogger) Debug(...any) {}

func (DiscardLogger) Info(...any) {}

func (DiscardLogger) Warn(...any) {}

func (DiscardLogger) Error(...any) {}

func (DiscardLogger) Debugf(string, ...any) {}

func (DiscardLogger) Infof(string, ...any) {}

func (DiscardLogger) Warnf(string, ...any) {}

func (DiscardLogger) Errorf(string, ...any) {}

// orDiscard substitutes DiscardLogger for a nil logger.
func orDiscard(logger Logger) Logger {
	if logger == nil {
		return DiscardLogger{}
	}
	return logger
}
