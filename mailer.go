package accounts

import "context"

type noopMailer struct{}

func (noopMailer) SendActivationKey(context.Context, string, string) error {
	return nil
}

// LogMailer is an ActivationMailer that only logs the dispatch. Useful in
// development and tests; production wiring should provide a real transport.
type LogMailer struct {
	logger Logger
}

// NewLogMailer returns a mailer that records dispatches on the given logger
func NewLogMailer(logger Logger) *LogMailer {
	return &LogMailer{logger: resolveLogger(logger)}
}

// SendActivationKey logs the dispatch. The key itself stays out of the log
// line; it is a credential.
func (m *LogMailer) SendActivationKey(ctx context.Context, email, registrationKey string) error {
	m.logger.Info("dispatching activation key", "email", email)
	return nil
}

func normalizeMailer(m ActivationMailer) ActivationMailer {
	if m == nil {
		return noopMailer{}
	}
	return m
}
