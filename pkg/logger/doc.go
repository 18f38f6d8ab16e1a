// Package logger builds *slog.Logger instances for contactguard services.
//
// New selects a text or JSON handler, applies static attributes and wraps the
// handler with LogHandlerDecorator so request-scoped values (request id, client
// identifier) are pulled from context.Context on every record.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "contactform"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
// Attribute helpers in attr.go (Error, Component, ClientID, Action, Field,
// EventType) keep key names consistent across packages. Error returns an
// empty attribute for nil errors so it can be passed unconditionally.
package logger
