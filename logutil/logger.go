// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import "log/slog"

// ComponentLogger is a slog.Logger tagged with the component that owns it.
type ComponentLogger struct {
	*slog.Logger
}

// NewLogger returns a logger that adds component=name to every record.
func NewLogger(component string) *ComponentLogger {
	return &ComponentLogger{Logger: Logger().With("component", component)}
}

// WithOperation adds op=name, the file operation or tool being run.
func (l *ComponentLogger) WithOperation(name string) *ComponentLogger {
	return &ComponentLogger{Logger: l.With("op", name)}
}

// WithPath adds the path the operation works on.
func (l *ComponentLogger) WithPath(path string) *ComponentLogger {
	return &ComponentLogger{Logger: l.With("path", path)}
}
