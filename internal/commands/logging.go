package commands

import (
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const commandModuleRoot = "blog.commands"

// CommandLogger resolves a logger for a command module. The returned logger
// carries the module name so handler output can be traced back to the message
// set that produced it.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := commandModuleRoot
	if module != "" {
		name = commandModuleRoot + "." + module
	}
	logger := logging.ModuleLogger(provider, name)
	fields := map[string]any{"component": "command"}
	if module != "" {
		fields["command_module"] = module
	}
	return logging.WithFields(logger, fields)
}
