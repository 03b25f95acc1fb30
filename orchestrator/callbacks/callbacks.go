// Package callbacks provides ready-made orchestrator callback handlers.
package callbacks

import (
	"context"
	"fmt"
	"io"

	"github.com/effective-security/xlog"
	"github.com/toolchat-ai/toolchat/orchestrator"
)

// NoopCallback does nothing.
type NoopCallback struct{}

func NewNoopCallback() *NoopCallback {
	return &NoopCallback{}
}

var _ orchestrator.Callback = (*NoopCallback)(nil)

func (l *NoopCallback) OnTurnStart(ctx context.Context, conversationID, utterance string) {}
func (l *NoopCallback) OnTurnEnd(ctx context.Context, conversationID, reply string)       {}
func (l *NoopCallback) OnTurnError(ctx context.Context, conversationID string, err error) {}
func (l *NoopCallback) OnToolStart(ctx context.Context, tool, input string)               {}
func (l *NoopCallback) OnToolEnd(ctx context.Context, tool, input, output string)         {}
func (l *NoopCallback) OnToolError(ctx context.Context, tool, input string, err error)    {}

// PrinterCallback is a callback handler that prints to the Writer.
type PrinterCallback struct {
	Out io.Writer
}

func NewPrinterCallback(out io.Writer) *PrinterCallback {
	return &PrinterCallback{Out: out}
}

var _ orchestrator.Callback = (*PrinterCallback)(nil)

func (l *PrinterCallback) OnTurnStart(ctx context.Context, conversationID, utterance string) {
	fmt.Fprintf(l.Out, "Turn Start: %s\n", conversationID)
	fmt.Fprintf(l.Out, "Input: %s\n", utterance)
}

func (l *PrinterCallback) OnTurnEnd(ctx context.Context, conversationID, reply string) {
	fmt.Fprintf(l.Out, "Turn End: %s\n", conversationID)
	fmt.Fprintln(l.Out, reply)
}

func (l *PrinterCallback) OnTurnError(ctx context.Context, conversationID string, err error) {
	fmt.Fprintf(l.Out, "Turn Error: %s: %s\n", conversationID, err.Error())
}

func (l *PrinterCallback) OnToolStart(ctx context.Context, tool, input string) {
	fmt.Fprintf(l.Out, "Tool Start: %s\n", tool)
	fmt.Fprintf(l.Out, "Input: %s\n", input)
}

func (l *PrinterCallback) OnToolEnd(ctx context.Context, tool, input, output string) {
	fmt.Fprintf(l.Out, "Tool End: %s\n", tool)
	fmt.Fprintf(l.Out, "Output: %s\n", output)
}

func (l *PrinterCallback) OnToolError(ctx context.Context, tool, input string, err error) {
	fmt.Fprintf(l.Out, "Tool Error: %s: %s\n", tool, err.Error())
}

// PackageLoggerCallback is a callback handler that prints to the logger.
type PackageLoggerCallback struct {
	logger *xlog.PackageLogger
}

func NewPackageLoggerCallback(logger *xlog.PackageLogger) *PackageLoggerCallback {
	return &PackageLoggerCallback{logger: logger}
}

var _ orchestrator.Callback = (*PackageLoggerCallback)(nil)

func (l *PackageLoggerCallback) OnTurnStart(ctx context.Context, conversationID, utterance string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "turn_start",
		"conversation", conversationID,
		"input", utterance,
	)
}

func (l *PackageLoggerCallback) OnTurnEnd(ctx context.Context, conversationID, reply string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "turn_end",
		"conversation", conversationID,
		"reply", reply,
	)
}

func (l *PackageLoggerCallback) OnTurnError(ctx context.Context, conversationID string, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "turn_error",
		"conversation", conversationID,
		"err", err.Error(),
	)
}

func (l *PackageLoggerCallback) OnToolStart(ctx context.Context, tool, input string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"tool", tool,
		"input", input,
	)
}

func (l *PackageLoggerCallback) OnToolEnd(ctx context.Context, tool, input, output string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"tool", tool,
		"output", output,
	)
}

func (l *PackageLoggerCallback) OnToolError(ctx context.Context, tool, input string, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_error",
		"tool", tool,
		"err", err.Error(),
	)
}

// FanoutCallback dispatches each event to every handler in order.
type FanoutCallback struct {
	handlers []orchestrator.Callback
}

func NewFanoutCallback(handlers ...orchestrator.Callback) *FanoutCallback {
	return &FanoutCallback{handlers: handlers}
}

var _ orchestrator.Callback = (*FanoutCallback)(nil)

func (l *FanoutCallback) OnTurnStart(ctx context.Context, conversationID, utterance string) {
	for _, h := range l.handlers {
		h.OnTurnStart(ctx, conversationID, utterance)
	}
}

func (l *FanoutCallback) OnTurnEnd(ctx context.Context, conversationID, reply string) {
	for _, h := range l.handlers {
		h.OnTurnEnd(ctx, conversationID, reply)
	}
}

func (l *FanoutCallback) OnTurnError(ctx context.Context, conversationID string, err error) {
	for _, h := range l.handlers {
		h.OnTurnError(ctx, conversationID, err)
	}
}

func (l *FanoutCallback) OnToolStart(ctx context.Context, tool, input string) {
	for _, h := range l.handlers {
		h.OnToolStart(ctx, tool, input)
	}
}

func (l *FanoutCallback) OnToolEnd(ctx context.Context, tool, input, output string) {
	for _, h := range l.handlers {
		h.OnToolEnd(ctx, tool, input, output)
	}
}

func (l *FanoutCallback) OnToolError(ctx context.Context, tool, input string, err error) {
	for _, h := range l.handlers {
		h.OnToolError(ctx, tool, input, err)
	}
}
