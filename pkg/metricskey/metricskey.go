package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	StatsTurnsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_turns_succeeded",
		Help:         "stats_turns_succeeded provides total conversation turns completed",
		RequiredTags: []string{"model"},
	}

	StatsTurnsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_turns_failed",
		Help:         "stats_turns_failed provides total conversation turns failed",
		RequiredTags: []string{"model"},
	}

	StatsProviderCalls = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_provider_calls",
		Help:         "stats_provider_calls provides total calls to the model provider",
		RequiredTags: []string{"model"},
	}

	StatsProviderCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_provider_calls_failed",
		Help:         "stats_provider_calls_failed provides total failed calls to the model provider",
		RequiredTags: []string{"model"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls to unknown tools",
		RequiredTags: []string{"tool"},
	}
)

// Perf
var (
	PerfTurn = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_turn",
		Help:         "perf_turn provides duration of a conversation turn",
		RequiredTags: []string{"model"},
	}

	PerfProviderCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_provider_call",
		Help:         "perf_provider_call provides duration of a model provider call",
		RequiredTags: []string{"model"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of a tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfProviderCall,
	&PerfToolCall,
	&PerfTurn,
	&StatsProviderCalls,
	&StatsProviderCallsFailed,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
	&StatsTurnsFailed,
	&StatsTurnsSucceeded,
}
