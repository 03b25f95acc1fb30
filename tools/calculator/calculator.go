// Package calculator provides a pure arithmetic tool for the chat model.
package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	"github.com/toolchat-ai/toolchat/pkg/llmutils"
	"github.com/toolchat-ai/toolchat/pkg/schema"
	"github.com/toolchat-ai/toolchat/tools"
)

const ToolName = "calculator"

// Operation names accepted by the tool.
const (
	OpAdd        = "add"
	OpSubtract   = "subtract"
	OpMultiply   = "multiply"
	OpDivide     = "divide"
	OpPower      = "power"
	OpSqrt       = "sqrt"
	OpPercentage = "percentage"
)

// operandCount is the fixed arity of each operation.
var operandCount = map[string]int{
	OpAdd:        2,
	OpSubtract:   2,
	OpMultiply:   2,
	OpDivide:     2,
	OpPower:      2,
	OpSqrt:       1,
	OpPercentage: 2,
}

// Request represents the tool input. Either an operation with operands, or a
// plain expression string such as "5 + 3" or "√16".
type Request struct {
	Operation  string    `json:"operation,omitempty" validate:"omitempty,oneof=add subtract multiply divide power sqrt percentage" jsonschema:"title=Operation,description=The arithmetic operation to perform,enum=add,enum=subtract,enum=multiply,enum=divide,enum=power,enum=sqrt,enum=percentage"`
	Operands   []float64 `json:"operands,omitempty" jsonschema:"title=Operands,description=The numbers to operate on (required when using operation)"`
	Expression string    `json:"expression,omitempty" jsonschema:"title=Expression,description=Alternative: a mathematical expression string (e.g. '5 + 3'\\, '10 * 2'\\, '√16')"`
}

// Result represents the outcome of one calculation.
type Result struct {
	Operation  string    `json:"operation"`
	Operands   []float64 `json:"operands"`
	Result     float64   `json:"result"`
	Expression string    `json:"expression"`
}

func (r *Result) String() string {
	return fmt.Sprintf("%s = %s", r.Expression, formatNumber(r.Result))
}

// Tool performs basic arithmetic. It is pure and deterministic: the same
// request always yields the same result.
type Tool struct {
	name        string
	description string
	params      *jsonschema.Schema
}

var _ tools.Tool[Request, Result] = (*Tool)(nil)

func New() (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(Request{}))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Perform basic arithmetic calculations including addition, subtraction, multiplication, division, power, square root, and percentage calculations",
		params:      sc.Parameters,
	}, nil
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() *jsonschema.Schema {
	return t.params
}

func (t *Tool) Run(_ context.Context, req *Request) (*Result, error) {
	if req.Expression != "" {
		return t.parseExpression(req.Expression)
	}
	if req.Operation == "" || len(req.Operands) == 0 {
		return nil, &tools.ArgumentError{
			Tool:   t.name,
			Reason: "either expression or (operation + operands) must be provided",
		}
	}
	return t.execute(req.Operation, req.Operands)
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req Request
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithMessage(tools.ErrFailedUnmarshalInput, err.Error())
	}
	if err := schema.Validate(&req); err != nil {
		return "", &tools.ArgumentError{Tool: t.name, Reason: err.Error()}
	}
	res, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

func (t *Tool) execute(op string, operands []float64) (*Result, error) {
	want, ok := operandCount[op]
	if !ok {
		return nil, &tools.ArgumentError{Tool: t.name, Reason: fmt.Sprintf("unsupported operation: %s", op)}
	}
	if len(operands) != want {
		return nil, &tools.ArgumentError{
			Tool:   t.name,
			Reason: fmt.Sprintf("operation %s requires exactly %d operand(s), got %d", op, want, len(operands)),
		}
	}

	var result float64
	var expression string

	switch op {
	case OpAdd:
		result = operands[0] + operands[1]
		expression = fmt.Sprintf("%s + %s", formatNumber(operands[0]), formatNumber(operands[1]))
	case OpSubtract:
		result = operands[0] - operands[1]
		expression = fmt.Sprintf("%s - %s", formatNumber(operands[0]), formatNumber(operands[1]))
	case OpMultiply:
		result = operands[0] * operands[1]
		expression = fmt.Sprintf("%s × %s", formatNumber(operands[0]), formatNumber(operands[1]))
	case OpDivide:
		if operands[1] == 0 {
			return nil, &tools.ArgumentError{Tool: t.name, Reason: "division by zero is not allowed"}
		}
		result = operands[0] / operands[1]
		expression = fmt.Sprintf("%s ÷ %s", formatNumber(operands[0]), formatNumber(operands[1]))
	case OpPower:
		result = math.Pow(operands[0], operands[1])
		expression = fmt.Sprintf("%s ^ %s", formatNumber(operands[0]), formatNumber(operands[1]))
	case OpSqrt:
		if operands[0] < 0 {
			return nil, &tools.ArgumentError{Tool: t.name, Reason: "cannot calculate square root of negative number"}
		}
		result = math.Sqrt(operands[0])
		expression = fmt.Sprintf("√%s", formatNumber(operands[0]))
	case OpPercentage:
		result = operands[0] * operands[1] / 100
		expression = fmt.Sprintf("%s%% of %s", formatNumber(operands[1]), formatNumber(operands[0]))
	}

	return &Result{
		Operation:  op,
		Operands:   operands,
		Result:     result,
		Expression: expression,
	}, nil
}

// Patterns for expression strings, one per operation.
// Subtraction is matched last so that "5+-3" binds to addition.
var expressionPatterns = []struct {
	op      string
	pattern *regexp.Regexp
}{
	{OpAdd, regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\+(-?\d+(?:\.\d+)?)$`)},
	{OpMultiply, regexp.MustCompile(`^(-?\d+(?:\.\d+)?)[×*](-?\d+(?:\.\d+)?)$`)},
	{OpDivide, regexp.MustCompile(`^(-?\d+(?:\.\d+)?)[÷/](-?\d+(?:\.\d+)?)$`)},
	{OpPower, regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\^(-?\d+(?:\.\d+)?)$`)},
	{OpSqrt, regexp.MustCompile(`^√(-?\d+(?:\.\d+)?)$`)},
	{OpPercentage, regexp.MustCompile(`^(-?\d+(?:\.\d+)?)%[oO][fF](-?\d+(?:\.\d+)?)$`)},
	{OpSubtract, regexp.MustCompile(`^(-?\d+(?:\.\d+)?)-(-?\d+(?:\.\d+)?)$`)},
}

func (t *Tool) parseExpression(expression string) (*Result, error) {
	clean := strings.Join(strings.Fields(expression), "")

	for _, p := range expressionPatterns {
		m := p.pattern.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		operands := make([]float64, 0, len(m)-1)
		for _, s := range m[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, &tools.ArgumentError{Tool: t.name, Reason: fmt.Sprintf("invalid number %q in expression", s)}
			}
			operands = append(operands, v)
		}
		if p.op == OpPercentage {
			// "20% of 50": the value comes second in the expression form
			operands[0], operands[1] = operands[1], operands[0]
		}
		return t.execute(p.op, operands)
	}

	return nil, &tools.ArgumentError{Tool: t.name, Reason: fmt.Sprintf("unable to parse expression: %s", expression)}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
