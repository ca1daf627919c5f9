package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	logx "github.com/erpbot/server/pkg/logger"
)

const dateLayout = "2006-01-02"

// erpTool adapts a string-in/string-out handler to tool.InvokableTool.
// Handlers report domain failures in the returned text, so InvokableRun
// never fails.
type erpTool struct {
	info *schema.ToolInfo
	run  func(ctx context.Context, args string) string
}

var _ tool.InvokableTool = (*erpTool)(nil)

func (t *erpTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return t.info, nil
}

func (t *erpTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	out := t.run(ctx, argumentsInJSON)
	logx.Debug().Str("tool", t.info.Name).Str("result", out).Msg("tool finished")
	return out, nil
}

// decodeArgs unmarshals a JSON object. Blank input decodes as {} when
// allowEmpty is set.
func decodeArgs(args string, dst any, allowEmpty bool) error {
	args = strings.TrimSpace(args)
	if args == "" {
		if allowEmpty {
			return nil
		}
		return errors.New("empty arguments")
	}
	return json.Unmarshal([]byte(args), dst)
}

// flag accepts true/false, 0/1 and their string forms.
type flag struct {
	set   bool
	value bool
}

func (f *flag) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	switch strings.ToLower(s) {
	case "", "null":
		return nil
	case "true", "yes", "si", "sí":
		f.set, f.value = true, true
		return nil
	case "false", "no":
		f.set, f.value = true, false
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid flag %q", s)
	}
	f.set, f.value = true, n != 0
	return nil
}

func (f flag) or(def bool) bool {
	if f.set {
		return f.value
	}
	return def
}

func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", field, v)
	}
	return t, nil
}

// looksLikeObject reports whether s is meant as a JSON object.
func looksLikeObject(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "{")
}

func toJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(b)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

// NormalizeArguments repairs argument payloads before they reach a tool.
// A single-key object whose value is a JSON object encoded as a string is
// unwrapped, so {"cliente": "{\"customer_name\": \"Ana\"}"} becomes
// {"customer_name": "Ana"}. Top-level strings are trimmed. Anything that is
// not a JSON object is returned unchanged.
func NormalizeArguments(arguments string) string {
	m, err := decodeObject(arguments)
	if err != nil {
		return arguments
	}
	if len(m) == 1 {
		for _, v := range m {
			if s, ok := v.(string); ok {
				if inner, err := decodeObject(s); err == nil {
					m = inner
				}
			}
		}
	}
	for k, v := range m {
		if s, ok := v.(string); ok {
			m[k] = strings.TrimSpace(s)
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return arguments
	}
	return string(b)
}

// decodeObject keeps numbers as json.Number so amounts survive re-encoding.
func decodeObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(s)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("not a JSON object")
	}
	return m, nil
}
