package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/papercomputeco/stackchat/pkg/llm"
)

// CalendarEventTool is the name of the built-in calendar tool.
const CalendarEventTool = "create_calendar_event"

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// CalendarEvent returns the built-in create_calendar_event function. Events
// are validated and confirmed, not stored.
func CalendarEvent() Function {
	return Function{
		Def: llm.ToolDef{
			ToolName:    CalendarEventTool,
			Description: "Create a new calendar event.",
			Parameters: map[string]llm.ToolParamDef{
				"title": {
					ParamType:   "string",
					Description: "Title of the event.",
					Required:    true,
				},
				"start_date": {
					ParamType:   "string",
					Description: "Start date of the event in yyyy-MM-dd format.",
					Required:    true,
				},
				"time": {
					ParamType:   "string",
					Description: "Start time of the event in 24 hour HH:mm format.",
					Required:    true,
				},
				"location": {
					ParamType:   "string",
					Description: "Location of the event.",
				},
				"duration": {
					ParamType:   "string",
					Description: "Duration of the event in hh:mm format.",
				},
			},
		},
		Call: createCalendarEvent,
	}
}

func createCalendarEvent(_ context.Context, args map[string]any) (string, error) {
	title := stringArg(args, "title")
	date := stringArg(args, "start_date")
	clock := stringArg(args, "time")

	start, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid start %q %q: %w", date, clock, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Created calendar event %q on %s at %s", title, start.Format(dateLayout), start.Format(timeLayout))
	if duration := stringArg(args, "duration"); duration != "" {
		fmt.Fprintf(&b, " for %s", duration)
	}
	if location := stringArg(args, "location"); location != "" {
		fmt.Fprintf(&b, " at %s", location)
	}
	return b.String(), nil
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

// RegisterBuiltins adds the built-in functions to r.
func RegisterBuiltins(r *Registry) error {
	return r.Register(CalendarEvent())
}
