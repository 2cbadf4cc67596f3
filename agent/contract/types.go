package contract

import (
	"sort"
	"strings"
	"time"
)

type Intent string

const (
	IntentCalculator    Intent = "calculator"
	IntentProductSearch Intent = "product_search"
	IntentOutletQuery   Intent = "outlet_query"
	IntentGeneralChat   Intent = "general_chat"
	IntentReset         Intent = "reset"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentCalculator, IntentProductSearch, IntentOutletQuery, IntentGeneralChat, IntentReset:
		return true
	default:
		return false
	}
}

// RequiredSlot returns the slot an intent cannot run without.
func (i Intent) RequiredSlot() (string, bool) {
	switch i {
	case IntentCalculator:
		return SlotExpression, true
	case IntentProductSearch, IntentOutletQuery:
		return SlotQuery, true
	default:
		return "", false
	}
}

type Action string

const (
	ActionResetMemory      Action = "reset_memory"
	ActionAskClarification Action = "ask_clarification"
	ActionCallCalculator   Action = "call_calculator"
	ActionCallProducts     Action = "call_products"
	ActionCallOutlets      Action = "call_outlets"
	ActionGeneralResponse  Action = "general_response"
)

// IsToolCall reports whether the action invokes one of the external tools.
func (a Action) IsToolCall() bool {
	return a == ActionCallCalculator || a == ActionCallProducts || a == ActionCallOutlets
}

type Followup string

const (
	FollowupHours     Followup = "hours"
	FollowupOpenTime  Followup = "open_time"
	FollowupCloseTime Followup = "close_time"
	FollowupServices  Followup = "services"
	FollowupLocation  Followup = "location"
)

func (f Followup) Valid() bool {
	switch f {
	case FollowupHours, FollowupOpenTime, FollowupCloseTime, FollowupServices, FollowupLocation:
		return true
	default:
		return false
	}
}

const (
	SlotExpression = "expression"
	SlotQuery      = "query"
	SlotFollowup   = "followup"
	SlotReference  = "reference"
)

// Slots holds the well-known slot values. Anything else a model backend
// returns lands in Extra.
type Slots struct {
	Expression string         `json:"expression,omitempty"`
	Query      string         `json:"query,omitempty"`
	Followup   Followup       `json:"followup,omitempty"`
	Reference  string         `json:"reference,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

func (s *Slots) Set(key string, val any) {
	switch key {
	case SlotExpression:
		s.Expression = stringValue(val)
	case SlotQuery:
		s.Query = stringValue(val)
	case SlotFollowup:
		s.Followup = Followup(stringValue(val))
	case SlotReference:
		s.Reference = stringValue(val)
	default:
		if s.Extra == nil {
			s.Extra = make(map[string]any, 4)
		}
		s.Extra[key] = val
	}
}

func (s Slots) Get(key string) (any, bool) {
	switch key {
	case SlotExpression:
		return s.Expression, s.Expression != ""
	case SlotQuery:
		return s.Query, s.Query != ""
	case SlotFollowup:
		return string(s.Followup), s.Followup != ""
	case SlotReference:
		return s.Reference, s.Reference != ""
	default:
		v, ok := s.Extra[key]
		return v, ok
	}
}

// Merge copies every set value of other over s (last write wins).
func (s *Slots) Merge(other Slots) {
	for k, v := range other.Map() {
		s.Set(k, v)
	}
}

func (s Slots) Map() map[string]any {
	out := make(map[string]any, 4+len(s.Extra))
	for k, v := range s.Extra {
		out[k] = v
	}
	if s.Expression != "" {
		out[SlotExpression] = s.Expression
	}
	if s.Query != "" {
		out[SlotQuery] = s.Query
	}
	if s.Followup != "" {
		out[SlotFollowup] = string(s.Followup)
	}
	if s.Reference != "" {
		out[SlotReference] = s.Reference
	}
	return out
}

func (s Slots) IsZero() bool {
	return s.Expression == "" && s.Query == "" && s.Followup == "" && s.Reference == "" && len(s.Extra) == 0
}

func (s Slots) Clone() Slots {
	out := s
	if s.Extra != nil {
		out.Extra = make(map[string]any, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case Followup:
		return string(t)
	default:
		return ""
	}
}

type IntentResult struct {
	Intent       Intent   `json:"intent"`
	Confidence   float64  `json:"confidence"`
	Slots        Slots    `json:"slots"`
	MissingSlots []string `json:"missing_slots"`
}

// NeedsClarification is true whenever a required slot is missing.
func (r IntentResult) NeedsClarification() bool {
	return len(r.MissingSlots) > 0
}

// Outlet is owned by the outlet service; the dialogue core only reads it.
type Outlet struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	District string   `json:"district,omitempty"`
	Hours    string   `json:"hours,omitempty"`
	Services string   `json:"services,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
}

type Product struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price,omitempty"`
	URL         string `json:"url,omitempty"`
}

type CalculatorRequest struct {
	Expression string `json:"expression"`
}

type CalculatorResponse struct {
	Result *float64 `json:"result"`
	Error  string   `json:"error,omitempty"`
}

type ProductSearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type ProductSearchResponse struct {
	Results []Product `json:"results"`
	Summary string    `json:"summary,omitempty"`
}

type OutletQueryRequest struct {
	NaturalLanguageQuery string `json:"query"`
}

type OutletQueryResponse struct {
	Results        []Outlet `json:"results"`
	GeneratedQuery string   `json:"sql_query,omitempty"`
}

type ToolOutput struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	// Cause is ErrCircuitOpen, ErrToolTimeout or ErrToolFailure when the
	// call itself failed; nil for results reported by the tool.
	Cause error `json:"-"`
}

type ToolCallRecord struct {
	Tool   string         `json:"tool"`
	Input  map[string]any `json:"input"`
	Output ToolOutput     `json:"output"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type HistoryEntry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type MemorySummary struct {
	Slots         map[string]any `json:"slots"`
	ContextKeys   []string       `json:"context_keys"`
	HistoryLength int            `json:"history_length"`
	LastUpdated   time.Time      `json:"last_updated"`
}

// SortedKeys returns the keys of a context bag in a stable order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type TurnRequest struct {
	Message string         `json:"message"`
	History []HistoryEntry `json:"history,omitempty"`
}

type TurnResult struct {
	Response  string           `json:"response"`
	ToolCalls []ToolCallRecord `json:"tool_calls,omitempty"`
	Intent    Intent           `json:"intent"`
	Memory    MemorySummary    `json:"memory"`
}
