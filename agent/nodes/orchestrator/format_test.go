package orchestratornode

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

func TestFormatCalculator(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		out  contractx.ToolOutput
		want string
	}{
		{"whole number", contractx.ToolOutput{Success: true, Result: 4.0}, "The answer is 4."},
		{"fraction", contractx.ToolOutput{Success: true, Result: 2.5}, "The answer is 2.5."},
		{"domain error", contractx.ToolOutput{Error: "division by zero"}, "Sorry, I couldn't calculate that: division by zero."},
		{"tool failure", contractx.ToolOutput{Error: "boom", Cause: contractx.ErrToolFailure}, "Sorry, I couldn't calculate that."},
		{"timeout", contractx.ToolOutput{Error: "calculator timed out. Please try again.", Cause: contractx.ErrToolTimeout}, "Sorry, I couldn't calculate that."},
		{
			"open circuit",
			contractx.ToolOutput{Error: "calculator is temporarily unavailable. Please try again later.", Cause: contractx.ErrCircuitOpen},
			"Sorry, calculator is temporarily unavailable. Please try again later.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatCalculator(tc.out))
		})
	}
}

func TestFormatProducts(t *testing.T) {
	t.Parallel()

	resp := contractx.ProductSearchResponse{
		Results: []contractx.Product{
			{Name: "A", Price: "RM 1"},
			{Name: "B"},
			{Name: ""},
			{Name: "D", Price: "RM 4"},
		},
	}
	got := FormatProducts(contractx.ToolOutput{Success: true, Result: resp})
	assert.Equal(t, "I found 4 product(s):\n1. A - RM 1\n2. B\n3. Unknown", got)

	empty := FormatProducts(contractx.ToolOutput{Success: true, Result: contractx.ProductSearchResponse{}})
	assert.Equal(t, "I couldn't find any products matching your search.", empty)

	failed := FormatProducts(contractx.ToolOutput{Error: "x", Cause: contractx.ErrToolFailure})
	assert.Equal(t, "Sorry, I couldn't search for products.", failed)
}

func makeOutlets(n int) []contractx.Outlet {
	out := make([]contractx.Outlet, n)
	for i := range out {
		out[i] = contractx.Outlet{ID: int64(i + 1), Name: fmt.Sprintf("Outlet %d", i+1), Location: fmt.Sprintf("Street %d", i+1)}
	}
	return out
}

func TestFormatOutlets(t *testing.T) {
	t.Parallel()

	cfg := DefaultReplyConfig()

	assert.Equal(t, "I couldn't find any outlets matching your search.", FormatOutlets(nil, cfg))

	single := FormatOutlets([]contractx.Outlet{{Name: "ZUS Coffee – Bangsar", Location: "Jalan Telawi", Hours: "8am - 10pm"}}, cfg)
	assert.Equal(t, "ZUS Coffee – Bangsar is located at Jalan Telawi and is open 8am - 10pm.", single)

	noHours := FormatOutlets([]contractx.Outlet{{Name: "X"}}, cfg)
	assert.Equal(t, "X is located at Unknown location.", noHours)

	list := FormatOutlets(makeOutlets(3), cfg)
	assert.Equal(t, "I found 3 outlets:\n1. Outlet 1 — Street 1\n2. Outlet 2 — Street 2\n3. Outlet 3 — Street 3\n\nWhich outlet are you referring to?", list)

	capped := FormatOutlets(makeOutlets(17), cfg)
	assert.True(t, strings.HasPrefix(capped, "I found 17 outlets:\n"))
	assert.Contains(t, capped, "15. Outlet 15 — Street 15\n...and 2 more.\n")
	assert.NotContains(t, capped, "Outlet 16")

	narrow := FormatOutlets(makeOutlets(21), cfg)
	assert.Equal(t, "I found 21 outlets. Please add a location, such as a district or area, so I can narrow them down.", narrow)

	atCap := FormatOutlets(makeOutlets(20), cfg)
	assert.Contains(t, atCap, "...and 5 more.")
}

func TestFormatFollowup(t *testing.T) {
	t.Parallel()

	o := contractx.Outlet{
		Name:     "ZUS Coffee – SS 2",
		Location: "Jalan SS 2/24",
		Hours:    "Opens 8:00 AM – Closes 10:00 PM",
		Services: "Dine-in, Takeaway.",
	}
	cases := []struct {
		name   string
		outlet contractx.Outlet
		kind   contractx.Followup
		want   string
	}{
		{"hours", o, contractx.FollowupHours, "ZUS Coffee – SS 2 is open Opens 8:00 AM – Closes 10:00 PM."},
		{"open", o, contractx.FollowupOpenTime, "ZUS Coffee – SS 2 opens at 8:00 AM."},
		{"close", o, contractx.FollowupCloseTime, "ZUS Coffee – SS 2 closes at 10:00 PM."},
		{"services", o, contractx.FollowupServices, "ZUS Coffee – SS 2 offers: Dine-in, Takeaway."},
		{"location", o, contractx.FollowupLocation, "ZUS Coffee – SS 2 is located at Jalan SS 2/24."},
		{"open without range", contractx.Outlet{Name: "X", Hours: "24 hours"}, contractx.FollowupOpenTime, "X is open 24 hours."},
		{"no hours", contractx.Outlet{Name: "X"}, contractx.FollowupCloseTime, "I don't have opening hours for X."},
		{"no services", contractx.Outlet{Name: "X"}, contractx.FollowupServices, "I don't have service details for X."},
		{"no location", contractx.Outlet{Name: "X"}, contractx.FollowupLocation, "X is located at Unknown location."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatFollowup(tc.outlet, tc.kind))
		})
	}
}

func TestFormatNotFound(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Sorry, I couldn't find information about 'Kepong'.", FormatNotFound("Kepong"))
}

func TestClarificationMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		res  contractx.IntentResult
		want string
	}{
		{contractx.IntentResult{Intent: contractx.IntentCalculator}, "What would you like me to calculate? Please provide a mathematical expression."},
		{contractx.IntentResult{Intent: contractx.IntentProductSearch}, "What products are you looking for? Please describe what you'd like to find."},
		{contractx.IntentResult{Intent: contractx.IntentOutletQuery}, "Where would you like to find outlets? Please specify a location."},
		{
			contractx.IntentResult{Intent: contractx.IntentOutletQuery, Slots: contractx.Slots{Followup: contractx.FollowupHours}},
			"Which outlet are you referring to? Please mention its name or area.",
		},
		{contractx.IntentResult{Intent: contractx.IntentGeneralChat}, "Could you please provide more details?"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClarificationMessage(tc.res))
	}
}

func TestGeneralReply(t *testing.T) {
	t.Parallel()

	assert.Equal(t, GreetingReply, GeneralReply("Hi there"))
	assert.Equal(t, GreetingReply, GeneralReply("hey, help me"))
	assert.Equal(t, HelpReply, GeneralReply("what can you do?"))
	assert.Equal(t, HelpReply, GeneralReply("HELP"))
	assert.Equal(t, DefaultReply, GeneralReply("this is nice"))
	assert.Equal(t, DefaultReply, GeneralReply("which hill"))
}
