package domain

// Flow identifies which multi-step dialogue a user is currently in.
// A user is in at most one flow at a time; starting a new flow replaces
// any prior one.
type Flow string

const (
	FlowNone          Flow = ""
	FlowIntake        Flow = "intake"
	FlowAdminReply    Flow = "admin_reply"
	FlowProblemReason Flow = "problem_reason"
	FlowStats         Flow = "stats"
)

// Conversation is the per-user dialogue state: the active flow, the
// position within it, and the fields collected so far. The zero value
// means no flow is in progress.
type Conversation struct {
	Flow Flow              `json:"flow"`
	Step int               `json:"step"`
	Data map[string]string `json:"data,omitempty"`
}

// Active reports whether any flow is in progress.
func (c Conversation) Active() bool {
	return c.Flow != FlowNone
}

// WithField returns a copy of the conversation with one collected field
// added. Collected fields accumulate across steps and are discarded only
// when the flow completes or is abandoned.
func (c Conversation) WithField(key, value string) Conversation {
	data := make(map[string]string, len(c.Data)+1)
	for k, v := range c.Data {
		data[k] = v
	}
	data[key] = value
	c.Data = data
	return c
}

// Field returns a collected field value, or "" when absent.
func (c Conversation) Field(key string) string {
	return c.Data[key]
}
