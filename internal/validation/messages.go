package validation

// Message renders the display text for a rule given the labels attached to
// the failing result.
type Message interface {
	Format(labels []string) string
}

// Text is a literal message.
type Text string

// Format returns the literal.
func (t Text) Format([]string) string { return string(t) }

// MessageFunc builds a message from labels.
type MessageFunc func(labels []string) string

// Format calls f.
func (f MessageFunc) Format(labels []string) string { return f(labels) }

// Messages maps rule names to messages.
type Messages map[string]Message

// Lookup returns the message for rule, if any.
func (m Messages) Lookup(rule string) (Message, bool) {
	if m == nil {
		return nil, false
	}
	msg, ok := m[rule]
	return msg, ok && msg != nil
}

// MessageChain is an ordered list of message maps, nearest scope first.
type MessageChain []Messages

// With returns a chain where m takes precedence over c. A nil map is skipped.
func (c MessageChain) With(m Messages) MessageChain {
	if len(m) == 0 {
		return c
	}
	out := make(MessageChain, 0, len(c)+1)
	out = append(out, m)
	return append(out, c...)
}

// Lookup walks the chain nearest first.
func (c MessageChain) Lookup(rule string) (Message, bool) {
	for _, m := range c {
		if msg, ok := m.Lookup(rule); ok {
			return msg, true
		}
	}
	return nil, false
}

// Resolve returns the display text for r: the nearest message for its rule,
// or the bare rule name. A nil result resolves to "".
func Resolve(r *Result, chain MessageChain) string {
	if r == nil {
		return ""
	}
	if msg, ok := chain.Lookup(r.Rule); ok {
		if text := msg.Format(r.Labels); text != "" {
			return text
		}
	}
	return r.Rule
}

// Describe returns a copy of r with Message filled in. A message the
// validator set itself is kept.
func Describe(r *Result, chain MessageChain) *Result {
	if r == nil {
		return nil
	}
	out := r.Clone()
	if out.Message == "" {
		out.Message = Resolve(r, chain)
	}
	return out
}
