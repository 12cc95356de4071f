package ipc

import "strings"

// maxContextDepth bounds how many call-site tags an ErrorContext keeps.
// Older tags are dropped first so a runaway call chain can't grow the
// context without bound.
const maxContextDepth = 32

// ErrorContext is a bounded stack of call-site tags carried alongside a
// message so a crash can print a meaningful chain ("screen -> pty ->
// spawn") without a stack trace crossing goroutines. It is write-only
// outward: each thread installs the context it received, adds its own
// tag, and passes the result on.
type ErrorContext struct {
	tags []string
}

// NewErrorContext returns an empty context.
func NewErrorContext() ErrorContext {
	return ErrorContext{}
}

// Add returns a copy of c with tag appended. The original is left
// untouched so concurrent senders never share a backing array.
func (c ErrorContext) Add(tag string) ErrorContext {
	tags := make([]string, len(c.tags), len(c.tags)+1)
	copy(tags, c.tags)
	tags = append(tags, tag)
	if len(tags) > maxContextDepth {
		tags = tags[len(tags)-maxContextDepth:]
	}
	return ErrorContext{tags: tags}
}

// String renders the call chain as "tag1 -> tag2 -> tag3".
func (c ErrorContext) String() string {
	return strings.Join(c.tags, " -> ")
}

// Tags returns the underlying tag slice. Callers must not mutate it.
func (c ErrorContext) Tags() []string { return c.tags }
