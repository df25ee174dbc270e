// Package intent recognizes conversational meta-requests (greetings, help,
// clear) before any knowledge or LLM work happens. Matching is a small fixed
// vocabulary over the normalized message; anything unrecognized passes to
// the next routing stage.
package intent

import (
	"strings"

	"gluebot/internal/knowledge"
)

const (
	greetingReply = "Hi, I can help with Kubernetes and OpenStack operations. " +
		"Try: `pod stuck in termination`, `CrashLoopBackOff`, or " +
		"`delete all available openstack volumes`."
	thanksReply = "You are welcome. Share the next issue when ready."
	helpReply   = "I can troubleshoot Kubernetes and OpenStack issues, and generate safe scripts. " +
		"Include exact errors and I will provide step-by-step commands."
	clearReply = "Starting fresh. Describe the issue you are seeing and I will take it from the top."
	emptyReply = "Please type a message so I can help."
)

// Exact-match vocabularies. Whole-message matching keeps "help me delete
// volumes" out of the help intent; only bare meta-requests short-circuit.
var (
	greetings = map[string]bool{
		"hi": true, "hello": true, "hey": true, "yo": true,
		"good morning": true, "good afternoon": true, "good evening": true,
	}
	thanks = map[string]bool{
		"thanks": true, "thank you": true, "thx": true,
	}
	helpRequests = map[string]bool{
		"help": true, "what can you do": true, "what can you help with": true,
	}
	clearRequests = map[string]bool{
		"clear": true, "reset": true, "clear chat": true, "start over": true,
	}
)

// Classifier matches small-talk and meta messages. It is stateless and
// never touches the knowledge store.
type Classifier struct{}

// NewClassifier creates an intent classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the canned reply for a recognized meta-message. ok is
// false when nothing matches, signaling "pass to the next stage".
func (c *Classifier) Classify(message string) (reply string, ok bool) {
	text := knowledge.Normalize(message)
	text = strings.TrimRight(text, "!.?")

	switch {
	case text == "":
		return emptyReply, true
	case greetings[text]:
		return greetingReply, true
	case thanks[text]:
		return thanksReply, true
	case helpRequests[text]:
		return helpReply, true
	case clearRequests[text]:
		return clearReply, true
	}
	return "", false
}
