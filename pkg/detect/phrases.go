package detect

import "regexp"

// The scanners and the corrector share these tables: every phrase a scanner
// flags has a present-tense replacement, which is what makes correction
// idempotent.

// memoryPhrase pairs a detection pattern with its neutral rewrite
type memoryPhrase struct {
	pattern *regexp.Regexp
	rewrite string
}

var memoryPhrases = []memoryPhrase{
	{regexp.MustCompile(`(?i)\byou mentioned\b`), "what you're sharing about"},
	{regexp.MustCompile(`(?i)\byou told me\b`), "you're telling me"},
	{regexp.MustCompile(`(?i)\byou said\b`), "you're saying"},
	{regexp.MustCompile(`(?i)\bas you described\b`), "as you're describing"},
	{regexp.MustCompile(`(?i)\bi remember\b`), "i hear"},
	{regexp.MustCompile(`(?i)\bwe talked about\b`), "you're bringing up"},
}

var continuityPhrases = []memoryPhrase{
	{regexp.MustCompile(`(?i)\bas we discussed,?\s*`), "it sounds like "},
	{regexp.MustCompile(`(?i)\bwe discussed\b`), "you're describing"},
	{regexp.MustCompile(`(?i)\bcontinuing from (our|the) last (conversation|session),?\s*`), ""},
	{regexp.MustCompile(`(?i)\bsince (we|you) last (spoke|talked),?\s*`), ""},
	{regexp.MustCompile(`(?i)\bin our previous (conversation|session)s?,?\s*`), ""},
	{regexp.MustCompile(`(?i)\blike last time,?\s*`), ""},
}

// timelinePhrases are stripped outright during correction; they anchor the
// response to a past that may not exist.
var timelinePhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\blast (time|week|session|month)\b,?\s*`),
	regexp.MustCompile(`(?i)\bpreviously\b,?\s*`),
	regexp.MustCompile(`(?i)\bearlier (today|this week)?\b,?\s*`),
	regexp.MustCompile(`(?i)\bbefore (we|you) (spoke|talked)\b,?\s*`),
}

// crisisTerms mark content that belongs to a safety protocol response
var crisisTerms = regexp.MustCompile(`(?i)\b(suicide|suicidal|self[- ]harm|hurt (yourself|myself)|end (my|your) life|crisis (line|hotline)|988|emergency)\b`)

// casualTerms mark small talk that must never share an utterance with
// crisis content
var casualTerms = regexp.MustCompile(`(?i)\b(weather|sports|movie|recipe|vacation|weekend plans|by the way|anyway|fun fact|trivia)\b`)
