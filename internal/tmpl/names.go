package tmpl

import "math/rand"

// adjectives and nouns pair up into the "bright-hare"-style default
// session names `loom run` falls back to when no session name argument
// is given, the same shape h2's session.GenerateName produced for agent
// names.
var adjectives = []string{
	"bright", "calm", "quiet", "swift", "bold", "lucky", "quick", "still",
	"wild", "gentle", "sharp", "sunny", "misty", "golden", "silver", "amber",
	"dusty", "frosty", "rusty", "happy",
}

var nouns = []string{
	"hare", "fox", "wren", "otter", "lynx", "heron", "finch", "badger",
	"stoat", "newt", "gecko", "crane", "moth", "vole", "raven", "marten",
	"tern", "shrike", "ferret", "osprey",
}

// GenerateName returns one random "adjective-noun" candidate. Callers
// that need collision avoidance pass this as NameFuncs' generateName
// argument, which retries on collision with existingNames.
func GenerateName() string {
	a := adjectives[rand.Intn(len(adjectives))]
	n := nouns[rand.Intn(len(nouns))]
	return a + "-" + n
}
