package app

import "sync"

// defaultEmotes is the rotation used when the operator configures none.
var defaultEmotes = []string{
	"🧠", "🤔", "📚", "🔍", "🎲", "💡", "🎓", "🧩",
}

// EmoteCycler hands out a per-channel rotating emote token so chat
// output can visually pair a question with its answers.
type EmoteCycler struct {
	emotes []string

	mu      sync.Mutex
	indexes map[string]int
}

func NewEmoteCycler(emotes []string) *EmoteCycler {
	if len(emotes) == 0 {
		emotes = defaultEmotes
	}
	return &EmoteCycler{
		emotes:  emotes,
		indexes: make(map[string]int),
	}
}

// Next advances the channel's rotation and returns the emote for the
// next game.
func (c *EmoteCycler) Next(channel string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexes[channel]
	c.indexes[channel] = (idx + 1) % len(c.emotes)
	return c.emotes[idx]
}

// Current returns the emote most recently handed out without
// advancing, for re-rendering prompts.
func (c *EmoteCycler) Current(channel string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexes[channel] - 1
	if idx < 0 {
		idx = len(c.emotes) - 1
	}
	return c.emotes[idx]
}
