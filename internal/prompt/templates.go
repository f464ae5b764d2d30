package prompt

// Categories is the fixed classification catalog offered to the vision
// model. The chosen label is echoed verbatim through the whole pipeline,
// marker emoji included.
var Categories = []string{
	"Natural 🌿",
	"Creature 🐾",
	"Mechanical ⚙️",
	"Edible 🍎",
	"Domestic 🏠",
	"Mystic 🔮",
	"Aquatic 🌊",
	"Celestial ✨",
}

const defaultAnalysisTemplate = `You are the scanner of a collectible trading card game. Examine the attached photo and identify the single most prominent object in it.

Respond with one minified JSON object and absolutely nothing else. No markdown, no code fences, no commentary.

The object must have exactly these six keys:
- "subject": short noun phrase naming the object, without leading articles
- "visualTraits": comma-separated appearance descriptors
- "category": exactly one label from the list below, copied verbatim including its emoji
- "strength": integer between 0 and 100
- "stamina": integer between 0 and 100
- "agility": integer between 0 and 100

Category list:
{{categories}}

Rate strength, stamina and agility by how the object would plausibly perform as a game creature.`

const defaultTitleTemplate = `Invent a catchy one-or-two-word trading card name for a {{category}} card.
Subject: {{subject}}
Appearance: {{visualTraits}}

Reply with the name only. No quotes, no punctuation around it, no explanation.`

const defaultStatsTemplate = `Build the stat block for a trading card.
Subject: {{subject}}
Appearance: {{visualTraits}}
Card type: {{category}}
Strength: {{strength}}, Stamina: {{stamina}}, Agility: {{agility}}

Reply with a single line of minified JSON, no code fences, exactly this shape and entry order:
{"stats":[{"category":"Type","value":"{{category}}"},{"category":"Strength","value":"{{strength}}"},{"category":"Stamina","value":"{{stamina}}"},{"category":"Agility","value":"{{agility}}"}]}

Every category label must be at most 3 words and 20 characters.`

const defaultArtTemplate = `Collectible trading card illustration of {{subject}}.
Appearance: {{visualTraits}}.
Card type: {{category}}.

Style: vibrant painterly fantasy art, centered heroic subject, dramatic rim lighting, soft depth-of-field background matching the card type.
Rules: no text, no border, no frame, no watermark, single subject only.`
