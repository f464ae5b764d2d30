package gemini

// Response is the distilled model reply: concatenated text parts plus
// any inline images as data URLs.
type Response struct {
	Text   string
	Images []string
}
