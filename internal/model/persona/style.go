package persona

import "strings"

// Style is a behavioural disposition assigned to a persona slot. It biases
// how the participant is asked to engage, not who they are.
type Style string

const (
	StyleNeutral    Style = "neutral"
	StyleAgreeable  Style = "agreeable"
	StyleContrarian Style = "contrarian"
	StyleAnalytical Style = "analytical"
	StyleEmotional  Style = "emotional"
)

var styleDirectives = map[Style]string{
	StyleNeutral:    "Respond in your own voice with no particular slant.",
	StyleAgreeable:  "You tend to agree with and build on what others say. Look for common ground before raising any doubts.",
	StyleContrarian: "You tend to challenge what is presented. Voice the doubts and objections others might keep to themselves.",
	StyleAnalytical: "You weigh things up carefully. Break the topic down and reason through specifics before giving a view.",
	StyleEmotional:  "You react from the gut. Lead with how things make you feel and draw on personal experience.",
}

// Directive returns the fixed prompt directive for the style. Unknown styles
// fall back to the neutral directive.
func (s Style) Directive() string {
	if d, ok := styleDirectives[s]; ok {
		return d
	}
	return styleDirectives[StyleNeutral]
}

// ParseStyle maps a wire value onto a known Style.
func ParseStyle(v string) (Style, bool) {
	s := Style(strings.ToLower(strings.TrimSpace(v)))
	_, ok := styleDirectives[s]
	return s, ok
}

// DirectiveFor resolves the directive for a persona slot. Slots without an
// explicit assignment are neutral.
func DirectiveFor(styles map[int]Style, index int) string {
	if s, ok := styles[index]; ok {
		return s.Directive()
	}
	return StyleNeutral.Directive()
}
