package intent

// Intent groups the phrasings of one user intention with the replies the bot may give.
type Intent struct {
	Tag       string   `json:"tag"`
	Patterns  []string `json:"patterns"`
	Responses []string `json:"responses,omitempty"`
}

// NoAnswerTag marks the intent used when nothing else matches.
const NoAnswerTag = "noanswer"

// Seed provides the built-in intents used when no intents file is configured.
func Seed() []Intent {
	return []Intent{
		{
			Tag:       "greeting",
			Patterns:  []string{"Hi", "Hey", "How are you", "Is anyone there?", "Hello", "Good day"},
			Responses: []string{"Hello, thanks for asking", "Good to see you again", "Hi there, how can I help?"},
		},
		{
			Tag:       "goodbye",
			Patterns:  []string{"Bye", "See you later", "Goodbye", "Nice chatting to you, bye", "Till next time"},
			Responses: []string{"See you!", "Have a nice day", "Bye! Come back again soon."},
		},
		{
			Tag:       "thanks",
			Patterns:  []string{"Thanks", "Thank you", "That's helpful", "Awesome, thanks", "Thanks for helping me"},
			Responses: []string{"Happy to help!", "Any time!", "My pleasure"},
		},
		{
			Tag:       "options",
			Patterns:  []string{"How you could help me?", "What you can do?", "What help you provide?", "How you can be helpful?", "What support is offered"},
			Responses: []string{"I can walk you through derivatives and integrals step by step.", "Ask me about the power rule, the chain rule or common integrals."},
		},
		{
			Tag:       "derivatives",
			Patterns:  []string{"How do I take a derivative", "What is the power rule", "Explain the chain rule", "Differentiate a function", "derivative of cos x"},
			Responses: []string{"Try diff(cos(x)^7, x) on the home page to see the power rule and chain rule step by step.", "For x^n the power rule gives n*x^(n-1); nest it with the chain rule for composite functions."},
		},
		{
			Tag:       "integrals",
			Patterns:  []string{"How do I integrate", "What is an antiderivative", "Integrate a function", "common integrals", "integral of 1/x"},
			Responses: []string{"Try integrate(1/z, z) to see a common integral worked out.", "An antiderivative F satisfies F' = f; the integral of 1/x is ln|x| + C."},
		},
		{
			Tag:       NoAnswerTag,
			Patterns:  []string{},
			Responses: []string{"Sorry, can't understand you", "Please give me more info", "Not sure I understand"},
		},
	}
}

// Tags lists the tags of items, leaving out the no-answer intent.
func Tags(items []Intent) []string {
	tags := make([]string, 0, len(items))
	for _, item := range items {
		if item.Tag == NoAnswerTag {
			continue
		}
		tags = append(tags, item.Tag)
	}
	return tags
}
