package intent

import (
	"sort"
	"strings"
	"unicode"

	model "github.com/zhouzirui/mathtutor-chat/internal/model/intent"
)

// ErrorThreshold 是默认的最低置信度，低于它的意图被丢弃。
const ErrorThreshold = 0.25

var ignoredTokens = map[string]struct{}{
	"?": {},
	"!": {},
}

// Prediction 是一个意图及其置信度。
type Prediction struct {
	Tag         string
	Probability float64
}

type pattern struct {
	tag   string
	words map[string]struct{}
}

// Classifier 以词袋模型将用户输入映射到意图。
type Classifier struct {
	threshold  float64
	vocabulary map[string]struct{}
	patterns   []pattern
}

// NewClassifier 根据意图样例构建分类器。threshold <= 0 时使用 ErrorThreshold。
func NewClassifier(intents []model.Intent, threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = ErrorThreshold
	}

	vocab := make(map[string]struct{})
	patterns := make([]pattern, 0, len(intents)*4)
	for _, item := range intents {
		for _, raw := range item.Patterns {
			words := bag(Tokenize(raw))
			if len(words) == 0 {
				continue
			}
			for w := range words {
				vocab[w] = struct{}{}
			}
			patterns = append(patterns, pattern{tag: item.Tag, words: words})
		}
	}

	return &Classifier{threshold: threshold, vocabulary: vocab, patterns: patterns}
}

// Predict 返回置信度高于阈值的意图，按置信度降序排列。
func (c *Classifier) Predict(sentence string) []Prediction {
	input := c.knownWords(Tokenize(sentence))
	if len(input) == 0 {
		return nil
	}

	scores := make(map[string]float64)
	for _, p := range c.patterns {
		overlap := 0
		for w := range p.words {
			if _, ok := input[w]; ok {
				overlap++
			}
		}
		score := float64(overlap) / float64(len(p.words))
		if score > scores[p.tag] {
			scores[p.tag] = score
		}
	}

	results := make([]Prediction, 0, len(scores))
	for tag, score := range scores {
		if score > c.threshold {
			results = append(results, Prediction{Tag: tag, Probability: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Probability != results[j].Probability {
			return results[i].Probability > results[j].Probability
		}
		return results[i].Tag < results[j].Tag
	})
	return results
}

// knownWords 只保留词表中出现过的词。
func (c *Classifier) knownWords(tokens []string) map[string]struct{} {
	words := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := c.vocabulary[t]; ok {
			words[t] = struct{}{}
		}
	}
	return words
}

// Tokenize 将句子切分为小写词，并做简单的复数归一。
func Tokenize(sentence string) []string {
	fields := strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '?' && r != '!'
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, part := range splitPunctuation(field) {
			if _, skip := ignoredTokens[part]; skip {
				continue
			}
			tokens = append(tokens, normalize(part))
		}
	}
	return tokens
}

// splitPunctuation 把 "there?" 拆成 "there" 和 "?"。
func splitPunctuation(field string) []string {
	var parts []string
	start := 0
	for i, r := range field {
		if r == '?' || r == '!' {
			if i > start {
				parts = append(parts, field[start:i])
			}
			parts = append(parts, string(r))
			start = i + 1
		}
	}
	if start < len(field) {
		parts = append(parts, field[start:])
	}
	return parts
}

func normalize(word string) string {
	if len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") {
		return strings.TrimSuffix(word, "s")
	}
	return word
}

func bag(tokens []string) map[string]struct{} {
	words := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		words[t] = struct{}{}
	}
	return words
}
