// Package textstat computes the plain-text statistics stored on the
// transcript dimension: word counts and a standard readability grade.
package textstat

import (
	"strings"
	"unicode"
)

// WordCount counts whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// FleschKincaidGrade returns the Flesch-Kincaid grade level of the text:
// 0.39*(words/sentences) + 11.8*(syllables/words) - 15.59. Empty text
// scores zero.
func FleschKincaidGrade(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	sentences := countSentences(text)
	if sentences == 0 {
		sentences = 1
	}
	var syllables int
	for _, w := range words {
		syllables += countSyllables(w)
	}
	grade := 0.39*(float64(len(words))/float64(sentences)) +
		11.8*(float64(syllables)/float64(len(words))) - 15.59
	if grade < 0 {
		return 0
	}
	return grade
}

func countSentences(text string) int {
	n := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	return n
}

// countSyllables approximates syllables as vowel groups, discounting a
// trailing silent 'e'. Every word counts at least one.
func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if word == "" {
		return 1
	}
	isVowel := func(r rune) bool {
		return strings.ContainsRune("aeiouy", r)
	}
	count := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}
