package dnsscan

import (
	"math"
	"strings"
)

// LooksRandom flags domains whose second-level label reads like machine
// output: DGA-style names with few vowels, long consonant runs, or high
// character entropy.
func LooksRandom(domain string) bool {
	labels := strings.Split(strings.ToLower(strings.TrimSuffix(domain, ".")), ".")
	if len(labels) < 2 {
		return false
	}
	label := labels[len(labels)-2]
	if len(label) < 8 {
		return false
	}

	letters := 0
	vowels := 0
	digits := 0
	run := 0
	maxRun := 0
	for _, r := range label {
		switch {
		case r >= '0' && r <= '9':
			digits++
			run = 0
		case r >= 'a' && r <= 'z':
			letters++
			if strings.ContainsRune("aeiouy", r) {
				vowels++
				run = 0
			} else {
				run++
				if run > maxRun {
					maxRun = run
				}
			}
		default:
			run = 0
		}
	}

	if maxRun >= 5 {
		return true
	}
	if letters >= 8 && float64(vowels)/float64(letters) < 0.2 {
		return true
	}
	if digits >= 3 && letters >= 4 && labelEntropy(label) > 3.3 {
		return true
	}
	return false
}

func labelEntropy(s string) float64 {
	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}
	if total == 0 {
		return 0
	}
	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}
