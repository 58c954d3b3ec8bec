package extraction

import (
	"math"
	"strings"

	"github.com/gophishfree/risk-engine/internal/domain"
)

// riskyExtensions are file types that execute code or commonly carry macros
var riskyExtensions = map[string]struct{}{
	"exe": {}, "scr": {}, "pif": {}, "com": {}, "bat": {}, "cmd": {},
	"js": {}, "jse": {}, "vbs": {}, "vbe": {}, "wsf": {}, "ps1": {},
	"hta": {}, "jar": {}, "msi": {}, "iso": {}, "img": {}, "lnk": {},
	"docm": {}, "xlsm": {}, "pptm": {},
}

// decoyExtensions are benign-looking types used as the fake first extension
// in invoice.pdf.exe style names
var decoyExtensions = map[string]struct{}{
	"pdf": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {},
	"ppt": {}, "pptx": {}, "txt": {}, "csv": {}, "jpg": {},
	"jpeg": {}, "png": {}, "gif": {}, "zip": {},
}

// attachmentSignals computes group 6 from the attachment filenames
func attachmentSignals(names []string) domain.AttachmentSignals {
	sig := domain.AttachmentSignals{
		AttachmentCount: float64(len(names)),
	}
	if len(names) == 0 {
		return sig
	}
	sig.HasAttachment = 1

	maxEntropy := 0.0
	for _, name := range names {
		lower := strings.ToLower(strings.TrimSpace(name))
		parts := strings.Split(lower, ".")
		if len(parts) >= 2 {
			ext := parts[len(parts)-1]
			if _, ok := riskyExtensions[ext]; ok {
				sig.RiskyAttachmentExtension = 1
				if len(parts) >= 3 {
					if _, decoy := decoyExtensions[parts[len(parts)-2]]; decoy {
						sig.DoubleExtensionFlag = 1
					}
				}
			}
		}
		base := lower
		if idx := strings.Index(lower, "."); idx > 0 {
			base = lower[:idx]
		}
		if e := shannonEntropy(base); e > maxEntropy {
			maxEntropy = e
		}
	}
	sig.AttachmentNameEntropy = maxEntropy
	return sig
}

// shannonEntropy measures character randomness in bits per character.
// Autogenerated malware names score noticeably higher than human ones.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}
	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}
