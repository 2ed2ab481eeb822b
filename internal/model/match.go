package model

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// KeyPhrase is a text excerpt chosen as bait for an exact-phrase search
type KeyPhrase struct {
	Text   string       `json:"text"`
	Length int          `json:"length"` // Length in runes
	Origin PhraseOrigin `json:"origin"`
}

// PhraseOrigin records which selection pass produced a phrase
type PhraseOrigin string

const (
	OriginSentence PhraseOrigin = "sentence" // Whole sentence
	OriginWindow   PhraseOrigin = "window"   // Sliding 8-word window
)

// PlagiarismMatch is evidence that a phrase appears in an external source
type PlagiarismMatch struct {
	ID         string        `json:"id"`     // Derived from URL, stable across discoveries
	Phrase     string        `json:"phrase"` // Phrase that triggered the match
	URL        string        `json:"url"`
	Title      string        `json:"title,omitempty"`
	Snippet    string        `json:"snippet,omitempty"` // First 200 characters of the result content
	Similarity float64       `json:"similarity"`        // Jaccard similarity of phrase and content
	Authority  AuthorityTier `json:"authority,omitempty"`
}

// MatchID derives a match id from the source locator
func MatchID(url string) string {
	sum := md5.Sum([]byte(url))
	return "match_" + hex.EncodeToString(sum[:])[:8]
}

// PlagiarismReport aggregates the outcome of phrase searches for one text
type PlagiarismReport struct {
	MatchesFound      int               `json:"found_matches"`
	SearchesPerformed int               `json:"total_searches"` // Successful searches only
	Matches           []PlagiarismMatch `json:"matches"`
	Score             float64           `json:"plagiarism_score"`
	Errors            int               `json:"failed_searches,omitempty"`
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Whitelisted scholarly indexes and preprint servers
	TierSecondary AuthorityTier = 2 // Publishers and encyclopedias
	TierTertiary  AuthorityTier = 3 // Everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// VerificationResult is the outcome of checking a matched source
type VerificationResult struct {
	MatchID      string        `json:"match_id"`
	URL          string        `json:"url"`
	IsAccessible bool          `json:"is_accessible"`
	StatusCode   int           `json:"status_code,omitempty"`
	LastModified *time.Time    `json:"last_modified,omitempty"`
	IsDead       bool          `json:"is_dead"`                // 404, 410, or timeout
	Disallowed   bool          `json:"disallowed,omitempty"`   // robots.txt forbids the check
	RedirectURL  string        `json:"redirect_url,omitempty"` // If redirected
	Authority    AuthorityTier `json:"authority"`
	Error        string        `json:"error,omitempty"`
}
