package schedule

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var (
	urlRegex = regexp.MustCompile(`https?://[^\s<>"]+`)
)

type urlCandidate struct {
	Value        string
	SourceRank   int
	RegisterRank int
	Provider     string
}

// DeriveLinks picks the best sign-up link and the best general link for an
// occurrence. Explicit fields win over URLs found in the description.
func DeriveLinks(item Occurrence) (registrationURL, infoURL, provider string) {
	candidates := make([]urlCandidate, 0, 8)

	if value := strings.TrimSpace(item.RegistrationURL); value != "" {
		providerName, rank := providerRank(value)
		if rank > 10 {
			rank = 10
		}
		candidates = append(candidates, urlCandidate{Value: value, SourceRank: 0, RegisterRank: rank, Provider: providerName})
	}

	if value := strings.TrimSpace(item.URL); value != "" {
		providerName, rank := providerRank(value)
		candidates = append(candidates, urlCandidate{Value: value, SourceRank: 1, RegisterRank: rank, Provider: providerName})
	}

	for _, found := range extractURLs(item.Description) {
		providerName, rank := providerRank(found)
		candidates = append(candidates, urlCandidate{Value: found, SourceRank: 2, RegisterRank: rank, Provider: providerName})
	}

	unique := dedupeCandidates(candidates)
	if len(unique) == 0 {
		return "", "", ""
	}

	sort.SliceStable(unique, func(i, j int) bool {
		if unique[i].SourceRank != unique[j].SourceRank {
			return unique[i].SourceRank < unique[j].SourceRank
		}
		return unique[i].Value < unique[j].Value
	})
	infoURL = unique[0].Value
	for _, candidate := range unique {
		if candidate.RegisterRank > 10 {
			infoURL = candidate.Value
			break
		}
	}

	sort.SliceStable(unique, func(i, j int) bool {
		if unique[i].RegisterRank != unique[j].RegisterRank {
			return unique[i].RegisterRank < unique[j].RegisterRank
		}
		if unique[i].SourceRank != unique[j].SourceRank {
			return unique[i].SourceRank < unique[j].SourceRank
		}
		return unique[i].Value < unique[j].Value
	})
	for _, candidate := range unique {
		if candidate.RegisterRank <= 10 {
			registrationURL = candidate.Value
			provider = candidate.Provider
			break
		}
	}

	return registrationURL, infoURL, provider
}

// OpenURL is the link a click should open: sign-up first, info otherwise.
func OpenURL(item Occurrence) string {
	registrationURL, infoURL, _ := DeriveLinks(item)
	if registrationURL != "" {
		return registrationURL
	}
	return infoURL
}

func extractURLs(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	found := urlRegex.FindAllString(trimmed, -1)
	if len(found) == 0 {
		return nil
	}

	results := make([]string, 0, len(found))
	for _, item := range found {
		normalized := normalizeURL(item)
		if normalized == "" {
			continue
		}
		results = append(results, normalized)
	}
	return results
}

func dedupeCandidates(candidates []urlCandidate) []urlCandidate {
	seen := make(map[string]urlCandidate)
	for _, candidate := range candidates {
		normalized := normalizeURL(candidate.Value)
		if normalized == "" {
			continue
		}
		candidate.Value = normalized

		if existing, ok := seen[normalized]; ok {
			if candidate.RegisterRank < existing.RegisterRank ||
				(candidate.RegisterRank == existing.RegisterRank && candidate.SourceRank < existing.SourceRank) {
				seen[normalized] = candidate
			}
			continue
		}
		seen[normalized] = candidate
	}

	results := make([]urlCandidate, 0, len(seen))
	for _, candidate := range seen {
		results = append(results, candidate)
	}
	return results
}

func normalizeURL(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimRight(value, ".,;)")
	if value == "" {
		return ""
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return ""
	}
	return parsed.String()
}

func providerRank(value string) (string, int) {
	host := hostOf(value)
	switch {
	case strings.HasSuffix(host, "forms.gle"):
		return "google_forms", 0
	case strings.HasSuffix(host, "docs.google.com") && strings.Contains(value, "/forms/"):
		return "google_forms", 0
	case strings.HasSuffix(host, "eventbrite.nl"), strings.HasSuffix(host, "eventbrite.com"):
		return "eventbrite", 1
	case strings.HasSuffix(host, "tally.so"):
		return "tally", 2
	case strings.HasSuffix(host, "typeform.com"):
		return "typeform", 3
	case strings.Contains(value, "aanmelden"), strings.Contains(value, "inschrijven"):
		return "", 8
	default:
		return "", 50
	}
}

func hostOf(value string) string {
	parsed, err := url.Parse(value)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
