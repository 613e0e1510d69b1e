// Package profile converts raw extracted resume and job-posting fields into
// canonical comparable structures used by the matching engine.
package profile

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// RawResume holds resume fields as produced by an upstream extractor.
type RawResume struct {
	Skills     []string `json:"skills"`
	Experience string   `json:"experience"`
	FullText   string   `json:"full_text"`
}

// RawPosting holds job-posting fields as returned by a job source.
type RawPosting struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	URL            string   `json:"url"`
	RequiredSkills []string `json:"required_skills"`
	ExperienceRaw  string   `json:"experience"`
	Description    string   `json:"description"`
}

// ResumeProfile is the canonical, normalized form of a resume.
// Immutable after normalization.
type ResumeProfile struct {
	Skills          map[string]struct{}
	YearsExperience float64
	RawText         string
}

// JobPosting is the canonical, normalized form of a job posting. Title,
// Company and URL are passthrough display fields opaque to the engine.
type JobPosting struct {
	ID              string
	Title           string
	Company         string
	URL             string
	RequiredSkills  map[string]struct{}
	MinYears        float64
	DescriptionText string
}

// InvalidProfileError reports malformed normalization input, naming the
// offending field.
type InvalidProfileError struct {
	Field  string
	Reason string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid profile input: field %q: %s", e.Field, e.Reason)
}

var yearsRe = regexp.MustCompile(`\d+`)

// surrounding punctuation stripped from skill tokens. Inner characters such
// as "+" and "#" are kept so "c++" and "c#" survive normalization.
const skillCutset = ".,;:!?\"'()[]{}<>*"

var spaceRe = regexp.MustCompile(`\s+`)

// NormalizeSkills lower-cases, strips punctuation and whitespace, and
// deduplicates the given skill tokens. Synonyms are not resolved; matching
// downstream is exact-token only.
func NormalizeSkills(raw []string) map[string]struct{} {
	skills := make(map[string]struct{}, len(raw))
	for _, token := range raw {
		token = strings.ToLower(strings.TrimSpace(token))
		token = strings.Trim(token, skillCutset)
		token = spaceRe.ReplaceAllString(token, " ")
		if token == "" {
			continue
		}
		skills[token] = struct{}{}
	}
	return skills
}

// ParseYears extracts the first integer from an experience phrase such as
// "3+ years". Unparseable input yields 0, never an error.
func ParseYears(phrase string) float64 {
	match := yearsRe.FindString(phrase)
	if match == "" {
		return 0
	}
	years, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return float64(years)
}

// NormalizeResume converts raw resume fields into a ResumeProfile. A resume
// with neither skills nor text carries nothing to match on and is rejected.
func NormalizeResume(raw *RawResume) (*ResumeProfile, error) {
	if raw == nil {
		return nil, &InvalidProfileError{Field: "resume", Reason: "missing"}
	}

	skills := NormalizeSkills(raw.Skills)
	text := strings.TrimSpace(raw.FullText)

	if len(skills) == 0 && text == "" {
		return nil, &InvalidProfileError{Field: "skills", Reason: "resume has no skills and no text"}
	}

	return &ResumeProfile{
		Skills:          skills,
		YearsExperience: ParseYears(raw.Experience),
		RawText:         text,
	}, nil
}

// NormalizePosting converts raw posting fields into a JobPosting.
func NormalizePosting(raw *RawPosting) (*JobPosting, error) {
	if raw == nil {
		return nil, &InvalidProfileError{Field: "posting", Reason: "missing"}
	}

	if strings.TrimSpace(raw.ID) == "" {
		return nil, &InvalidProfileError{Field: "id", Reason: "posting id is required"}
	}

	return &JobPosting{
		ID:              strings.TrimSpace(raw.ID),
		Title:           raw.Title,
		Company:         raw.Company,
		URL:             raw.URL,
		RequiredSkills:  NormalizeSkills(raw.RequiredSkills),
		MinYears:        ParseYears(raw.ExperienceRaw),
		DescriptionText: strings.TrimSpace(raw.Description),
	}, nil
}

// SortedSkills returns the set as a sorted slice, for stable display and logs.
func SortedSkills(set map[string]struct{}) []string {
	skills := make([]string, 0, len(set))
	for skill := range set {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}
