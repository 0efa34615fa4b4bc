package classify

import (
	"regexp"
	"strings"

	"refdesk/feature/records/models"
)

// Result holds the inferred game fields for one feed event. LevelDetail and
// Role are empty when no rule matched.
type Result struct {
	Sport            models.Sport
	CompetitionLevel models.CompetitionLevel
	LevelDetail      string
	Role             string
}

var (
	lacrosseRe = regexp.MustCompile(`(?i)\blacrosse\b|\blax\b`)

	collegeRe = regexp.MustCompile(`(?i)\bcollege\b|\bncaa\b|\bnaia\b|\bjuco\b`)
	schoolRe  = regexp.MustCompile(`(?i)\bvarsity\b|\bjv\b|junior varsity|\bms\b|middle school|\bhs\b|high school`)
	clubRe    = regexp.MustCompile(`(?i)\badult\b|\bu\d{1,2}\b|\bclub\b`)

	ageGroupRe = regexp.MustCompile(`(?i)\b(u\d{1,2})\b`)
	varsityRe  = regexp.MustCompile(`(?i)\bvarsity\b`)
	jvRe       = regexp.MustCompile(`(?i)\bjv\b|junior varsity`)
	msRe       = regexp.MustCompile(`(?i)\bms\b|middle school`)

	headUmpireRe = regexp.MustCompile(`(?i)head umpire`)
	umpireRe     = regexp.MustCompile(`(?i)umpire\s*(1|2)\b`)
)

// levelRules run in priority order; later rules never override an earlier
// match.
var levelRules = []struct {
	re    *regexp.Regexp
	level models.CompetitionLevel
}{
	{collegeRe, models.LevelCollege},
	{schoolRe, models.LevelHighSchool},
	{clubRe, models.LevelClub},
}

// detailRules run in priority order, first match wins.
var detailRules = []struct {
	re     *regexp.Regexp
	detail string
}{
	{varsityRe, "Varsity"},
	{jvRe, "JV"},
	{msRe, "MS"},
}

// EventText joins an event's summary, description, and location into the
// single text the rules match against. Empty fields are dropped.
func EventText(summary, description, location string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{summary, description, location} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " | ")
}

// Sport returns the feed's declared sport when set, otherwise infers it from
// the event text. Soccer is the default.
func Sport(feedSport models.Sport, text string) models.Sport {
	if feedSport == models.SportSoccer || feedSport == models.SportLacrosse {
		return feedSport
	}
	if lacrosseRe.MatchString(text) {
		return models.SportLacrosse
	}
	return models.SportSoccer
}

// Level infers the competition level. High School is the default.
func Level(text string) models.CompetitionLevel {
	for _, rule := range levelRules {
		if rule.re.MatchString(text) {
			return rule.level
		}
	}
	return models.LevelHighSchool
}

// LevelDetail infers the age-group or squad detail, empty when nothing
// matches. An age-group token like "u15" is reported uppercased.
func LevelDetail(text string) string {
	if m := ageGroupRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	for _, rule := range detailRules {
		if rule.re.MatchString(text) {
			return rule.detail
		}
	}
	return ""
}

// Role infers the officiating role. Only the RefQuest lacrosse feed carries
// role text; every other platform/sport combination yields empty.
func Role(platform models.FeedPlatform, sport models.Sport, text string) string {
	if platform != models.PlatformRefQuest || sport != models.SportLacrosse {
		return ""
	}
	if headUmpireRe.MatchString(text) {
		return "Lead"
	}
	if umpireRe.MatchString(text) {
		return "Ref"
	}
	return ""
}

// Event classifies one feed event's combined text under the given feed's
// platform and declared sport.
func Event(platform models.FeedPlatform, feedSport models.Sport, text string) Result {
	sport := Sport(feedSport, text)
	return Result{
		Sport:            sport,
		CompetitionLevel: Level(text),
		LevelDetail:      LevelDetail(text),
		Role:             Role(platform, sport, text),
	}
}
